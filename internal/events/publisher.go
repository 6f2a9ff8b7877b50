package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubmissionGraded is published after every persisted grading attempt.
type SubmissionGraded struct {
	SubmissionID uint      `json:"submission_id"`
	UserID       uint      `json:"user_id"`
	ProblemID    uint      `json:"problem_id"`
	Status       string    `json:"status"`
	Score        int       `json:"score"`
	GradedAt     time.Time `json:"graded_at"`
}

// Publisher emits domain events for downstream consumers (analytics,
// notifications). Publishing is best-effort and never fails a request.
type Publisher interface {
	PublishSubmissionGraded(event SubmissionGraded)
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher builds a publisher over an existing NATS connection.
// A nil connection yields a no-op publisher.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) Publisher {
	if subject == "" {
		subject = "zenith.submissions.graded"
	}

	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "events_publisher").Logger(),
	}
}

func (p *natsPublisher) PublishSubmissionGraded(event SubmissionGraded) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode submission event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish submission event")
	}
}
