package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Sender is the delivery channel collaborator. Concrete email/SMS
// transports live outside this service; the implementations here only log
// the hand-off so the pipeline can run end to end in dev.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

type logEmailSender struct {
	log zerolog.Logger
}

// NewLogEmailSender returns an email channel that records instead of sends.
func NewLogEmailSender(log zerolog.Logger) Sender {
	return &logEmailSender{log: log}
}

func (s *logEmailSender) Send(ctx context.Context, n *Notification) error {
	s.log.Info().
		Str("notification_id", n.ID.String()).
		Str("user_id", n.UserID.String()).
		Str("message", n.Message).
		Msg("email dispatched")
	return nil
}

type logSMSSender struct {
	log zerolog.Logger
}

// NewLogSMSSender returns an SMS channel that records instead of sends.
func NewLogSMSSender(log zerolog.Logger) Sender {
	return &logSMSSender{log: log}
}

func (s *logSMSSender) Send(ctx context.Context, n *Notification) error {
	s.log.Info().
		Str("notification_id", n.ID.String()).
		Str("user_id", n.UserID.String()).
		Str("message", n.Message).
		Msg("sms dispatched")
	return nil
}

// SenderRegistry routes a notification to the channel for its delivery
// method.
type SenderRegistry map[DeliveryMethod]Sender

func (r SenderRegistry) senderFor(method DeliveryMethod) (Sender, error) {
	s, ok := r[method]
	if !ok {
		return nil, fmt.Errorf("no sender registered for method %q", method)
	}
	return s, nil
}
