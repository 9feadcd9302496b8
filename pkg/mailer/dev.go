package mailer

import (
	"context"
	"log/slog"
)

// devSender logs messages instead of delivering them.
type devSender struct {
	logger *slog.Logger
}

// NewDevSender creates a sender for local development: every message is
// validated and logged, nothing leaves the process.
func NewDevSender(logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &devSender{logger: logger}
}

func (s *devSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "dev mailer: message not sent",
		slog.String("to", params.To),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	return nil
}
