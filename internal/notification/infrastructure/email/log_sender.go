package email

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/chipstore/internal/notification/domain"
)

// LogSender records the message instead of delivering it. Swap in a real
// provider by implementing application.Sender.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg domain.Message) error {
	s.log.InfoContext(ctx, "would send email", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
