package worker

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes notifications to the log instead of a real SMS gateway.
// Used until a delivery provider is plugged in.
type LogSender struct {
	logger *zerolog.Logger
}

func NewLogSender(logger *zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, phone, message string) error {
	s.logger.Info().Str("phone", phone).Str("message", message).Msg("notification")
	return nil
}
