package deliver

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type logSender struct {
	logf func(format string, args ...any)
}

// NewLogSender builds a dry-run sender that records deliveries to the log
// instead of sending them anywhere.
func NewLogSender(logf func(format string, args ...any)) Sender {
	if logf == nil {
		logf = log.Printf
	}
	return &logSender{logf: logf}
}

func (s *logSender) Send(_ context.Context, recipient, subject, body string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	s.logf("dry-run delivery to %s: %q (%d bytes)", recipient, subject, len(body))
	return nil
}
