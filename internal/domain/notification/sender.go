package notification

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// LogSender is a Sender for environments without an email gateway: it logs
// the message instead of delivering it. Useful for local development and as
// the default wiring when no transport is configured.
type LogSender struct{}

var _ Sender = LogSender{}

// Send logs the message and reports success.
func (LogSender) Send(ctx context.Context, to, subject, _ string) error {
	zctx.From(ctx).Info("Email send (log transport)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
