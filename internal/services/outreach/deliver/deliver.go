// Package deliver hands finished drafts to an outbound channel.
package deliver

import "context"

// Sender delivers one outreach message. Implementations do not retry; the
// caller owns retry policy.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
