package domain

import "context"

// ResourceUpdateNotifier pushes a resources/updated notification for one URI.
// Implementations must tolerate concurrent calls.
type ResourceUpdateNotifier func(ctx context.Context, uri string)

// NotifyResourceUpdates fans one change signal out to every listed resource
// URI. A nil notifier and blank URIs are skipped so callers can pass the
// full set unconditionally.
func NotifyResourceUpdates(ctx context.Context, notify ResourceUpdateNotifier, uris ...string) {
	if notify == nil {
		return
	}
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		notify(ctx, uri)
	}
}
