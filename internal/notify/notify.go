// Package notify defines the outbound message dispatch contract.
package notify

import "context"

//go:generate mockgen -source=notify.go -destination=../mocks/notify/mock_notifier.go -package=mock_notify

// Notifier delivers a Markdown-formatted text to a single user. A failed
// delivery affects only that recipient; callers iterating over several
// recipients must isolate per-recipient errors.
type Notifier interface {
	Send(ctx context.Context, userID, text string) error
}
