package repository

import (
	"context"
	"time"

	"dormdrop/internal/domain/entity"
)

type ChatRepository interface {
	// GetOrCreateConversation returns the conversation for the
	// (listing, buyer, seller) triple, creating it on first contact.
	// The bool reports whether a new row was created.
	GetOrCreateConversation(ctx context.Context, listingID, buyerID, sellerID string) (*entity.Conversation, bool, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*entity.ConversationSummary, error)

	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error)

	// ReadTrackingEnabled reports whether the schema carries the
	// per-participant last-read columns. Without them read receipts and
	// unread pushes are suppressed rather than advertising state that
	// was never persisted.
	ReadTrackingEnabled() bool

	// MarkConversationRead sets the caller's last-read timestamp.
	// A no-op when read tracking is unavailable in the schema.
	MarkConversationRead(ctx context.Context, conversationID, userID string, readAt time.Time) error

	// CountUnreadTotal sums, over every conversation the user belongs to,
	// the messages from the counterpart created strictly after the user's
	// last-read timestamp (epoch when never read). Returns 0 when read
	// tracking is unavailable.
	CountUnreadTotal(ctx context.Context, userID string) (int, error)
}
