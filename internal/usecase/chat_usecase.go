package usecase

import (
	"context"
	"strings"
	"time"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/repository"
	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
	"dormdrop/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	listingRepo repository.ListingRepository
	storage     service.ObjectStorage
	publisher   Publisher
	limiter     Limiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	listingRepo repository.ListingRepository,
	storage service.ObjectStorage,
	publisher Publisher,
	limiter Limiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		listingRepo: listingRepo,
		storage:     storage,
		publisher:   publisher,
		limiter:     limiter,
	}
}

// StartConversation opens (or reopens) the caller's thread with a
// listing's seller. The caller is always the buyer side.
func (uc *ChatUseCase) StartConversation(ctx context.Context, userID, listingID string) (*entity.Conversation, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == userID {
		return nil, errors.BadRequest("You cannot message yourself", nil)
	}

	if allowed, wait := uc.limiter.Allow(userID, "create_conversation"); !allowed {
		return nil, errors.TooManyRequests("Too many new conversations", wait)
	}

	conv, _, err := uc.chatRepo.GetOrCreateConversation(ctx, listingID, userID, listing.SellerID)
	return conv, err
}

func (uc *ChatUseCase) Inbox(ctx context.Context, userID string) ([]*entity.ConversationSummary, error) {
	summaries, err := uc.chatRepo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, s := range summaries {
		if s.ListingCoverKey == "" {
			continue
		}
		url, err := uc.storage.SignView(ctx, s.ListingCoverKey)
		if err != nil {
			logger.Warn("Failed to sign view URL for %s: %v", s.ListingCoverKey, err)
			continue
		}
		s.ListingCoverURL = url
	}
	return summaries, nil
}

type Thread struct {
	Conversation *entity.Conversation `json:"conversation"`
	Messages     []*entity.Message    `json:"messages"`
}

// GetThread returns a conversation with its full history and marks it
// read for the caller. The counterpart is told about the read and both
// sides get a fresh unread total so every open tab converges.
func (uc *ChatUseCase) GetThread(ctx context.Context, userID, conversationID string) (*Thread, error) {
	conv, err := uc.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}

	messages, err := uc.chatRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Without read-tracking columns nothing is persisted, so no read
	// state is advertised either.
	if uc.chatRepo.ReadTrackingEnabled() {
		readAt := time.Now()
		if err := uc.chatRepo.MarkConversationRead(ctx, conversationID, userID, readAt); err != nil {
			return nil, err
		}

		other := conv.OtherParticipant(userID)
		uc.publisher.Publish(other, EventRead, map[string]interface{}{
			"conversation_id": conversationID,
			"reader_id":       userID,
			"read_at":         readAt,
		})
		uc.EmitUnreadTotal(ctx, userID)
		uc.EmitUnreadTotal(ctx, other)
	}

	return &Thread{Conversation: conv, Messages: messages}, nil
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, conversationID, body string) (*entity.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.BadRequest("Message body cannot be empty", nil)
	}

	conv, err := uc.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}

	if allowed, wait := uc.limiter.Allow(userID, "send_message"); !allowed {
		return nil, errors.TooManyRequests("You are sending messages too quickly", wait)
	}

	message := &entity.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Body:           body,
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	// Both sides get the message: the counterpart sees it arrive, the
	// sender's other open tabs stay in sync.
	payload := map[string]interface{}{
		"conversation_id": conversationID,
		"message":         message,
	}
	other := conv.OtherParticipant(userID)
	uc.publisher.Publish(other, EventMessage, payload)
	uc.publisher.Publish(userID, EventMessage, payload)

	uc.EmitUnreadTotal(ctx, other)
	uc.EmitUnreadTotal(ctx, userID)

	return message, nil
}

func (uc *ChatUseCase) UnreadTotal(ctx context.Context, userID string) (int, error) {
	return uc.chatRepo.CountUnreadTotal(ctx, userID)
}

// EmitUnreadTotal recomputes a user's unread total and pushes it to their
// open streams. Failures are logged and swallowed: a stale badge must
// never fail the request that triggered the recount.
func (uc *ChatUseCase) EmitUnreadTotal(ctx context.Context, userID string) {
	if !uc.chatRepo.ReadTrackingEnabled() {
		return
	}
	total, err := uc.chatRepo.CountUnreadTotal(ctx, userID)
	if err != nil {
		logger.Error("Failed to count unread for %s: %v", userID, err)
		return
	}
	uc.publisher.Publish(userID, EventUnread, map[string]interface{}{
		"total_unread": total,
	})
}
