package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/domain/repository"
	"dormdrop/pkg/errors"
)

type publishedEvent struct {
	UserID  string
	Event   string
	Payload interface{}
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(userID, event string, payload interface{}) {
	p.events = append(p.events, publishedEvent{UserID: userID, Event: event, Payload: payload})
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(userID, action string) (bool, time.Duration) { return true, 0 }

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(userID, action string) (bool, time.Duration) { return false, time.Minute }

type fakeChatRepo struct {
	conversations map[string]*entity.Conversation
	messages      []*entity.Message
	unread        map[string]int
	readMarks     []string
	created       bool
	readTracking  bool
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]*entity.Conversation),
		unread:        make(map[string]int),
		readTracking:  true,
	}
}

func (f *fakeChatRepo) ReadTrackingEnabled() bool {
	return f.readTracking
}

func (f *fakeChatRepo) GetOrCreateConversation(ctx context.Context, listingID, buyerID, sellerID string) (*entity.Conversation, bool, error) {
	for _, c := range f.conversations {
		if c.ListingID == listingID && c.BuyerID == buyerID && c.SellerID == sellerID {
			return c, false, nil
		}
	}
	conv := &entity.Conversation{
		ID:        "conv-" + listingID,
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: time.Now(),
	}
	f.conversations[conv.ID] = conv
	f.created = true
	return conv, true, nil
}

func (f *fakeChatRepo) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	conv, ok := f.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conv, nil
}

func (f *fakeChatRepo) ListConversations(ctx context.Context, userID string) ([]*entity.ConversationSummary, error) {
	return nil, nil
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	message.ID = "msg-1"
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	return f.messages, nil
}

func (f *fakeChatRepo) MarkConversationRead(ctx context.Context, conversationID, userID string, readAt time.Time) error {
	f.readMarks = append(f.readMarks, conversationID+":"+userID)
	return nil
}

func (f *fakeChatRepo) CountUnreadTotal(ctx context.Context, userID string) (int, error) {
	return f.unread[userID], nil
}

type fakeListingRepo struct {
	listings map[string]*entity.Listing
}

func (f *fakeListingRepo) Create(ctx context.Context, l *entity.Listing) error {
	if l.ID == "" {
		l.ID = "listing-" + l.Title
	}
	f.listings[l.ID] = l
	return nil
}
func (f *fakeListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return l, nil
}
func (f *fakeListingRepo) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	return nil, nil
}
func (f *fakeListingRepo) ListBySeller(ctx context.Context, sellerID string) ([]*entity.Listing, error) {
	return nil, nil
}
func (f *fakeListingRepo) Update(ctx context.Context, l *entity.Listing) error       { return nil }
func (f *fakeListingRepo) SetSold(ctx context.Context, id string, isSold bool) error { return nil }
func (f *fakeListingRepo) Delete(ctx context.Context, id string) error               { return nil }

func newTestChatUseCase(chatRepo *fakeChatRepo, listingRepo *fakeListingRepo, pub *recordingPublisher, limiter Limiter) *ChatUseCase {
	return NewChatUseCase(chatRepo, listingRepo, nil, pub, limiter)
}

func seededConversation(repo *fakeChatRepo) *entity.Conversation {
	conv := &entity.Conversation{
		ID:        "conv-1",
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		CreatedAt: time.Now(),
	}
	repo.conversations[conv.ID] = conv
	return conv
}

func TestSendMessagePublishesToBothSides(t *testing.T) {
	chatRepo := newFakeChatRepo()
	seededConversation(chatRepo)
	chatRepo.unread["seller-1"] = 1

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	msg, err := uc.SendMessage(context.Background(), "buyer-1", "conv-1", "  hey, is this still available?  ")
	require.NoError(t, err)
	assert.Equal(t, "hey, is this still available?", msg.Body)
	require.Len(t, chatRepo.messages, 1)

	require.Len(t, pub.events, 4)
	assert.Equal(t, "seller-1", pub.events[0].UserID)
	assert.Equal(t, EventMessage, pub.events[0].Event)
	assert.Equal(t, "buyer-1", pub.events[1].UserID)
	assert.Equal(t, EventMessage, pub.events[1].Event)

	// Unread recounts follow the message fan-out.
	assert.Equal(t, "seller-1", pub.events[2].UserID)
	assert.Equal(t, EventUnread, pub.events[2].Event)
	assert.Equal(t, map[string]interface{}{"total_unread": 1}, pub.events[2].Payload)
	assert.Equal(t, "buyer-1", pub.events[3].UserID)
	assert.Equal(t, EventUnread, pub.events[3].Event)
}

func TestSendMessageEmptyBodyRejectedBeforeSideEffects(t *testing.T) {
	chatRepo := newFakeChatRepo()
	seededConversation(chatRepo)

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	_, err := uc.SendMessage(context.Background(), "buyer-1", "conv-1", "   \n\t  ")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
	assert.Empty(t, chatRepo.messages)
	assert.Empty(t, pub.events)
}

func TestSendMessageNonParticipantForbidden(t *testing.T) {
	chatRepo := newFakeChatRepo()
	seededConversation(chatRepo)

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	_, err := uc.SendMessage(context.Background(), "stranger", "conv-1", "hello")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Empty(t, chatRepo.messages)
	assert.Empty(t, pub.events)
}

func TestSendMessageRateLimited(t *testing.T) {
	chatRepo := newFakeChatRepo()
	seededConversation(chatRepo)

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, denyAllLimiter{})

	_, err := uc.SendMessage(context.Background(), "buyer-1", "conv-1", "hello")
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
	assert.Empty(t, chatRepo.messages)
	assert.Empty(t, pub.events)
}

func TestGetThreadMarksReadAndNotifiesCounterpart(t *testing.T) {
	chatRepo := newFakeChatRepo()
	seededConversation(chatRepo)
	chatRepo.messages = []*entity.Message{
		{ID: "m1", ConversationID: "conv-1", SenderID: "seller-1", Body: "hi"},
	}

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	thread, err := uc.GetThread(context.Background(), "buyer-1", "conv-1")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 1)
	assert.Equal(t, []string{"conv-1:buyer-1"}, chatRepo.readMarks)

	require.Len(t, pub.events, 3)

	read := pub.events[0]
	assert.Equal(t, "seller-1", read.UserID)
	assert.Equal(t, EventRead, read.Event)
	payload := read.Payload.(map[string]interface{})
	assert.Equal(t, "conv-1", payload["conversation_id"])
	assert.Equal(t, "buyer-1", payload["reader_id"])

	// Both sides get a fresh total: the reader's other tabs converge and
	// the counterpart's badge reflects the read.
	assert.Equal(t, "buyer-1", pub.events[1].UserID)
	assert.Equal(t, EventUnread, pub.events[1].Event)
	assert.Equal(t, "seller-1", pub.events[2].UserID)
	assert.Equal(t, EventUnread, pub.events[2].Event)
}

func TestGetThreadRepeatedReadIsIdempotent(t *testing.T) {
	chatRepo := newFakeChatRepo()
	seededConversation(chatRepo)

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	_, err := uc.GetThread(context.Background(), "buyer-1", "conv-1")
	require.NoError(t, err)
	_, err = uc.GetThread(context.Background(), "buyer-1", "conv-1")
	require.NoError(t, err)

	// Re-reading an already-read thread just refreshes the timestamp and
	// re-fires the same events; nothing accumulates.
	assert.Len(t, chatRepo.readMarks, 2)
	assert.Len(t, pub.events, 6)
}

func TestGetThreadWithoutReadTrackingStaysSilent(t *testing.T) {
	chatRepo := newFakeChatRepo()
	chatRepo.readTracking = false
	seededConversation(chatRepo)
	chatRepo.messages = []*entity.Message{
		{ID: "m1", ConversationID: "conv-1", SenderID: "seller-1", Body: "hi"},
	}

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	// Nothing was persisted, so no read state may be advertised.
	thread, err := uc.GetThread(context.Background(), "buyer-1", "conv-1")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 1)
	assert.Empty(t, chatRepo.readMarks)
	assert.Empty(t, pub.events)
}

func TestSendMessageWithoutReadTrackingSkipsUnreadEvents(t *testing.T) {
	chatRepo := newFakeChatRepo()
	chatRepo.readTracking = false
	seededConversation(chatRepo)

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	_, err := uc.SendMessage(context.Background(), "buyer-1", "conv-1", "hello")
	require.NoError(t, err)

	// Message delivery still works; only the unread recounts go away.
	require.Len(t, pub.events, 2)
	assert.Equal(t, EventMessage, pub.events[0].Event)
	assert.Equal(t, EventMessage, pub.events[1].Event)
}

func TestGetThreadNonParticipantForbidden(t *testing.T) {
	chatRepo := newFakeChatRepo()
	seededConversation(chatRepo)

	pub := &recordingPublisher{}
	uc := newTestChatUseCase(chatRepo, nil, pub, allowAllLimiter{})

	_, err := uc.GetThread(context.Background(), "stranger", "conv-1")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Empty(t, chatRepo.readMarks)
	assert.Empty(t, pub.events)
}

func TestStartConversationWithSelfRejected(t *testing.T) {
	chatRepo := newFakeChatRepo()
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{
		"listing-1": {ID: "listing-1", SellerID: "seller-1"},
	}}

	uc := newTestChatUseCase(chatRepo, listingRepo, &recordingPublisher{}, allowAllLimiter{})

	_, err := uc.StartConversation(context.Background(), "seller-1", "listing-1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
	assert.Empty(t, chatRepo.conversations)
}

func TestStartConversationDeduplicates(t *testing.T) {
	chatRepo := newFakeChatRepo()
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{
		"listing-1": {ID: "listing-1", SellerID: "seller-1"},
	}}

	uc := newTestChatUseCase(chatRepo, listingRepo, &recordingPublisher{}, allowAllLimiter{})

	first, err := uc.StartConversation(context.Background(), "buyer-1", "listing-1")
	require.NoError(t, err)

	second, err := uc.StartConversation(context.Background(), "buyer-1", "listing-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, chatRepo.conversations, 1)
}

func TestStartConversationUnknownListing(t *testing.T) {
	chatRepo := newFakeChatRepo()
	listingRepo := &fakeListingRepo{listings: map[string]*entity.Listing{}}

	uc := newTestChatUseCase(chatRepo, listingRepo, &recordingPublisher{}, allowAllLimiter{})

	_, err := uc.StartConversation(context.Background(), "buyer-1", "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
