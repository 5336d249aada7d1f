package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dormdrop/internal/infrastructure/database"
	"dormdrop/pkg/errors"
)

func newChatRepo(t *testing.T, readTracking bool) (*PostgresChatRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewPostgresChatRepository(db, database.Capabilities{ReadTracking: readTracking})
	return repo, mock, func() { db.Close() }
}

func TestCountUnreadTotal(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, true)
	defer closeDB()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("buyer-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountUnreadTotal(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUnreadTotalWithoutReadTrackingIsZero(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, false)
	defer closeDB()

	total, err := repo.CountUnreadTotal(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	// No query must hit the database in degraded mode.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadTrackingEnabledReflectsCapabilities(t *testing.T) {
	withTracking, _, closeA := newChatRepo(t, true)
	defer closeA()
	without, _, closeB := newChatRepo(t, false)
	defer closeB()

	assert.True(t, withTracking.ReadTrackingEnabled())
	assert.False(t, without.ReadTrackingEnabled())
}

func TestGetOrCreateConversationCreatesNewThread(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, true)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO conversations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("conv-1", now))

	conv, created, err := repo.GetOrCreateConversation(context.Background(), "listing-1", "buyer-1", "seller-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "buyer-1", conv.BuyerID)
	assert.Equal(t, "seller-1", conv.SellerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateConversationReturnsExistingOnConflict(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, true)
	defer closeDB()

	now := time.Now()

	// ON CONFLICT DO NOTHING yields no RETURNING row.
	mock.ExpectQuery("INSERT INTO conversations").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("SELECT id, listing_id, buyer_id, seller_id, created_at, buyer_last_read_at, seller_last_read_at FROM conversations").
		WithArgs("listing-1", "buyer-1", "seller-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "buyer_id", "seller_id", "created_at", "buyer_last_read_at", "seller_last_read_at",
		}).AddRow("conv-1", "listing-1", "buyer-1", "seller-1", now, now, nil))

	conv, created, err := repo.GetOrCreateConversation(context.Background(), "listing-1", "buyer-1", "seller-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "conv-1", conv.ID)
	require.NotNil(t, conv.BuyerLastReadAt)
	assert.Nil(t, conv.SellerLastReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConversationRead(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, true)
	defer closeDB()

	readAt := time.Now()
	mock.ExpectExec("UPDATE conversations").
		WithArgs("conv-1", "buyer-1", readAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkConversationRead(context.Background(), "conv-1", "buyer-1", readAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConversationReadUnknownConversation(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, true)
	defer closeDB()

	readAt := time.Now()
	mock.ExpectExec("UPDATE conversations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkConversationRead(context.Background(), "missing", "buyer-1", readAt)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestMarkConversationReadWithoutReadTrackingIsNoop(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, false)
	defer closeDB()

	err := repo.MarkConversationRead(context.Background(), "conv-1", "buyer-1", time.Now())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMessagesOrderedAscending(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, true)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery("SELECT id, conversation_id, sender_id, body, created_at").
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "body", "created_at"}).
			AddRow("m1", "conv-1", "buyer-1", "hi", now.Add(-time.Minute)).
			AddRow("m2", "conv-1", "seller-1", "hello", now))

	messages, err := repo.ListMessages(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
}

func TestGetConversationNotFound(t *testing.T) {
	repo, mock, closeDB := newChatRepo(t, true)
	defer closeDB()

	mock.ExpectQuery("SELECT id, listing_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetConversation(context.Background(), "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
