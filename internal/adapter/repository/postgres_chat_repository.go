package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"dormdrop/internal/domain/entity"
	"dormdrop/internal/infrastructure/database"
	"dormdrop/pkg/errors"
)

type PostgresChatRepository struct {
	db   *sql.DB
	caps database.Capabilities
}

func NewPostgresChatRepository(db *sql.DB, caps database.Capabilities) *PostgresChatRepository {
	return &PostgresChatRepository{db: db, caps: caps}
}

func (r *PostgresChatRepository) conversationColumns() string {
	if r.caps.ReadTracking {
		return `id, listing_id, buyer_id, seller_id, created_at, buyer_last_read_at, seller_last_read_at`
	}
	return `id, listing_id, buyer_id, seller_id, created_at`
}

func (r *PostgresChatRepository) scanConversation(row interface{ Scan(...interface{}) error }) (*entity.Conversation, error) {
	var conv entity.Conversation
	if r.caps.ReadTracking {
		var buyerRead, sellerRead sql.NullTime
		err := row.Scan(&conv.ID, &conv.ListingID, &conv.BuyerID, &conv.SellerID, &conv.CreatedAt, &buyerRead, &sellerRead)
		if err != nil {
			return nil, err
		}
		if buyerRead.Valid {
			conv.BuyerLastReadAt = &buyerRead.Time
		}
		if sellerRead.Valid {
			conv.SellerLastReadAt = &sellerRead.Time
		}
		return &conv, nil
	}

	err := row.Scan(&conv.ID, &conv.ListingID, &conv.BuyerID, &conv.SellerID, &conv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *PostgresChatRepository) GetOrCreateConversation(ctx context.Context, listingID, buyerID, sellerID string) (*entity.Conversation, bool, error) {
	insert := `
		INSERT INTO conversations (id, listing_id, buyer_id, seller_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (listing_id, buyer_id, seller_id) DO NOTHING
		RETURNING id, created_at
	`

	conv := entity.Conversation{
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
	}
	err := r.db.QueryRowContext(ctx, insert,
		uuid.New().String(), listingID, buyerID, sellerID, time.Now(),
	).Scan(&conv.ID, &conv.CreatedAt)
	if err == nil {
		return &conv, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, errors.Internal("Failed to create conversation", err)
	}

	// Conflict: the thread already exists for this triple.
	query := `SELECT ` + r.conversationColumns() + ` FROM conversations WHERE listing_id = $1 AND buyer_id = $2 AND seller_id = $3`
	existing, err := r.scanConversation(r.db.QueryRowContext(ctx, query, listingID, buyerID, sellerID))
	if err != nil {
		return nil, false, errors.Internal("Failed to load conversation", err)
	}
	return existing, false, nil
}

func (r *PostgresChatRepository) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	query := `SELECT ` + r.conversationColumns() + ` FROM conversations WHERE id = $1`
	conv, err := r.scanConversation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Conversation", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get conversation", err)
	}
	return conv, nil
}

func (r *PostgresChatRepository) ListConversations(ctx context.Context, userID string) ([]*entity.ConversationSummary, error) {
	query := `
		SELECT c.id, c.listing_id, l.title, COALESCE(ci.object_key, ''),
			u.id, u.first_name, u.last_name, COALESCE(u.username, ''),
			lm.body, lm.created_at, c.created_at
		FROM conversations c
		JOIN listings l ON l.id = c.listing_id
		JOIN users u ON u.id = CASE WHEN c.buyer_id = $1 THEN c.seller_id ELSE c.buyer_id END
		LEFT JOIN LATERAL (
			SELECT object_key FROM listing_images
			WHERE listing_id = l.id AND is_cover
			LIMIT 1
		) ci ON true
		LEFT JOIN LATERAL (
			SELECT body, created_at FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON true
		WHERE c.buyer_id = $1 OR c.seller_id = $1
		ORDER BY COALESCE(lm.created_at, c.created_at) DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list conversations", err)
	}
	defer rows.Close()

	var summaries []*entity.ConversationSummary
	for rows.Next() {
		var s entity.ConversationSummary
		var lastBody sql.NullString
		var lastAt sql.NullTime
		err := rows.Scan(
			&s.ID, &s.ListingID, &s.ListingTitle, &s.ListingCoverKey,
			&s.OtherUserID, &s.OtherFirstName, &s.OtherLastName, &s.OtherUsername,
			&lastBody, &lastAt, &s.CreatedAt,
		)
		if err != nil {
			return nil, errors.Internal("Failed to scan conversation", err)
		}
		if lastBody.Valid {
			s.LastMessageBody = lastBody.String
		}
		if lastAt.Valid {
			s.LastMessageAt = &lastAt.Time
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list conversations", err)
	}
	return summaries, nil
}

func (r *PostgresChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.ConversationID, message.SenderID, message.Body, message.CreatedAt,
	)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *PostgresChatRepository) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, errors.Internal("Failed to scan message", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	return messages, nil
}

func (r *PostgresChatRepository) ReadTrackingEnabled() bool {
	return r.caps.ReadTracking
}

func (r *PostgresChatRepository) MarkConversationRead(ctx context.Context, conversationID, userID string, readAt time.Time) error {
	if !r.caps.ReadTracking {
		return nil
	}

	query := `
		UPDATE conversations
		SET buyer_last_read_at = CASE WHEN buyer_id = $2 THEN $3 ELSE buyer_last_read_at END,
			seller_last_read_at = CASE WHEN seller_id = $2 THEN $3 ELSE seller_last_read_at END
		WHERE id = $1 AND (buyer_id = $2 OR seller_id = $2)
	`
	result, err := r.db.ExecContext(ctx, query, conversationID, userID, readAt)
	if err != nil {
		return errors.Internal("Failed to mark conversation read", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("Conversation", nil)
	}
	return nil
}

func (r *PostgresChatRepository) CountUnreadTotal(ctx context.Context, userID string) (int, error) {
	if !r.caps.ReadTracking {
		return 0, nil
	}

	// Counterpart messages strictly newer than the caller's last read,
	// summed over every thread the caller belongs to. A NULL last-read
	// means the thread has never been read: count from the epoch.
	query := `
		SELECT COUNT(m.id)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.buyer_id = $1 AND m.sender_id = c.seller_id
				AND m.created_at > COALESCE(c.buyer_last_read_at, to_timestamp(0)))
			OR (c.seller_id = $1 AND m.sender_id = c.buyer_id
				AND m.created_at > COALESCE(c.seller_last_read_at, to_timestamp(0)))
	`

	var total int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return total, nil
}
