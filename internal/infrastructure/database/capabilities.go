package database

import (
	"context"
	"database/sql"

	"dormdrop/pkg/logger"
)

// Capabilities records which optional schema features are present. It is
// populated once at startup and injected where needed, instead of probing
// the schema defensively on every request.
type Capabilities struct {
	// ReadTracking is true when conversations carry the per-participant
	// last-read columns. Without them unread totals degrade to zero and
	// mark-read becomes a no-op; that is a degraded mode, not an error.
	ReadTracking bool
}

// DetectCapabilities probes information_schema for the optional columns.
func DetectCapabilities(ctx context.Context, db *sql.DB) (Capabilities, error) {
	const query = `
		SELECT COUNT(*)
		FROM information_schema.columns
		WHERE table_name = 'conversations'
			AND column_name IN ('buyer_last_read_at', 'seller_last_read_at')
	`

	var count int
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return Capabilities{}, err
	}

	caps := Capabilities{ReadTracking: count == 2}
	if !caps.ReadTracking {
		logger.Warn("schema: conversations last-read columns missing, unread tracking disabled")
	}
	return caps, nil
}
