package entity

import "time"

// Conversation is a buyer-seller thread scoped to a single listing.
// At most one row exists per (listing, buyer, seller) triple.
type Conversation struct {
	ID               string     `json:"id"`
	ListingID        string     `json:"listing_id"`
	BuyerID          string     `json:"buyer_id"`
	SellerID         string     `json:"seller_id"`
	CreatedAt        time.Time  `json:"created_at"`
	BuyerLastReadAt  *time.Time `json:"buyer_last_read_at,omitempty"`
	SellerLastReadAt *time.Time `json:"seller_last_read_at,omitempty"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

func (c *Conversation) OtherParticipant(userID string) string {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

// LastReadAt returns the given participant's last-read timestamp.
// Nil means the participant has never read the thread.
func (c *Conversation) LastReadAt(userID string) *time.Time {
	if c.BuyerID == userID {
		return c.BuyerLastReadAt
	}
	if c.SellerID == userID {
		return c.SellerLastReadAt
	}
	return nil
}

// ConversationSummary is one inbox row: the thread plus the listing and
// counterpart context needed to render it.
type ConversationSummary struct {
	ID                string     `json:"id"`
	ListingID         string     `json:"listing_id"`
	ListingTitle      string     `json:"listing_title"`
	ListingCoverKey   string     `json:"-"`
	ListingCoverURL   string     `json:"listing_cover_url,omitempty"`
	OtherUserID       string     `json:"other_user_id"`
	OtherFirstName    string     `json:"other_first_name"`
	OtherLastName     string     `json:"other_last_name"`
	OtherUsername     string     `json:"other_username,omitempty"`
	LastMessageBody   string     `json:"last_message_body,omitempty"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
