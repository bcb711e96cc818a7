// Package domain defines the persistence models for the marketplace
// messaging core: chat threads, memberships, messages, block edges, and
// email digest batches. These types are mapped with GORM and are shared
// across the repository and service layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// BlockedUser is a directional block edge between two users. The pair
// (blocker_id, blocked_id) is unique; re-blocking refreshes UpdatedAt
// instead of inserting a duplicate row.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - BlockerID / BlockedID: opaque user identifiers; composite unique.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type BlockedUser struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	BlockerID string    `json:"blocker_id" gorm:"type:varchar(64);not null;index;uniqueIndex:ux_blocker_blocked,priority:1"`
	BlockedID string    `json:"blocked_id" gorm:"type:varchar(64);not null;index;uniqueIndex:ux_blocker_blocked,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for BlockedUser.
func (BlockedUser) TableName() string { return "blocked_users" }

// Chat represents a conversation thread. 1:1 threads are unique per user
// pair; group threads (Name set, more than two members) are
// schema-supported but have no management API. The thread row is
// hard-deleted only by the teardown cascade once membership drops to one
// or zero.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - CID: short public-facing identifier from a URL-safe alphabet,
//     collision-checked at creation.
//   - Name: optional display name for group threads.
//   - CreatorID: user that opened the thread.
//   - LastMessageID: weak reference to the newest message (preview slot,
//     last-write-wins under concurrent sends).
//   - LastActivity: bumped on every send; list ordering key.
type Chat struct {
	ID            string    `json:"id"              gorm:"type:char(36);primaryKey"`
	CID           string    `json:"cid"             gorm:"column:cid;type:varchar(16);not null;uniqueIndex"`
	Name          string    `json:"name,omitempty"  gorm:"type:varchar(255)"`
	CreatorID     string    `json:"creator_id"      gorm:"type:varchar(64);not null;index"`
	LastMessageID *string   `json:"last_message_id,omitempty" gorm:"type:char(36)"`
	LastActivity  time.Time `json:"last_activity"   gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// ChatMember attaches a user to a chat and carries that user's presence.
// Presence is global to the user but stored per membership; the presence
// sweep updates every row for the user in one statement so the rows stay
// in lockstep. Deleting a 1:1 chat removes only the caller's row; the
// teardown cascade removes the rest.
type ChatMember struct {
	ChatID    string    `json:"chat_id"   gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:varchar(64);primaryKey;index"`
	Online    bool      `json:"online"    gorm:"not null;default:false"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`

	// Chat is the parent thread. Membership rows are cascade-deleted
	// if their chat is removed.
	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMember.
func (ChatMember) TableName() string { return "chat_members" }

// Message is a single entry in a chat's append-only log. Deletion is a
// flag flip (content is retained for audit); the only hard delete happens
// transactionally when an entire chat is torn down.
//
// Fields:
//   - ReplyToID: weak reference to another message in the same chat,
//     validated at send time.
//   - Read: meaningful only for non-author recipients; an author never
//     has an "unread" copy of their own message.
//   - Reactions: emoji → user-id set, serialized as a JSON column.
//     Exclusivity (one active reaction per user) is enforced in the
//     service layer, not by the database.
type Message struct {
	ID        string                          `json:"id"         gorm:"type:char(36);primaryKey"`
	ChatID    string                          `json:"chat_id"    gorm:"type:char(36);not null;index:idx_chat_msgs,priority:1"`
	AuthorID  string                          `json:"author_id"  gorm:"type:varchar(64);not null;index"`
	ReplyToID *string                         `json:"reply_to_id,omitempty" gorm:"type:char(36)"`
	Content   string                          `json:"content"    gorm:"type:text;not null"`
	Read      bool                            `json:"read"       gorm:"not null;default:false"`
	Edited    bool                            `json:"edited"     gorm:"not null;default:false"`
	EditedAt  *time.Time                      `json:"edited_at,omitempty"`
	Deleted   bool                            `json:"deleted"    gorm:"not null;default:false;index"`
	DeletedAt *time.Time                      `json:"deleted_at,omitempty"`
	DeletedBy *string                         `json:"deleted_by,omitempty" gorm:"type:varchar(64)"`
	Reactions datatypes.JSONType[ReactionMap] `json:"reactions"  gorm:"type:text"`
	CreatedAt time.Time                       `json:"created_at" gorm:"index:idx_chat_msgs,priority:2"`
	UpdatedAt time.Time                       `json:"updated_at"`

	// Chat is the parent thread. Messages are cascade-deleted only when
	// their chat row is removed by the teardown path.
	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// EmailBatch accumulates unseen messages for one recipient until the
// digest window elapses. At most one unprocessed batch exists per user,
// enforced by a partial unique index on (user_id) WHERE processed =
// false: concurrent openers hit a unique violation instead of creating a
// second window. New sends increment MessageCount and never move
// FirstMessageAt, so the window stays anchored to the first message. The
// periodic dispatcher marks elapsed batches processed after sending the
// digest.
type EmailBatch struct {
	ID             string    `json:"id"               gorm:"type:char(36);primaryKey"`
	UserID         string    `json:"user_id"          gorm:"type:varchar(64);not null;uniqueIndex:idx_batch_user_open,where:processed = false"`
	FirstMessageAt time.Time `json:"first_message_at" gorm:"not null"`
	MessageCount   int       `json:"message_count"    gorm:"not null;default:1"`
	Processed      bool      `json:"processed"        gorm:"not null;default:false;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for EmailBatch.
func (EmailBatch) TableName() string { return "email_batches" }
