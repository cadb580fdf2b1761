package broadcast

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is a time-bounded shop-floor announcement. Past ExpiresAt
// it is swept away together with its read receipts; the store has no
// cascade, so receipts must go first.
type Broadcast struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string    `gorm:"column:title;type:varchar(200);not null"`
	Body      string    `gorm:"column:body;type:text;not null"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Broadcast) TableName() string {
	return "broadcasts"
}

type ReadReceipt struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	BroadcastID uuid.UUID `gorm:"column:broadcast_id;type:uuid;not null;index"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	ReadAt      time.Time `gorm:"column:read_at;type:timestamptz;not null"`
}

func (ReadReceipt) TableName() string {
	return "broadcast_read_receipts"
}
