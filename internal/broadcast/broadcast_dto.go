package broadcast

import "time"

type CreateBroadcastRequest struct {
	Title     string    `json:"title" binding:"required"`
	Body      string    `json:"body" binding:"required"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

type BroadcastResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedBy string `json:"created_by"`
	ExpiresAt string `json:"expires_at"`
	Read      bool   `json:"read"`
}
