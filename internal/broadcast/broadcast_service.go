package broadcast

import (
	"context"
	"net/http"
	"time"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/apperror"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"

	"github.com/google/uuid"
)

//go:generate mockgen -source=broadcast_service.go -destination=mock/broadcast_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, creatorID string, req CreateBroadcastRequest) (BroadcastResponse, error)
	ListActive(ctx context.Context, userID string) ([]BroadcastResponse, error)
	MarkRead(ctx context.Context, userID, broadcastID string) error
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, creatorID string, req CreateBroadcastRequest) (BroadcastResponse, error) {
	creator, err := uuid.Parse(creatorID)
	if err != nil {
		return BroadcastResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid creator id", http.StatusBadRequest)
	}
	if !req.ExpiresAt.After(s.now()) {
		return BroadcastResponse{}, apperror.New(apperror.CodeInvalidInput, "expires_at must be in the future", http.StatusBadRequest)
	}

	b := &Broadcast{
		ID:        uuid.New(),
		Title:     req.Title,
		Body:      req.Body,
		CreatedBy: creator,
		ExpiresAt: req.ExpiresAt,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return BroadcastResponse{}, err
	}
	return mapToResponse(*b, false), nil
}

func (s *service) ListActive(ctx context.Context, userID string) ([]BroadcastResponse, error) {
	rows, err := s.repo.FindActive(ctx, s.now())
	if err != nil {
		if connection.IsUnavailable(err) {
			return []BroadcastResponse{}, nil
		}
		return nil, err
	}
	if len(rows) == 0 {
		return []BroadcastResponse{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, b := range rows {
		ids[i] = b.ID
	}
	receipts, err := s.repo.FindReceipts(ctx, userID, ids)
	if err != nil && !connection.IsUnavailable(err) {
		return nil, err
	}
	readSet := make(map[uuid.UUID]bool, len(receipts))
	for _, r := range receipts {
		readSet[r.BroadcastID] = true
	}

	res := make([]BroadcastResponse, len(rows))
	for i, b := range rows {
		res[i] = mapToResponse(b, readSet[b.ID])
	}
	return res, nil
}

func (s *service) MarkRead(ctx context.Context, userID, broadcastID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperror.New(apperror.CodeInvalidInput, "invalid user id", http.StatusBadRequest)
	}
	bid, err := uuid.Parse(broadcastID)
	if err != nil {
		return apperror.New(apperror.CodeInvalidInput, "invalid broadcast id", http.StatusBadRequest)
	}

	return s.repo.CreateReceipt(ctx, &ReadReceipt{
		ID:          uuid.New(),
		BroadcastID: bid,
		UserID:      uid,
		ReadAt:      s.now(),
	})
}

// SweepExpired deletes broadcasts strictly past expiry, receipts first
// because the store enforces no cascade. No notification and no audit
// row is produced for the deletion.
func (s *service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.FindExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(expired))
	for i, b := range expired {
		ids[i] = b.ID
	}

	if err := s.repo.DeleteReceiptsByBroadcastIDs(ctx, ids); err != nil {
		return 0, err
	}
	if err := s.repo.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func mapToResponse(b Broadcast, read bool) BroadcastResponse {
	return BroadcastResponse{
		ID:        b.ID.String(),
		Title:     b.Title,
		Body:      b.Body,
		CreatedBy: b.CreatedBy.String(),
		ExpiresAt: b.ExpiresAt.Format(time.RFC3339),
		Read:      read,
	}
}
