package store

import (
	"context"
	"time"

	"github.com/bloomie/bloomie-care/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., sqlite, postgres).
type Store interface {
	Nurtures() Nurtures
	Logs() Logs
	Acks() Acks
}

type Nurtures interface {
	Create(ctx context.Context, n *model.Nurture) (*model.Nurture, error)
	Get(ctx context.Context, ownerID, nurtureID string) (*model.Nurture, error)
	List(ctx context.Context, ownerID string) ([]*model.Nurture, error)
	Update(ctx context.Context, n *model.Nurture) (*model.Nurture, error)
	// Delete removes the nurture and all of its activity logs in one
	// transaction.
	Delete(ctx context.Context, ownerID, nurtureID string) error
}

type Logs interface {
	Create(ctx context.Context, l *model.ActivityLog) (*model.ActivityLog, error)
	Get(ctx context.Context, nurtureID, logID string) (*model.ActivityLog, error)
	List(ctx context.Context, req model.ListLogsRequest) ([]*model.ActivityLog, error)
	Delete(ctx context.Context, nurtureID, logID string) error
}

// Acks is append-only: acknowledgements are never updated or deleted, they
// age out of the active window instead.
type Acks interface {
	Append(ctx context.Context, a *model.Acknowledgement) (*model.Acknowledgement, error)
	// ActiveIDs returns the alert IDs acknowledged by the owner at or after
	// since.
	ActiveIDs(ctx context.Context, ownerID string, since time.Time) (map[string]bool, error)
}
