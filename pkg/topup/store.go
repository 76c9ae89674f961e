package topup

import (
	"context"

	"github.com/TurnIfCode/backend-gogo/models"
)

// MutateFunc computes the next state from the current, locked record.
type MutateFunc func(cur models.TopupTransaction) (models.TopupTransaction, []Event, error)

// Store persists topup transactions. Mutate must run fn and persist its
// result (including applying EventCompleted to the wallet) as one atomic
// unit: two concurrent Mutate calls on the same id observe each other's
// writes. A missing id yields ErrNotFound; an error from fn is returned
// unchanged and nothing is written.
type Store interface {
	Create(ctx context.Context, t *models.TopupTransaction) error
	FindByID(ctx context.Context, id string) (models.TopupTransaction, error)
	Mutate(ctx context.Context, id string, fn MutateFunc) (models.TopupTransaction, error)
	ListByUpdatedAtDesc(ctx context.Context) ([]models.TopupTransaction, error)
}

// BankLookup supplies server-side bank details when BankModeServer is on.
type BankLookup interface {
	FirstBank(ctx context.Context) (models.Bank, bool, error)
}

// ImageIngestor validates and bounds a proof image payload.
type ImageIngestor interface {
	Ingest(ctx context.Context, raw string) (string, error)
}
