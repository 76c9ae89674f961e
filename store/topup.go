package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/readmodel"
	"github.com/TurnIfCode/backend-gogo/pkg/topup"
)

// TopupStore is the gorm implementation of topup.Store.
type TopupStore struct {
	db *gorm.DB
}

func NewTopupStore(db *gorm.DB) *TopupStore { return &TopupStore{db: db} }

var _ topup.Store = (*TopupStore)(nil)

func (s *TopupStore) Create(ctx context.Context, t *models.TopupTransaction) error {
	return classify("create topup", s.db.WithContext(ctx).Create(t).Error)
}

func (s *TopupStore) FindByID(ctx context.Context, id string) (models.TopupTransaction, error) {
	var t models.TopupTransaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, topup.ErrNotFound
		}
		return t, classify("find topup", err)
	}
	return t, nil
}

// Mutate locks the row with SELECT ... FOR UPDATE, runs fn, saves the result
// and applies its events before committing.
func (s *TopupStore) Mutate(ctx context.Context, id string, fn topup.MutateFunc) (models.TopupTransaction, error) {
	var out models.TopupTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.TopupTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&cur).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return topup.ErrNotFound
			}
			return err
		}
		next, events, err := fn(cur)
		if err != nil {
			return err
		}
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		for _, e := range events {
			if err := applyEvent(tx, e); err != nil {
				return err
			}
		}
		out = next
		return nil
	})
	if err != nil {
		return models.TopupTransaction{}, classify("update topup", err)
	}
	return out, nil
}

func applyEvent(tx *gorm.DB, e topup.Event) error {
	switch e.Type {
	case topup.EventCompleted:
		res := tx.Model(&models.Wallet{}).Where("id = ?", e.WalletID).Updates(map[string]interface{}{
			"coin_amount": gorm.Expr("coin_amount + ?", e.CoinAmount),
			"updated_by":  e.Actor,
			"updated_at":  e.At,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return readmodel.ErrWalletNotFound
		}
	}
	return nil
}

func (s *TopupStore) ListByUpdatedAtDesc(ctx context.Context) ([]models.TopupTransaction, error) {
	var rows []models.TopupTransaction
	if err := s.db.WithContext(ctx).Order("updated_at desc").Find(&rows).Error; err != nil {
		return nil, classify("list topups", err)
	}
	return rows, nil
}

// ListByStatus is used by the operator tools.
func (s *TopupStore) ListByStatus(ctx context.Context, status topup.Status) ([]models.TopupTransaction, error) {
	var rows []models.TopupTransaction
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, classify("list topups", err)
	}
	return rows, nil
}
