package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/readmodel"
)

// CatalogStore serves wallets, coins and banks.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore { return &CatalogStore{db: db} }

func (s *CatalogStore) WalletByUserID(ctx context.Context, userID string) (models.Wallet, error) {
	var w models.Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return w, readmodel.ErrWalletNotFound
		}
		return w, classify("find wallet", err)
	}
	return w, nil
}

func (s *CatalogStore) CoinsByAmountAsc(ctx context.Context) ([]models.Coin, error) {
	var coins []models.Coin
	if err := s.db.WithContext(ctx).Order("coin_amount asc").Find(&coins).Error; err != nil {
		return nil, classify("list coins", err)
	}
	return coins, nil
}

// UpsertCoins inserts coins or overwrites existing ids.
func (s *CatalogStore) UpsertCoins(ctx context.Context, coins []models.Coin) error {
	if len(coins) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"coin_amount", "price", "is_big_deal", "final_price", "updated_by", "updated_at"}),
	}).Create(&coins).Error
	return classify("upsert coins", err)
}

// FirstBank returns the oldest configured bank account.
func (s *CatalogStore) FirstBank(ctx context.Context) (models.Bank, bool, error) {
	var banks []models.Bank
	if err := s.db.WithContext(ctx).Order("created_at asc").Limit(1).Find(&banks).Error; err != nil {
		return models.Bank{}, false, classify("find bank", err)
	}
	if len(banks) == 0 {
		return models.Bank{}, false, nil
	}
	return banks[0], true, nil
}
