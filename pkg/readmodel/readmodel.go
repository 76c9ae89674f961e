// Package readmodel holds the read-only projections served to clients:
// wallets and the coin catalog, with money fields rounded for display.
package readmodel

import (
	"context"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

var ErrWalletNotFound = apperr.New(apperr.NotFound, "wallet_not_found", "wallet not found")

// WalletSource loads a user's wallet, returning ErrWalletNotFound when absent.
type WalletSource interface {
	WalletByUserID(ctx context.Context, userID string) (models.Wallet, error)
}

// CoinSource lists coin packages ordered by ascending coin amount.
type CoinSource interface {
	CoinsByAmountAsc(ctx context.Context) ([]models.Coin, error)
}

type WalletView struct {
	src WalletSource
}

func NewWalletView(src WalletSource) *WalletView { return &WalletView{src: src} }

func (v *WalletView) ForUser(ctx context.Context, userID string) (models.Wallet, error) {
	if userID == "" {
		return models.Wallet{}, ErrWalletNotFound
	}
	w, err := v.src.WalletByUserID(ctx, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	w.Amount = w.Amount.Round2()
	w.CoinAmount = w.CoinAmount.Round2()
	return w, nil
}

type CoinCatalog struct {
	src CoinSource
}

func NewCoinCatalog(src CoinSource) *CoinCatalog { return &CoinCatalog{src: src} }

func (c *CoinCatalog) List(ctx context.Context) ([]models.Coin, error) {
	coins, err := c.src.CoinsByAmountAsc(ctx)
	if err != nil {
		return nil, err
	}
	for i := range coins {
		coins[i].CoinAmount = coins[i].CoinAmount.Round2()
		coins[i].Price = coins[i].Price.Round2()
		coins[i].FinalPrice = coins[i].FinalPrice.Round2()
	}
	return coins, nil
}
