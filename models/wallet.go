package models

import (
	"time"

	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

// Wallet is a user's balance: real money in Amount, spendable coins in
// CoinAmount.
type Wallet struct {
	ID         string       `gorm:"primaryKey;size:50" json:"id"`
	UserID     string       `gorm:"size:50;not null;uniqueIndex" json:"user_id"`
	User       *User        `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Amount     money.Amount `gorm:"type:numeric(12,2);not null" json:"amount"`
	CoinAmount money.Amount `gorm:"type:numeric(12,2);not null" json:"coin_amount"`
	CreatedBy  string       `gorm:"size:255" json:"created_by"`
	CreatedAt  time.Time    `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedBy  string       `gorm:"size:255" json:"updated_by"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// Coin is one purchasable coin package.
type Coin struct {
	ID         string       `gorm:"primaryKey;size:50" json:"id"`
	CoinAmount money.Amount `gorm:"type:numeric(12,2);not null;index" json:"coin_amount"`
	Price      money.Amount `gorm:"type:numeric(12,2);not null" json:"price"`
	IsBigDeal  bool         `gorm:"not null;default:false" json:"is_big_deal"`
	FinalPrice money.Amount `gorm:"type:numeric(12,2);not null" json:"final_price"`
	CreatedBy  string       `gorm:"size:255" json:"created_by"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedBy  string       `gorm:"size:255" json:"updated_by"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Bank is the account users transfer to when topping up.
type Bank struct {
	ID            string    `gorm:"primaryKey;size:50" json:"id"`
	BankName      string    `gorm:"size:50;not null" json:"bank_name"`
	AccountNumber string    `gorm:"size:50;not null" json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
