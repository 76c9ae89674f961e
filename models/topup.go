package models

import (
	"time"

	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

// TopupStatus is the lifecycle state of a topup transaction.
type TopupStatus string

const (
	TopupProses  TopupStatus = "Proses"
	TopupSelesai TopupStatus = "Selesai"
	TopupBatal   TopupStatus = "Batal"
)

// TopupTransaction records a user's claim of a bank transfer in exchange for
// coins. Audit stamps are set explicitly by the caller.
type TopupTransaction struct {
	ID            string       `gorm:"primaryKey;size:50" json:"id"`
	UserID        string       `gorm:"size:50;not null;index" json:"user_id"`
	WalletID      string       `gorm:"size:50;not null;index" json:"wallet_id"`
	Wallet        *Wallet      `gorm:"foreignKey:WalletID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CoinAmount    money.Amount `gorm:"type:numeric(12,2);not null" json:"coin_amount"`
	Price         money.Amount `gorm:"type:numeric(12,2);not null" json:"price"`
	BankName      *string      `gorm:"size:50" json:"bank_name"`
	AccountNumber *string      `gorm:"size:50" json:"account_number"`
	Status        TopupStatus  `gorm:"size:10;not null;index" json:"status"`
	Image         *string      `gorm:"type:text" json:"image,omitempty"`
	CreatedBy     string       `gorm:"size:255" json:"created_by"`
	CreatedAt     time.Time    `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedBy     string       `gorm:"size:255" json:"updated_by"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime:false;index" json:"updated_at"`
	ApprovedBy    *string      `gorm:"size:255" json:"approved_by"`
	ApprovedAt    *time.Time   `json:"approved_at"`
	CanceledBy    *string      `gorm:"size:255" json:"canceled_by"`
	CanceledAt    *time.Time   `json:"canceled_at"`
}

func (TopupTransaction) TableName() string { return "user_topup_transactions" }
