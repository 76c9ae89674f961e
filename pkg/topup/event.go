package topup

import (
	"time"

	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

type EventType string

const (
	EventCreated       EventType = "topup.created"
	EventCancelled     EventType = "topup.cancelled"
	EventProofAttached EventType = "topup.proof_attached"
	// EventCompleted must be applied by the Store in the same transaction as
	// the status change: it credits CoinAmount to WalletID.
	EventCompleted EventType = "topup.completed"
)

// Event describes a committed state change.
type Event struct {
	Type       EventType
	TopupID    string
	UserID     string
	WalletID   string
	CoinAmount money.Amount
	Actor      string
	At         time.Time
}
