package topup

import (
	"time"

	"github.com/TurnIfCode/backend-gogo/models"
)

type guard func(cur *models.TopupTransaction, cmd Command) error

type effect func(next *models.TopupTransaction, cmd Command, now time.Time) []Event

type transition struct {
	to     Status
	guards []guard
	apply  effect
}

// openOnly is evaluated in order: a cancelled record reports
// ErrAlreadyCancelled even if it was somehow also completed.
var openOnly = []guard{notCancelled, notCompleted}

var transitions = map[Action]transition{
	ActionCancel: {
		to:     Batal,
		guards: append([]guard{requireOwner}, openOnly...),
		apply:  cancel,
	},
	ActionUploadProof: {
		to:     Proses,
		guards: append([]guard{requireOwner}, openOnly...),
		apply:  attachProof,
	},
	ActionApprove: {
		to:     Selesai,
		guards: append(append([]guard{requireAdmin}, openOnly...), requireProof),
		apply:  approve,
	},
}

func requireOwner(cur *models.TopupTransaction, cmd Command) error {
	if cur.UserID != cmd.Actor.ID {
		return ErrForbidden
	}
	return nil
}

func requireAdmin(_ *models.TopupTransaction, cmd Command) error {
	if !cmd.Actor.IsAdmin() {
		return ErrForbidden.WithMessage("only administrators can approve topup transactions")
	}
	return nil
}

func notCancelled(cur *models.TopupTransaction, _ Command) error {
	if cur.Status == Batal {
		return ErrAlreadyCancelled
	}
	return nil
}

func notCompleted(cur *models.TopupTransaction, _ Command) error {
	if cur.Status == Selesai {
		return ErrAlreadyCompleted
	}
	return nil
}

func requireProof(cur *models.TopupTransaction, _ Command) error {
	if cur.Image == nil || *cur.Image == "" {
		return ErrProofMissing
	}
	return nil
}

// Check runs the guards of cmd against cur without producing a new state.
func Check(cur models.TopupTransaction, cmd Command) error {
	t, ok := transitions[cmd.Action]
	if !ok {
		return ErrValidation.WithMessage("unknown topup action " + string(cmd.Action))
	}
	for _, g := range t.guards {
		if err := g(&cur, cmd); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns the state that results from cmd, plus the events it emits.
// cur is not modified.
func Apply(cur models.TopupTransaction, cmd Command, now time.Time) (models.TopupTransaction, []Event, error) {
	if err := Check(cur, cmd); err != nil {
		return cur, nil, err
	}
	t := transitions[cmd.Action]
	next := cur
	next.Status = t.to
	next.UpdatedBy = cmd.Actor.Username
	next.UpdatedAt = now
	return next, t.apply(&next, cmd, now), nil
}

func cancel(next *models.TopupTransaction, cmd Command, now time.Time) []Event {
	by := cmd.Actor.Username
	at := now
	next.CanceledBy = &by
	next.CanceledAt = &at
	return []Event{newEvent(EventCancelled, next, cmd, now)}
}

func attachProof(next *models.TopupTransaction, cmd Command, now time.Time) []Event {
	bank, account, image := cmd.BankName, cmd.AccountNumber, cmd.ProofImage
	next.BankName = &bank
	next.AccountNumber = &account
	next.Image = &image
	return []Event{newEvent(EventProofAttached, next, cmd, now)}
}

func approve(next *models.TopupTransaction, cmd Command, now time.Time) []Event {
	by := cmd.Actor.Username
	at := now
	next.ApprovedBy = &by
	next.ApprovedAt = &at
	return []Event{newEvent(EventCompleted, next, cmd, now)}
}

func newEvent(typ EventType, t *models.TopupTransaction, cmd Command, now time.Time) Event {
	return Event{
		Type:       typ,
		TopupID:    t.ID,
		UserID:     t.UserID,
		WalletID:   t.WalletID,
		CoinAmount: t.CoinAmount,
		Actor:      cmd.Actor.Username,
		At:         now,
	}
}
