// Package topup implements the topup transaction lifecycle:
//
//	Proses --cancel--> Batal
//	Proses --upload proof--> Proses
//	Proses --approve--> Selesai
//
// Transitions are pure (Apply) and described as data (transitions). The
// Service composes them with a Store that runs the guard-then-mutate step
// atomically.
package topup

import (
	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

type Status = models.TopupStatus

const (
	Proses  = models.TopupProses
	Selesai = models.TopupSelesai
	Batal   = models.TopupBatal
)

var (
	ErrValidation       = apperr.New(apperr.Validation, "topup_invalid", "invalid topup request")
	ErrNotFound         = apperr.New(apperr.NotFound, "topup_not_found", "topup transaction not found")
	ErrForbidden        = apperr.New(apperr.Forbidden, "topup_forbidden", "you are not allowed to modify this topup transaction")
	ErrAlreadyCancelled = apperr.New(apperr.Conflict, "topup_already_cancelled", "topup transaction is already cancelled")
	ErrAlreadyCompleted = apperr.New(apperr.Conflict, "topup_already_completed", "topup transaction is already completed")
	ErrProofMissing     = apperr.New(apperr.Conflict, "topup_proof_missing", "proof of payment has not been uploaded")
	ErrInvalidImage     = apperr.New(apperr.InvalidImage, "topup_invalid_image", "proof image is invalid")
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID       string
	Username string
	Role     string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdministrator }

// Action names a transition.
type Action string

const (
	ActionCancel      Action = "cancel"
	ActionUploadProof Action = "upload_proof"
	ActionApprove     Action = "approve"
)

// Command is one requested transition. Proof fields are only read by
// ActionUploadProof.
type Command struct {
	Action        Action
	Actor         Actor
	BankName      string
	AccountNumber string
	ProofImage    string
}
