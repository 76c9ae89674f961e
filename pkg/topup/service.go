package topup

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

// BankMode selects who supplies the transfer bank details.
type BankMode string

const (
	// BankModeUpload leaves bank details empty until the user uploads proof.
	BankModeUpload BankMode = "upload"
	// BankModeServer attaches the first configured bank on Create.
	BankModeServer BankMode = "server"
)

// ParseBankMode maps a config value to a BankMode, defaulting to upload.
func ParseBankMode(s string) BankMode {
	if strings.EqualFold(strings.TrimSpace(s), string(BankModeServer)) {
		return BankModeServer
	}
	return BankModeUpload
}

type Options struct {
	BankMode BankMode
	Now      func() time.Time
	NewID    func() string
}

type Service struct {
	store    Store
	banks    BankLookup
	images   ImageIngestor
	bankMode BankMode
	now      func() time.Time
	newID    func() string
}

func NewService(store Store, banks BankLookup, images ImageIngestor, opts Options) *Service {
	s := &Service{
		store:    store,
		banks:    banks,
		images:   images,
		bankMode: opts.BankMode,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if s.bankMode == "" {
		s.bankMode = BankModeUpload
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// CreateInput carries raw client values; amounts are parsed here.
type CreateInput struct {
	WalletID   string
	CoinAmount string
	Price      string
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (models.TopupTransaction, error) {
	walletID := strings.TrimSpace(in.WalletID)
	if walletID == "" {
		return models.TopupTransaction{}, ErrValidation.WithMessage("wallet_id is required")
	}
	coin, err := money.Parse(in.CoinAmount)
	if err != nil {
		return models.TopupTransaction{}, ErrValidation.WithMessage("invalid coin_amount").Wrap(err)
	}
	price, err := money.Parse(in.Price)
	if err != nil {
		return models.TopupTransaction{}, ErrValidation.WithMessage("invalid price").Wrap(err)
	}

	now := s.now()
	t := models.TopupTransaction{
		ID:         s.newID(),
		UserID:     actor.ID,
		WalletID:   walletID,
		CoinAmount: coin,
		Price:      price,
		Status:     Proses,
		CreatedBy:  actor.Username,
		CreatedAt:  now,
		UpdatedBy:  actor.Username,
		UpdatedAt:  now,
	}
	if s.bankMode == BankModeServer && s.banks != nil {
		bank, ok, err := s.banks.FirstBank(ctx)
		if err != nil {
			return models.TopupTransaction{}, err
		}
		if ok {
			name, account := bank.BankName, bank.AccountNumber
			t.BankName = &name
			t.AccountNumber = &account
		}
	}

	if err := s.store.Create(ctx, &t); err != nil {
		return models.TopupTransaction{}, err
	}
	logEvents([]Event{newEvent(EventCreated, &t, Command{Actor: actor}, now)})
	return Present(t), nil
}

func (s *Service) Cancel(ctx context.Context, actor Actor, id string) (models.TopupTransaction, error) {
	return s.transition(ctx, id, Command{Action: ActionCancel, Actor: actor})
}

// ProofInput is the payload of an upload-proof request.
type ProofInput struct {
	BankName      string
	AccountNumber string
	Image         string
}

// maxBankField matches the size of the bank_name and account_number columns.
const maxBankField = 50

// UploadProof validates input, checks the guards on a snapshot, ingests the
// image outside the row lock, then re-checks the guards and writes under it.
//
// Against a concurrent Cancel the two calls serialize on the row lock. When
// the upload commits first both calls succeed and the cancelled record keeps
// its proof; when the cancel commits first the upload fails with
// ErrAlreadyCancelled.
func (s *Service) UploadProof(ctx context.Context, actor Actor, id string, in ProofInput) (models.TopupTransaction, error) {
	cmd := Command{
		Action:        ActionUploadProof,
		Actor:         actor,
		BankName:      strings.TrimSpace(in.BankName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
	}
	switch {
	case cmd.BankName == "":
		return models.TopupTransaction{}, ErrValidation.WithMessage("bank_name is required")
	case cmd.AccountNumber == "":
		return models.TopupTransaction{}, ErrValidation.WithMessage("account_number is required")
	case strings.TrimSpace(in.Image) == "":
		return models.TopupTransaction{}, ErrValidation.WithMessage("image is required")
	case utf8.RuneCountInString(cmd.BankName) > maxBankField:
		return models.TopupTransaction{}, ErrValidation.WithMessage("bank_name must not exceed 50 characters")
	case utf8.RuneCountInString(cmd.AccountNumber) > maxBankField:
		return models.TopupTransaction{}, ErrValidation.WithMessage("account_number must not exceed 50 characters")
	}

	cur, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.TopupTransaction{}, err
	}
	if err := Check(cur, cmd); err != nil {
		return models.TopupTransaction{}, err
	}

	image, err := s.images.Ingest(ctx, in.Image)
	if err != nil {
		if apperr.HasKind(err, apperr.InvalidImage) || apperr.HasKind(err, apperr.TooLarge) {
			return models.TopupTransaction{}, ErrInvalidImage.Wrap(err)
		}
		return models.TopupTransaction{}, err
	}
	cmd.ProofImage = image
	return s.transition(ctx, id, cmd)
}

// Approve marks a topup with uploaded proof as completed and credits its
// coins to the wallet. Administrators only.
func (s *Service) Approve(ctx context.Context, actor Actor, id string) (models.TopupTransaction, error) {
	return s.transition(ctx, id, Command{Action: ActionApprove, Actor: actor})
}

func (s *Service) transition(ctx context.Context, id string, cmd Command) (models.TopupTransaction, error) {
	var events []Event
	next, err := s.store.Mutate(ctx, id, func(cur models.TopupTransaction) (models.TopupTransaction, []Event, error) {
		n, evs, err := Apply(cur, cmd, s.now())
		events = evs
		return n, evs, err
	})
	if err != nil {
		return models.TopupTransaction{}, err
	}
	logEvents(events)
	return Present(next), nil
}

// List returns every topup, most recently updated first.
func (s *Service) List(ctx context.Context) ([]models.TopupTransaction, error) {
	rows, err := s.store.ListByUpdatedAtDesc(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = Present(rows[i])
	}
	return rows, nil
}

// Present rounds the monetary fields for display.
func Present(t models.TopupTransaction) models.TopupTransaction {
	t.CoinAmount = t.CoinAmount.Round2()
	t.Price = t.Price.Round2()
	return t
}

func logEvents(events []Event) {
	for _, e := range events {
		logger.WithFields(logrus.Fields{
			"event":       string(e.Type),
			"topup_id":    e.TopupID,
			"user_id":     e.UserID,
			"wallet_id":   e.WalletID,
			"coin_amount": e.CoinAmount.String(),
			"actor":       e.Actor,
		}).Info("topup event")
	}
}
