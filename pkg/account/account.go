// Package account creates users together with their photo and wallet, and
// checks credentials.
package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
	"github.com/TurnIfCode/backend-gogo/pkg/validation"
	"github.com/TurnIfCode/backend-gogo/store"
)

var (
	ErrInvalidInput       = apperr.New(apperr.Validation, "invalid_input", "invalid input")
	ErrUsernameTaken      = apperr.New(apperr.Conflict, "username_taken", "username has already been taken")
	ErrEmailTaken         = apperr.New(apperr.Conflict, "email_taken", "email has already been taken")
	ErrPhoneTaken         = apperr.New(apperr.Conflict, "phone_taken", "phone number is already registered")
	ErrInvalidCredentials = apperr.New(apperr.Unauthenticated, "invalid_credentials", "invalid username or password")
	ErrUserNotFound       = apperr.New(apperr.NotFound, "user_not_found", "user not found")
)

// Input is shared by the register endpoint, seeding and the CLIs.
type Input struct {
	Username    string `json:"username" validate:"required,min=4"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,number,min=11"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"-"`
}

func (in *Input) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
}

// Create creates the user, a default photo and an empty wallet in one
// transaction.
func Create(db *gorm.DB, in Input, by string) (models.User, error) {
	in.normalize()
	if msgs := validation.Struct(in); len(msgs) > 0 {
		return models.User{}, ErrInvalidInput.WithMessage(strings.Join(msgs, "; "))
	}
	if by == "" {
		by = in.Username
	}

	// optimistic pre-check for friendlier messages; the unique indexes decide
	checks := []struct {
		column, value string
		err           *apperr.Error
	}{
		{"username", in.Username, ErrUsernameTaken},
		{"email", in.Email, ErrEmailTaken},
		{"phone_number", in.PhoneNumber, ErrPhoneTaken},
	}
	for _, c := range checks {
		var n int64
		if err := db.Model(&models.User{}).Where(c.column+" = ?", c.value).Count(&n).Error; err != nil {
			return models.User{}, apperr.WrapInternal("check existing user", err)
		}
		if n > 0 {
			return models.User{}, c.err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.WrapInternal("hash password", err)
	}
	avatar, err := DefaultAvatar(in.Username)
	if err != nil {
		return models.User{}, apperr.WrapInternal("render avatar", err)
	}

	now := time.Now()
	user := models.User{
		ID:             uuid.NewString(),
		Username:       in.Username,
		Name:           in.Name,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		HashedPassword: hashed,
		CreatedBy:      by,
		UpdatedBy:      by,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", in.Role).FirstOrCreate(&role, models.Role{Name: in.Role}).Error; err != nil {
			return err
		}
		user.RoleID = &role.ID
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		photo := models.UserPhoto{
			ID: uuid.NewString(), UserID: user.ID, Image: avatar,
			CreatedBy: by, CreatedAt: now, UpdatedBy: by, UpdatedAt: now,
		}
		if err := tx.Create(&photo).Error; err != nil {
			return err
		}
		wallet := models.Wallet{
			ID: uuid.NewString(), UserID: user.ID, Amount: money.Zero, CoinAmount: money.Zero,
			CreatedBy: by, CreatedAt: now, UpdatedBy: by, UpdatedAt: now,
		}
		if err := tx.Create(&wallet).Error; err != nil {
			return err
		}
		user.Photo = &photo
		return nil
	})
	if err != nil {
		return models.User{}, uniqueToConflict(err)
	}
	return user, nil
}

// uniqueToConflict maps a unique violation raced past the pre-check to the
// matching conflict error.
func uniqueToConflict(err error) error {
	name, ok := store.UniqueViolation(err)
	if !ok {
		return apperr.WrapInternal("create account", err)
	}
	switch {
	case strings.Contains(name, "username"):
		return ErrUsernameTaken.Wrap(err)
	case strings.Contains(name, "email"):
		return ErrEmailTaken.Wrap(err)
	case strings.Contains(name, "phone"):
		return ErrPhoneTaken.Wrap(err)
	}
	return store.ErrDuplicate.Wrap(err)
}

// Authenticate checks a username/password pair and loads the role.
func Authenticate(db *gorm.DB, username, password string) (models.User, error) {
	var user models.User
	err := db.Preload("Role").Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, apperr.WrapInternal("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword rehashes the password and revokes every refresh token.
func ResetPassword(db *gorm.DB, username, password string) error {
	if len(password) < 8 {
		return ErrInvalidInput.WithMessage("password must have minimum length 8")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.WrapInternal("hash password", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"hashed_password": hashed,
			"updated_by":      "system",
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return err
		}
		return apperr.WrapInternal("reset password", err)
	}
	return nil
}

// RoleName returns the preloaded role name, or "".
func RoleName(u models.User) string {
	if u.Role != nil {
		return u.Role.Name
	}
	return ""
}
