package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

var (
	errInvalidToken   = apperr.New(apperr.Unauthenticated, "invalid_token", "invalid token")
	errInvalidRefresh = apperr.New(apperr.Unauthenticated, "invalid_refresh_token", "invalid or expired refresh token")
)

// accessClaims are carried by every access token. Subject is the user id.
type accessClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func newTokenIssuer(cfg Config) *tokenIssuer {
	return &tokenIssuer{secret: cfg.JWTSecret, ttl: cfg.JWTTTL, refreshTTL: cfg.RefreshTTL, now: time.Now}
}

func (ti *tokenIssuer) issue(userID, username, role string) (string, time.Time, error) {
	exp := ti.now().Add(ti.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(ti.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := token.SignedString(ti.secret)
	return s, exp, err
}

func (ti *tokenIssuer) parse(tokenString string) (*accessClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil || !token.Valid {
		return nil, errInvalidToken.Wrap(err)
	}
	if claims.Subject == "" {
		return nil, errInvalidToken.WithMessage("invalid claims")
	}
	return claims, nil
}

func hashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// createRefreshToken stores the hash of a new random token and returns the
// raw token.
func (ti *tokenIssuer) createRefreshToken(db *gorm.DB, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, TokenHash: hashRefreshToken(token), ExpiresAt: ti.now().Add(ti.refreshTTL)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// rotateRefreshToken revokes a valid refresh token and issues a replacement,
// returning the owning user with its role loaded.
func (ti *tokenIssuer) rotateRefreshToken(db *gorm.DB, raw string) (models.User, string, error) {
	var user models.User
	var next string
	err := db.Transaction(func(tx *gorm.DB) error {
		var rt models.RefreshToken
		if err := tx.Where("token_hash = ?", hashRefreshToken(raw)).First(&rt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errInvalidRefresh
			}
			return err
		}
		if rt.Revoked || ti.now().After(rt.ExpiresAt) {
			return errInvalidRefresh
		}
		if err := tx.Preload("Role").Where("id = ?", rt.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errInvalidRefresh
			}
			return err
		}
		res := tx.Model(&models.RefreshToken{}).Where("id = ? AND revoked = ?", rt.ID, false).Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInvalidRefresh
		}
		var err error
		next, err = ti.createRefreshToken(tx, user.ID)
		return err
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return models.User{}, "", err
		}
		return models.User{}, "", apperr.WrapInternal("rotate refresh token", err)
	}
	return user, next, nil
}

func revokeRefreshToken(db *gorm.DB, raw string) error {
	res := db.Model(&models.RefreshToken{}).Where("token_hash = ?", hashRefreshToken(raw)).Update("revoked", true)
	if res.Error != nil {
		return apperr.WrapInternal("revoke refresh token", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "refresh_token_not_found", "refresh token not found")
	}
	return nil
}
