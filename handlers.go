package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/account"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
	"github.com/TurnIfCode/backend-gogo/pkg/imageingest"
)

var errBadRequest = apperr.New(apperr.Validation, "bad_request", "malformed request body")

// flexString accepts a JSON string or a bare JSON number, so amounts can be
// posted either way and parsed exactly.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexString(str)
	default:
		*f = flexString(s)
	}
	return nil
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondErr(c, imageingest.ErrTooLarge.Wrap(err))
			return false
		}
		respondErr(c, errBadRequest.Wrap(err))
		return false
	}
	return true
}

func (a *app) registerHandler(c *gin.Context) {
	var req account.Input
	if !bind(c, &req) {
		return
	}
	req.Role = ""
	user, err := account.Create(a.db, req, "")
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "registration successful", user)
}

func (a *app) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	user, err := account.Authenticate(a.db, req.Username, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	a.respondWithTokens(c, user, "login successful")
}

func (a *app) respondWithTokens(c *gin.Context, user models.User, message string) {
	token, exp, err := a.tokens.issue(user.ID, user.Username, account.RoleName(user))
	if err != nil {
		respondErr(c, apperr.WrapInternal("failed to generate token", err))
		return
	}
	refresh, err := a.tokens.createRefreshToken(a.db, user.ID)
	if err != nil {
		respondErr(c, apperr.WrapInternal("failed to create refresh token", err))
		return
	}
	respondOK(c, http.StatusOK, message, gin.H{
		"token":         token,
		"token_type":    "bearer",
		"expires_at":    exp,
		"refresh_token": refresh,
		"user":          user,
	})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func (a *app) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	user, next, err := a.tokens.rotateRefreshToken(a.db, req.RefreshToken)
	if err != nil {
		respondErr(c, err)
		return
	}
	token, exp, err := a.tokens.issue(user.ID, user.Username, account.RoleName(user))
	if err != nil {
		respondErr(c, apperr.WrapInternal("failed to generate token", err))
		return
	}
	respondOK(c, http.StatusOK, "token refreshed", gin.H{"token": token, "expires_at": exp, "refresh_token": next})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func (a *app) revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	if err := revokeRefreshToken(a.db, req.RefreshToken); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "refresh token revoked", nil)
}

func (a *app) meHandler(c *gin.Context) {
	actor := actorFromContext(c)
	respondOK(c, http.StatusOK, "ok", gin.H{"id": actor.ID, "username": actor.Username, "role": actor.Role})
}

func (a *app) profileHandler(c *gin.Context) {
	var user models.User
	err := a.db.WithContext(c.Request.Context()).
		Preload("Photo").Preload("Role").
		Where("id = ?", actorFromContext(c).ID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondErr(c, account.ErrUserNotFound)
			return
		}
		respondErr(c, apperr.WrapInternal("load profile", err))
		return
	}
	respondOK(c, http.StatusOK, "profile fetched", user)
}

// changePhotoHandler replaces the caller's photo with a base64 image.
func (a *app) changePhotoHandler(c *gin.Context) {
	var req struct {
		Image string `json:"image" form:"image"`
	}
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		respondErr(c, errBadRequest.WithMessage("image is required"))
		return
	}
	image, err := a.images.Ingest(c.Request.Context(), req.Image)
	if err != nil {
		respondErr(c, err)
		return
	}
	actor := actorFromContext(c)
	photo, err := a.photos.Replace(c.Request.Context(), actor.ID, image, actor.Username, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "photo updated", photo)
}
