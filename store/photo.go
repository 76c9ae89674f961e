package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TurnIfCode/backend-gogo/models"
)

type PhotoStore struct {
	db *gorm.DB
}

func NewPhotoStore(db *gorm.DB) *PhotoStore { return &PhotoStore{db: db} }

// Replace overwrites the user's photo, creating the row when missing.
func (s *PhotoStore) Replace(ctx context.Context, userID, image, by string, now time.Time) (models.UserPhoto, error) {
	var photo models.UserPhoto
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&photo).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			photo = models.UserPhoto{
				ID:        uuid.NewString(),
				UserID:    userID,
				Image:     image,
				CreatedBy: by,
				CreatedAt: now,
				UpdatedBy: by,
				UpdatedAt: now,
			}
			return tx.Create(&photo).Error
		case err != nil:
			return err
		}
		photo.Image = image
		photo.UpdatedBy = by
		photo.UpdatedAt = now
		return tx.Save(&photo).Error
	})
	if err != nil {
		return models.UserPhoto{}, classify("replace photo", err)
	}
	return photo, nil
}
