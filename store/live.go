package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/live"
)

type LiveStore struct {
	db *gorm.DB
}

func NewLiveStore(db *gorm.DB) *LiveStore { return &LiveStore{db: db} }

var _ live.Store = (*LiveStore)(nil)

func (s *LiveStore) ListLive(ctx context.Context, offset, limit int) ([]models.LiveStream, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.LiveStream{}).Where("status = ?", models.LiveStatusLive).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify("count live streams", err)
	}
	var streams []models.LiveStream
	err := q.Preload("User.Photo").Order("started_at desc").Offset(offset).Limit(limit).Find(&streams).Error
	if err != nil {
		return nil, 0, classify("list live streams", err)
	}
	return streams, total, nil
}

func (s *LiveStore) Start(ctx context.Context, stream *models.LiveStream) error {
	return classify("start live stream", s.db.WithContext(ctx).Create(stream).Error)
}

func (s *LiveStore) End(ctx context.Context, userID, liveID string, now time.Time) (models.LiveStream, error) {
	var stream models.LiveStream
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND live_id = ? AND status = ?", userID, liveID, models.LiveStatusLive).
			Order("started_at desc").
			First(&stream).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return live.ErrNotFound
			}
			return err
		}
		stream.Status = models.LiveStatusEnded
		stream.EndedAt = &now
		if err := tx.Save(&stream).Error; err != nil {
			return err
		}
		return tx.Model(&models.LiveViewer{}).
			Where("live_id = ? AND left_at IS NULL", stream.ID).
			Update("left_at", now).Error
	})
	if err != nil {
		return models.LiveStream{}, classify("end live stream", err)
	}
	return stream, nil
}

func (s *LiveStore) Join(ctx context.Context, v models.LiveViewer) (models.LiveViewer, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stream models.LiveStream
		if err := tx.Where("id = ?", v.LiveID).First(&stream).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return live.ErrNotFound
			}
			return err
		}
		if stream.Status != models.LiveStatusLive {
			return live.ErrEnded
		}
		var open []models.LiveViewer
		if err := tx.Where("live_id = ? AND user_id = ? AND left_at IS NULL", v.LiveID, v.UserID).Limit(1).Find(&open).Error; err != nil {
			return err
		}
		if len(open) > 0 {
			v = open[0]
			return nil
		}
		return tx.Create(&v).Error
	})
	if err != nil {
		return models.LiveViewer{}, classify("join live stream", err)
	}
	return v, nil
}

func (s *LiveStore) Leave(ctx context.Context, streamID, userID string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.LiveViewer{}).
		Where("live_id = ? AND user_id = ? AND left_at IS NULL", streamID, userID).
		Update("left_at", now)
	if res.Error != nil {
		return classify("leave live stream", res.Error)
	}
	if res.RowsAffected == 0 {
		return live.ErrNotViewing
	}
	return nil
}

func (s *LiveStore) Viewers(ctx context.Context, streamID string) ([]models.LiveViewer, error) {
	var viewers []models.LiveViewer
	err := s.db.WithContext(ctx).Preload("User").
		Where("live_id = ? AND left_at IS NULL", streamID).
		Order("joined_at asc").
		Find(&viewers).Error
	if err != nil {
		return nil, classify("list viewers", err)
	}
	return viewers, nil
}
