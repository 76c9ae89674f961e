// Package live manages live-stream status rows and viewer sessions. No media
// is handled here.
package live

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

var (
	ErrLiveIDRequired = apperr.New(apperr.Validation, "live_id_required", "live_id is required")
	ErrNotFound       = apperr.New(apperr.NotFound, "live_not_found", "live stream not found")
	ErrEnded          = apperr.New(apperr.Conflict, "live_ended", "live stream has ended")
	ErrNotViewing     = apperr.New(apperr.NotFound, "not_viewing", "no open viewing session")
)

// DefaultPageSize is the number of streams per page when none is configured.
const DefaultPageSize = 2

// Store persists streams and viewer sessions. End must close every open
// viewer of the stream in the same transaction.
type Store interface {
	ListLive(ctx context.Context, offset, limit int) ([]models.LiveStream, int64, error)
	Start(ctx context.Context, s *models.LiveStream) error
	End(ctx context.Context, userID, liveID string, now time.Time) (models.LiveStream, error)
	Join(ctx context.Context, v models.LiveViewer) (models.LiveViewer, error)
	Leave(ctx context.Context, streamID, userID string, now time.Time) error
	Viewers(ctx context.Context, streamID string) ([]models.LiveViewer, error)
}

// Page is one page of live streams.
type Page struct {
	Streams  []models.LiveStream `json:"data"`
	Page     int                 `json:"current_page"`
	PageSize int                 `json:"per_page"`
	Total    int64               `json:"total"`
	LastPage int                 `json:"last_page"`
}

type Service struct {
	store    Store
	pageSize int
	now      func() time.Time
	newID    func() string
}

func NewService(store Store, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{store: store, pageSize: pageSize, now: time.Now, newID: uuid.NewString}
}

// List returns streams that are currently live, newest first. Pages start at 1.
func (s *Service) List(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	streams, total, err := s.store.ListLive(ctx, (page-1)*s.pageSize, s.pageSize)
	if err != nil {
		return Page{}, err
	}
	last := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if last < 1 {
		last = 1
	}
	return Page{Streams: streams, Page: page, PageSize: s.pageSize, Total: total, LastPage: last}, nil
}

func (s *Service) Start(ctx context.Context, userID, username, liveID string) (models.LiveStream, error) {
	liveID = strings.TrimSpace(liveID)
	if liveID == "" {
		return models.LiveStream{}, ErrLiveIDRequired
	}
	now := s.now()
	stream := models.LiveStream{
		ID:        s.newID(),
		UserID:    userID,
		LiveID:    liveID,
		Username:  username,
		Status:    models.LiveStatusLive,
		StartedAt: &now,
	}
	if err := s.store.Start(ctx, &stream); err != nil {
		return models.LiveStream{}, err
	}
	return stream, nil
}

func (s *Service) End(ctx context.Context, userID, liveID string) (models.LiveStream, error) {
	liveID = strings.TrimSpace(liveID)
	if liveID == "" {
		return models.LiveStream{}, ErrLiveIDRequired
	}
	return s.store.End(ctx, userID, liveID, s.now())
}

// Join opens a viewing session, or returns the caller's open one.
func (s *Service) Join(ctx context.Context, streamID, userID string) (models.LiveViewer, error) {
	return s.store.Join(ctx, models.LiveViewer{
		ID:       s.newID(),
		UserID:   userID,
		LiveID:   streamID,
		JoinedAt: s.now(),
	})
}

func (s *Service) Leave(ctx context.Context, streamID, userID string) error {
	return s.store.Leave(ctx, streamID, userID, s.now())
}

func (s *Service) Viewers(ctx context.Context, streamID string) ([]models.LiveViewer, error) {
	return s.store.Viewers(ctx, streamID)
}
