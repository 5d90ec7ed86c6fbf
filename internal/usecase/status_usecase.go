package usecase

import (
	"context"
	"time"

	"datajobs/internal/database"
	"datajobs/internal/infrastructure/cache"
	"datajobs/internal/repository"
	"datajobs/internal/ws"
)

const statusSummaryKey = "status:summary"

// StatusSummary is the dashboard view of the engine.
type StatusSummary struct {
	TotalPostings int64  `json:"total_postings"`
	PostingsToday int64  `json:"postings_today"`
	Quarantined   int64  `json:"quarantined"`
	Database      string `json:"database"`
	Cache         string `json:"cache"`
	WSClients     int    `json:"ws_clients"`
}

type StatusUsecase struct {
	postings   repository.PostingRepository
	quarantine repository.QuarantineRepository
	db         database.DB
	cache      *cache.Redis
	hub        *ws.Hub
}

func NewStatusUsecase(postings repository.PostingRepository, quarantine repository.QuarantineRepository, db database.DB, rdb *cache.Redis, hub *ws.Hub) *StatusUsecase {
	return &StatusUsecase{postings: postings, quarantine: quarantine, db: db, cache: rdb, hub: hub}
}

// Summary answers from cache when it can; counts are cheap to stale for a
// few seconds.
func (u *StatusUsecase) Summary(ctx context.Context) (StatusSummary, error) {
	var cached StatusSummary
	if hit, _ := u.cache.GetJSON(ctx, statusSummaryKey, &cached); hit {
		cached.WSClients = u.hub.ClientCount()
		return cached, nil
	}

	var s StatusSummary
	var err error

	if s.TotalPostings, err = u.postings.CountPostings(ctx); err != nil {
		return StatusSummary{}, err
	}
	if s.PostingsToday, err = u.postings.CountPostingsToday(ctx); err != nil {
		return StatusSummary{}, err
	}
	if s.Quarantined, err = u.quarantine.Count(ctx); err != nil {
		return StatusSummary{}, err
	}

	s.Database = "ok"
	if err := u.db.Ping(ctx); err != nil {
		s.Database = "down"
	}
	s.Cache = "ok"
	if err := u.cache.Ping(ctx); err != nil {
		s.Cache = "down"
	}
	s.WSClients = u.hub.ClientCount()

	_ = u.cache.SetJSON(ctx, statusSummaryKey, s, 30*time.Second)
	return s, nil
}
