package services

import (
	"time"

	"github.com/fencerow/fencerow/internal/cache"
	"github.com/fencerow/fencerow/internal/repository"
)

type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalFields    int64 `json:"total_fields"`
	AdjacencyPairs int64 `json:"adjacency_pairs"`
}

// StatsService serves system-wide aggregates through a TTL cache so
// the public endpoint never hammers the store.
type StatsService struct {
	cached *cache.TTL[Stats]
}

func NewStatsService(
	userRepo *repository.UserRepository,
	fieldRepo *repository.FieldRepository,
	adjacencyRepo *repository.AdjacencyRepository,
) *StatsService {
	loader := func() (Stats, error) {
		users, err := userRepo.CountUsers()
		if err != nil {
			return Stats{}, err
		}
		fields, err := fieldRepo.CountFields()
		if err != nil {
			return Stats{}, err
		}
		pairs, err := adjacencyRepo.CountPairs()
		if err != nil {
			return Stats{}, err
		}
		return Stats{TotalUsers: users, TotalFields: fields, AdjacencyPairs: pairs}, nil
	}

	return &StatsService{cached: cache.NewTTL(30*time.Second, loader)}
}

func (s *StatsService) GetStats() (Stats, error) {
	return s.cached.Get()
}
