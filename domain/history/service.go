package history

import (
	"context"
	"errors"
	"sort"

	"browserboot/domain/launch"
)

// ErrInvalidRecord is returned for records that cannot be stored.
var ErrInvalidRecord = errors.New("invalid run record")

// DefaultLimit bounds queries that do not specify a limit.
const DefaultLimit = 100

// Summary aggregates the runs of one mode.
type Summary struct {
	Mode         launch.Mode
	Runs         int
	Succeeded    int
	FirstAttempt int
	MeanAttempts float64
	// MaxAttempts is the highest attempt count seen in a successful run.
	MaxAttempts int
}

// SuccessRate returns the share of runs that produced a session.
func (s *Summary) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Runs)
}

// Service provides business logic over run records.
type Service struct {
	repo Repository
}

// NewService creates a new history service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save validates and stores a record.
func (s *Service) Save(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}
	if !record.Mode.Valid() || record.Attempts < 0 {
		return ErrInvalidRecord
	}
	return s.repo.Insert(ctx, record)
}

// Recent returns the newest records.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.repo.FindRecent(ctx, limit)
}

// Summarize aggregates the newest limit records per mode, ordered by mode.
func (s *Service) Summarize(ctx context.Context, limit int) ([]*Summary, error) {
	records, err := s.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}

// Summarize aggregates records per mode. Modes without records are omitted.
func Summarize(records []*Record) []*Summary {
	byMode := make(map[launch.Mode]*Summary)
	totals := make(map[launch.Mode]int)

	for _, r := range records {
		sum, ok := byMode[r.Mode]
		if !ok {
			sum = &Summary{Mode: r.Mode}
			byMode[r.Mode] = sum
		}

		sum.Runs++
		totals[r.Mode] += r.Attempts
		if r.Succeeded {
			sum.Succeeded++
			if r.Attempts > sum.MaxAttempts {
				sum.MaxAttempts = r.Attempts
			}
		}
		if r.FirstAttempt() {
			sum.FirstAttempt++
		}
	}

	summaries := make([]*Summary, 0, len(byMode))
	for mode, sum := range byMode {
		sum.MeanAttempts = float64(totals[mode]) / float64(sum.Runs)
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Mode < summaries[j].Mode
	})

	return summaries
}
