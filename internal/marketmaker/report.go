package marketmaker

import (
	"time"

	"github.com/betbot/pairmaker/internal/domain"
)

// PairReport summarises one pair's pass.
type PairReport struct {
	Pair       domain.Pair
	Resolution *Resolution
	ResolveErr error
	PlanErr    error
	Planned    int
	Submitted  int
	Failed     int
}

// RunReport summarises a whole pass.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Pairs     []PairReport
}

// Totals sums planned/submitted/failed across pairs.
func (r *RunReport) Totals() (planned, submitted, failed int) {
	if r == nil {
		return 0, 0, 0
	}
	for _, p := range r.Pairs {
		planned += p.Planned
		submitted += p.Submitted
		failed += p.Failed
	}
	return planned, submitted, failed
}
