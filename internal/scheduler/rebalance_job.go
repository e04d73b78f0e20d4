package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/internal/modules/overlay"
)

// RebalanceJob refreshes the full overlay on a wall-clock schedule, so a
// quiet market still gets fresh authority data even when the trade-count
// epoch never fires.
type RebalanceJob struct {
	controller *overlay.Controller
	log        zerolog.Logger
}

// NewRebalanceJob creates the scheduled rebalance job
func NewRebalanceJob(controller *overlay.Controller, log zerolog.Logger) *RebalanceJob {
	return &RebalanceJob{
		controller: controller,
		log:        log.With().Str("job", "rebalance").Logger(),
	}
}

// Name returns the job identifier
func (j *RebalanceJob) Name() string {
	return "rebalance"
}

// Run performs a full rebalance from the ledger. A failed rebalance has
// already degraded the overlay to fallback governance; the error is
// surfaced for the scheduler's log only.
func (j *RebalanceJob) Run() error {
	return j.controller.RebalanceFromSource()
}
