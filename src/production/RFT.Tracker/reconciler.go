package tracker

import (
	"context"
	"sync"
	"time"

	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

// TransitionPublisher is the subset of Publisher the reconciler needs.
type TransitionPublisher interface {
	PublishTransition(transition rftmodels.Transition)
}

// Reconciler periodically downgrades asset statuses from elapsed time since
// last sighting and forwards every resulting transition to the hub. It shares
// no clock with the simulator beyond the monotonic source.
type Reconciler struct {
	store    *Store
	hub      TransitionPublisher
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler creates a reconciler sweeping at the given interval.
func NewReconciler(store *Store, hub TransitionPublisher, interval time.Duration, log *logger.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		hub:      hub,
		interval: interval,
		now:      time.Now,
		log:      log.WithComponent("reconciler"),
	}
}

// Start launches the periodic sweep. It returns immediately.
func (r *Reconciler) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop cancels the tick loop and waits for any in-flight sweep to finish.
func (r *Reconciler) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Reconciler) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.WithField("interval", r.interval.String()).Info("status reconciler started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("status reconciler stopped")
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep runs one reconciliation pass. A failed or empty pass never takes the
// loop down; the next tick retries.
func (r *Reconciler) sweep() {
	transitions := r.store.SweepStatuses(r.now())
	for _, transition := range transitions {
		r.hub.PublishTransition(transition)
	}
	if len(transitions) > 0 {
		r.log.WithField("transitions", len(transitions)).Debug("reconciliation sweep applied status changes")
	}
}
