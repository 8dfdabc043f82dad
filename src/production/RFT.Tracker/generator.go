package tracker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	config "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Config"
	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
)

// Simulator manufactures plausible sighting events at a fixed cadence so the
// pipeline can be exercised without physical readers. Tags are selected
// round-robin over the sorted known set; locations come from a seeded PRNG so
// runs are reproducible. Events go through the same Submit path as external
// submissions.
type Simulator struct {
	svc   *Service
	store *Store
	cfg   config.SimulatorConfig
	log   *logger.Logger
	rng   *rand.Rand
	next  int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSimulator creates a simulator. A zero seed falls back to the wall clock.
func NewSimulator(svc *Service, cfg config.SimulatorConfig, log *logger.Logger) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		svc:   svc,
		store: svc.Store(),
		cfg:   cfg,
		log:   log.WithComponent("simulator"),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Start launches the tick loop. It returns immediately.
func (s *Simulator) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop cancels the tick loop and waits for an in-flight tick to finish.
func (s *Simulator) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Simulator) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.cfg.Interval.String()).Info("scan simulator started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scan simulator stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick generates and submits one synthetic scan. Failures are logged and the
// loop retries on the next tick; a bad tick must never take the process down.
func (s *Simulator) tick(ctx context.Context) {
	tags := s.store.TagIDs()
	if len(tags) == 0 {
		s.log.Debug("no assets registered yet, skipping synthetic scan")
		return
	}

	tag := tags[s.next%len(tags)]
	s.next++

	location := s.cfg.Locations[s.rng.Intn(len(s.cfg.Locations))]
	rssi := s.randomRSSI()

	if _, err := s.svc.Submit(ctx, RawEvent{TagID: tag, Location: location, RSSI: &rssi}); err != nil {
		s.log.WithError(err).WithField("tag_id", tag).Warn("synthetic scan rejected")
		return
	}
	s.log.WithField("tag_id", tag).WithField("location", location).Debug("generated synthetic scan")
}

func (s *Simulator) randomRSSI() int {
	if s.cfg.RSSIJitter <= 0 {
		return s.cfg.BaseRSSI
	}
	return s.cfg.BaseRSSI + s.rng.Intn(2*s.cfg.RSSIJitter+1) - s.cfg.RSSIJitter
}
