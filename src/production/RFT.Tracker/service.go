package tracker

import (
	"context"

	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
	interfaces "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Repository/Interfaces"
)

// Publisher receives accepted sightings and status transitions for fan-out to
// live observers. Implementations must not block the caller.
type Publisher interface {
	PublishSighting(event rftmodels.ScanEvent)
	PublishTransition(transition rftmodels.Transition)
}

// Service is the ingestion pipeline shared by every event source: HTTP
// submissions, MQTT readers and the synthetic simulator all go through
// Submit, so no source bypasses validation or the single-writer store.
type Service struct {
	normalizer *Normalizer
	store      *Store
	scans      interfaces.ScanRepository
	hub        Publisher
	log        *logger.Logger
}

// NewService creates the ingestion pipeline. scans may be nil when no ledger
// is attached (tests).
func NewService(normalizer *Normalizer, store *Store, scans interfaces.ScanRepository, hub Publisher, log *logger.Logger) *Service {
	return &Service{
		normalizer: normalizer,
		store:      store,
		scans:      scans,
		hub:        hub,
		log:        log.WithComponent("tracker"),
	}
}

// Store exposes the authoritative state store for read accessors.
func (s *Service) Store() *Store {
	return s.store
}

// Submit runs one raw event through normalize, apply, ledger append and
// broadcast. It returns the denormalized sighting view on success. Observers
// get exactly one message per accepted event; the apply-side status change is
// implied by the sighting itself.
func (s *Service) Submit(ctx context.Context, raw RawEvent) (rftmodels.ScanEvent, error) {
	event, err := s.normalizer.Normalize(raw)
	if err != nil {
		return rftmodels.ScanEvent{}, err
	}

	asset, _, err := s.store.Apply(event)
	if err != nil {
		return rftmodels.ScanEvent{}, err
	}

	event.AssetName = asset.Name
	event.AssetType = asset.AssetType

	if s.scans != nil {
		record := rftmodels.ScanRecord{
			AssetID:   asset.ID,
			TagID:     event.TagID,
			Location:  event.Location,
			Timestamp: event.Timestamp,
			RSSI:      event.RSSI,
		}
		// The ledger is a boundary collaborator; a failed append must not
		// fail the sighting.
		if err := s.scans.InsertScan(ctx, record); err != nil {
			s.log.WithError(err).WithField("tag_id", event.TagID).Warn("failed to append scan to ledger")
		}
	}

	s.hub.PublishSighting(event)
	return event, nil
}
