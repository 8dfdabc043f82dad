package interfaces

import (
	"context"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

// ScanRepository is the boundary to the append-only scan ledger.
type ScanRepository interface {
	InsertScan(ctx context.Context, scan rftmodels.ScanRecord) error

	// ListScansByAsset returns the most recent scans for an asset, newest
	// first, up to limit.
	ListScansByAsset(ctx context.Context, assetID int64, limit int64) ([]rftmodels.ScanRecord, error)

	// LatestScan returns the most recent scan for an asset, or nil when the
	// asset has never been scanned.
	LatestScan(ctx context.Context, assetID int64) (*rftmodels.ScanRecord, error)
}
