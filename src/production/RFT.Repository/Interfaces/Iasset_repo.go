package interfaces

import (
	"context"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

// AssetRepository is the boundary to the persisted asset catalog. The
// in-memory store remains the authority while the process runs; the catalog
// is read at boot and seeded on first run.
type AssetRepository interface {
	EnsureIndexes(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	InsertAssets(ctx context.Context, assets []rftmodels.Asset) error
	ListAssets(ctx context.Context) ([]rftmodels.Asset, error)
}
