package implementation

import (
	"context"
	"fmt"
	"time"

	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
	interfaces "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Repository/Interfaces"
)

// sampleAssets is the demo catalog installed on first run.
func sampleAssets(now time.Time) []rftmodels.Asset {
	return []rftmodels.Asset{
		{ID: 1, TagID: "RF001", Name: "Laptop", Description: "Dell XPS 15", AssetType: "Electronics", Status: rftmodels.StatusMissing, CreatedAt: now},
		{ID: 2, TagID: "RF002", Name: "Projector", Description: "Epson PowerLite", AssetType: "Electronics", Status: rftmodels.StatusMissing, CreatedAt: now},
		{ID: 3, TagID: "RF003", Name: "Chair", Description: "Office chair", AssetType: "Furniture", Status: rftmodels.StatusMissing, CreatedAt: now},
		{ID: 4, TagID: "RF004", Name: "Monitor", Description: "Dell 27-inch", AssetType: "Electronics", Status: rftmodels.StatusMissing, CreatedAt: now},
		{ID: 5, TagID: "RF005", Name: "Keyboard", Description: "Logitech MX", AssetType: "Electronics", Status: rftmodels.StatusMissing, CreatedAt: now},
	}
}

// SeedSampleData installs the sample catalog and an initial "Office" scan per
// asset when the catalog is empty. Subsequent runs are no-ops.
func SeedSampleData(ctx context.Context, assetRepo interfaces.AssetRepository, scanRepo interfaces.ScanRepository) error {
	count, err := assetRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count assets: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	assets := sampleAssets(now)
	if err := assetRepo.InsertAssets(ctx, assets); err != nil {
		return err
	}

	rssi := -50
	for _, asset := range assets {
		scan := rftmodels.ScanRecord{
			AssetID:   asset.ID,
			TagID:     asset.TagID,
			Location:  "Office",
			Timestamp: now,
			RSSI:      &rssi,
		}
		if err := scanRepo.InsertScan(ctx, scan); err != nil {
			return err
		}
	}
	return nil
}

// LoadCatalog reads the asset catalog and rehydrates each asset's last
// sighting from the ledger, the way the state store expects it at boot.
func LoadCatalog(ctx context.Context, assetRepo interfaces.AssetRepository, scanRepo interfaces.ScanRepository) ([]rftmodels.Asset, error) {
	assets, err := assetRepo.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	for i := range assets {
		latest, err := scanRepo.LatestScan(ctx, assets[i].ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			ts := latest.Timestamp
			assets[i].LastSeen = &ts
			assets[i].LastLocation = latest.Location
		}
	}
	return assets, nil
}
