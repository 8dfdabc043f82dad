package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
	interfaces "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Repository/Interfaces"
	tracker "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Tracker"
)

// AssetController serves the read-only query surface from the state store's
// snapshot accessors, plus scan history from the ledger.
type AssetController struct {
	store *tracker.Store
	scans interfaces.ScanRepository
	log   *logger.Logger
}

func NewAssetController(store *tracker.Store, scans interfaces.ScanRepository, log *logger.Logger) *AssetController {
	return &AssetController{store: store, scans: scans, log: log.WithComponent("asset-api")}
}

// RegisterRoutes registers the asset routes with Gin
func (c *AssetController) RegisterRoutes(router *gin.Engine) {
	assets := router.Group("/api/assets")
	{
		assets.GET("", c.ListAssets)
		assets.GET("/:asset_id", c.GetAsset)
		assets.GET("/:asset_id/scans", c.GetAssetScans)
	}
}

func (c *AssetController) ListAssets(ctx *gin.Context) {
	statusParam := ctx.Query("status")
	if statusParam == "" {
		ctx.JSON(http.StatusOK, c.store.List())
		return
	}

	status := rftmodels.Status(statusParam)
	if !status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}
	ctx.JSON(http.StatusOK, c.store.ListByStatus(status))
}

func (c *AssetController) GetAsset(ctx *gin.Context) {
	assetID, err := strconv.ParseInt(ctx.Param("asset_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset_id"})
		return
	}

	asset, ok := c.store.GetByID(assetID)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}
	ctx.JSON(http.StatusOK, asset)
}

func (c *AssetController) GetAssetScans(ctx *gin.Context) {
	assetID, err := strconv.ParseInt(ctx.Param("asset_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset_id"})
		return
	}

	if _, ok := c.store.GetByID(assetID); !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}

	limit, err := strconv.ParseInt(ctx.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	scans, err := c.scans.ListScansByAsset(ctx, assetID, limit)
	if err != nil {
		c.log.WithError(err).Error("failed to read scan history")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if scans == nil {
		scans = []rftmodels.ScanRecord{}
	}
	ctx.JSON(http.StatusOK, scans)
}
