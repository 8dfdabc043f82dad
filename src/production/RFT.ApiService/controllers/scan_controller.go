package controllers

import (
	"errors"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	tracker "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Tracker"
)

// ScanController handles manual scan submissions, the sole external mutation
// entry point.
type ScanController struct {
	svc *tracker.Service
	log *logger.Logger
}

func NewScanController(svc *tracker.Service, log *logger.Logger) *ScanController {
	return &ScanController{svc: svc, log: log.WithComponent("scan-api")}
}

// RegisterRoutes registers the scan routes with Gin
func (c *ScanController) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/scan", c.CreateScan)
}

type CreateScanRequest struct {
	TagID    string `json:"tag_id" binding:"required"`
	Location string `json:"location" binding:"required"`
}

func (c *ScanController) CreateScan(ctx *gin.Context) {
	var req CreateScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Manual scans carry a simulated signal strength, like the hardware path.
	rssi := -70 + rand.Intn(41)
	event, err := c.svc.Submit(ctx, tracker.RawEvent{
		TagID:    req.TagID,
		Location: req.Location,
		RSSI:     &rssi,
	})
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrInvalidEvent):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, tracker.ErrUnknownTag):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "asset with this tag ID not found"})
		default:
			c.log.WithError(err).Error("scan submission failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}
