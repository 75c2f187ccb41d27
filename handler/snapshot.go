package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"crmetrics/model/model"
	"crmetrics/task"
)

// getSnapshot loads today's snapshot for a request, aborting on failure.
// Shape errors map to 502 since they mean an upstream dataset changed
// under us.
func getSnapshot(c *gin.Context) (*task.Snapshot, bool) {
	snapshot, err := task.GetSnapshot(c.Request.Context(), false)
	if err != nil {
		log.WithError(err).Error("Request failed. Could not load snapshot.")
		if model.IsDataShapeError(err) {
			c.AbortWithStatusJSON(http.StatusBadGateway,
				gin.H{"error": "Upstream dataset shape changed. Snapshot unavailable."})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Failed to load snapshot."})
		}
		return nil, false
	}
	return snapshot, true
}

type API_SnapshotResponsePayload struct {
	RefreshedAt       string               `json:"refreshed_at"`
	CampaignCostRows  int                  `json:"campaign_cost_rows"`
	CanonicalCampaign int                  `json:"canonical_campaigns"`
	AppLaunchRows     int                  `json:"app_launch_rows"`
	ProgressRows      int                  `json:"progress_rows"`
	UnattributedRows  int                  `json:"unattributed_rows"`
	Stats             model.ReconcileStats `json:"stats"`
}

// RefreshSnapshotHandler rebuilds today's snapshot, bypassing the cache.
func RefreshSnapshotHandler(c *gin.Context) {
	snapshot, err := task.GetSnapshot(c.Request.Context(), true)
	if err != nil {
		log.WithError(err).Error("Snapshot refresh failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Snapshot refresh failed."})
		return
	}

	c.JSON(http.StatusOK, &API_SnapshotResponsePayload{
		RefreshedAt:       snapshot.RefreshedAt.Format(time.RFC3339),
		CampaignCostRows:  len(snapshot.CampaignCosts),
		CanonicalCampaign: len(snapshot.Campaigns),
		AppLaunchRows:     len(snapshot.AppLaunch),
		ProgressRows:      len(snapshot.Progress),
		UnattributedRows:  len(snapshot.Unattributed),
		Stats:             snapshot.Stats,
	})
}
