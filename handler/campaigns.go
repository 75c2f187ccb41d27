package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"crmetrics/model/model"
	qc "crmetrics/quickchart"
)

type API_CampaignReportResponsePayload struct {
	Rows     []model.CampaignReportRow `json:"rows"`
	TableURL string                    `json:"table_url,omitempty"`
}

// GetCampaignReportHandler joins per-campaign learner counts with spend.
// Spend is re-rolled from the raw daily cost rows inside the report window
// so campaign names and attributes stay authoritative per window.
func GetCampaignReportHandler(c *gin.Context) {
	filter, err := parseCohortFilter(c)
	if err != nil {
		abortWithBadFilter(c, err)
		return
	}

	snapshot, ok := getSnapshot(c)
	if !ok {
		return
	}

	costRows := model.FilterCampaignCostsByDate(snapshot.CampaignCosts, filter.From, filter.To)
	campaigns, err := model.RollupCampaigns(costRows)
	if err != nil {
		log.WithError(err).Error("Campaign report failed. Rollup failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Campaign report failed."})
		return
	}

	appLaunchCohort := model.FilterUserCohort(snapshot.AppLaunch, filter)
	rows := model.BuildCampaignReport(appLaunchCohort, campaigns)

	responsePayload := &API_CampaignReportResponsePayload{Rows: rows}
	if tableURL, err := qc.GetTableURLfromTableConfig(qc.CampaignReportTableConfig(rows)); err == nil {
		responsePayload.TableURL = tableURL
	}

	c.JSON(http.StatusOK, responsePayload)
}

// GetAttributeCostReportHandler breaks spend and funnel totals down by the
// (country, language) segments extracted from campaign names.
func GetAttributeCostReportHandler(c *gin.Context) {
	filter, err := parseCohortFilter(c)
	if err != nil {
		abortWithBadFilter(c, err)
		return
	}

	snapshot, ok := getSnapshot(c)
	if !ok {
		return
	}

	costRows := model.FilterCampaignCostsByDate(snapshot.CampaignCosts, filter.From, filter.To)
	campaigns, err := model.RollupCampaigns(costRows)
	if err != nil {
		log.WithError(err).Error("Attribute cost report failed. Rollup failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Attribute cost report failed."})
		return
	}

	rows := model.BuildAttributeCostReport(campaigns, snapshot.AppLaunch, snapshot.Progress, filter)
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
