package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"crmetrics/model/model"
	qc "crmetrics/quickchart"
)

type API_FunnelResponsePayload struct {
	Steps    []model.FunnelStep `json:"steps"`
	ChartURL string             `json:"chart_url,omitempty"`
}

// GetFunnelReportHandler computes the CR funnel for the filtered cohort.
// Learners Reached counts unique app-launch users, every later stat is
// cumulative over the progress cohort.
func GetFunnelReportHandler(c *gin.Context) {
	filter, err := parseCohortFilter(c)
	if err != nil {
		abortWithBadFilter(c, err)
		return
	}

	snapshot, ok := getSnapshot(c)
	if !ok {
		return
	}

	progressCohort := model.FilterUserCohort(snapshot.Progress, filter)
	appLaunchCohort := model.FilterUserCohort(snapshot.AppLaunch, filter)
	steps := model.BuildFunnelSteps(progressCohort, appLaunchCohort)

	responsePayload := &API_FunnelResponsePayload{Steps: steps}
	if chartURL, err := qc.GetChartImageUrlForConfig(qc.FunnelChartConfig(steps)); err == nil {
		responsePayload.ChartURL = chartURL
	} else {
		log.WithError(err).Error("Failed to build funnel chart url.")
	}

	c.JSON(http.StatusOK, responsePayload)
}
