package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"crmetrics/model/model"
	qc "crmetrics/quickchart"
)

// Countries below this share of the cohort are folded out of the pie.
const countryShareDisplayThreshold = 0.01

type API_DailyEventsResponsePayload struct {
	Attributed   []model.DailyCount `json:"attributed"`
	Unattributed []model.DailyCount `json:"unattributed"`
	ChartURL     string             `json:"chart_url,omitempty"`
}

// GetDailyEventsHandler returns attributed vs unattributed app launches
// per event date for the filtered window.
func GetDailyEventsHandler(c *gin.Context) {
	filter, err := parseCohortFilter(c)
	if err != nil {
		abortWithBadFilter(c, err)
		return
	}

	snapshot, ok := getSnapshot(c)
	if !ok {
		return
	}

	attributed := model.DailyEventCounts(model.FilterEventRecords(snapshot.AppLaunch, filter))
	unattributed := model.DailyEventCounts(model.FilterEventRecords(snapshot.Unattributed, filter))

	responsePayload := &API_DailyEventsResponsePayload{
		Attributed:   attributed,
		Unattributed: unattributed,
	}
	chartConfig := qc.DailyEventsChartConfig(attributed, unattributed)
	if chartURL, err := qc.GetChartImageUrlForConfig(chartConfig); err == nil {
		responsePayload.ChartURL = chartURL
	} else {
		log.WithError(err).Error("Failed to build daily events chart url.")
	}

	c.JSON(http.StatusOK, responsePayload)
}

type API_CountrySharesResponsePayload struct {
	Shares   []model.CountryShare `json:"shares"`
	ChartURL string               `json:"chart_url,omitempty"`
}

// GetCountrySharesHandler returns the country distribution of the
// filtered app-launch cohort.
func GetCountrySharesHandler(c *gin.Context) {
	filter, err := parseCohortFilter(c)
	if err != nil {
		abortWithBadFilter(c, err)
		return
	}

	snapshot, ok := getSnapshot(c)
	if !ok {
		return
	}

	cohort := model.FilterUserCohort(snapshot.AppLaunch, filter)
	shares := model.CountryShares(cohort, countryShareDisplayThreshold)

	responsePayload := &API_CountrySharesResponsePayload{Shares: shares}
	if chartURL, err := qc.GetChartImageUrlForConfig(qc.CountryPieConfig(shares)); err == nil {
		responsePayload.ChartURL = chartURL
	}

	c.JSON(http.StatusOK, responsePayload)
}
