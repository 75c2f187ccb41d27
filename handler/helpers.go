package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	C "crmetrics/config"
	"crmetrics/model/model"
	U "crmetrics/util"
)

// parseCohortFilter reads the shared report query params. Date params must
// be YYYY-MM-DD. The report window starts at the configured report start
// date unless the request narrows it, and stays open-ended on the right.
func parseCohortFilter(c *gin.Context) (model.CohortFilter, error) {
	filter := model.CohortFilter{
		Countries:  U.SplitCSVParam(c.Query("countries")),
		Languages:  U.SplitCSVParam(c.Query("languages")),
		SourceID:   c.Query("source_id"),
		CampaignID: c.Query("campaign_id"),
	}

	fromParam := c.Query("from")
	if fromParam == "" {
		fromParam = C.GetReportStartDate()
	}
	from, err := U.ParseDateHyphenFormat(fromParam)
	if err != nil {
		return filter, err
	}
	filter.From = from

	if toParam := c.Query("to"); toParam != "" {
		to, err := U.ParseDateHyphenFormat(toParam)
		if err != nil {
			return filter, err
		}
		filter.To = to
	}

	return filter, nil
}

func abortWithBadFilter(c *gin.Context, err error) {
	log.WithError(err).Error("Request failed. Invalid report filter params.")
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid report filter params."})
}
