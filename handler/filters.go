package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"crmetrics/model/store/warehouse"
)

type API_FilterOptionsResponsePayload struct {
	Countries []string `json:"countries"`
	Languages []string `json:"languages"`
}

// GetFilterOptionsHandler returns the reference lists the dashboard filter
// controls are populated from.
func GetFilterOptionsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	store, err := warehouse.GetStore(ctx)
	if err != nil {
		log.WithError(err).Error("Get filter options failed. No warehouse store.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Get filter options failed."})
		return
	}

	countries, err := store.GetCountryList(ctx)
	if err != nil {
		log.WithError(err).Error("Get filter options failed. Country list query failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Get filter options failed."})
		return
	}
	languages, err := store.GetLanguageList(ctx)
	if err != nil {
		log.WithError(err).Error("Get filter options failed. Language list query failed.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "Get filter options failed."})
		return
	}

	c.JSON(http.StatusOK, &API_FilterOptionsResponsePayload{
		Countries: countries,
		Languages: languages,
	})
}
