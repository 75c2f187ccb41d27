package handler

import (
	"github.com/gin-gonic/gin"

	mid "crmetrics/middleware"
)

func InitRoutes(r *gin.Engine) {
	r.Use(mid.RequestIdGenerator())
	r.Use(mid.CustomCors())

	r.GET("/reports/funnel", GetFunnelReportHandler)
	r.GET("/reports/campaigns", GetCampaignReportHandler)
	r.GET("/reports/attribute_costs", GetAttributeCostReportHandler)
	r.GET("/reports/daily_events", GetDailyEventsHandler)
	r.GET("/reports/country_shares", GetCountrySharesHandler)
	r.GET("/filters", GetFilterOptionsHandler)
	r.POST("/snapshot/refresh", RefreshSnapshotHandler)
}
