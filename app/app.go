package main

import (
	"flag"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	C "crmetrics/config"
	H "crmetrics/handler"
	"crmetrics/metrics"
)

// ./app --env=development --api_http_port=8080 --redis_host=localhost --redis_port=6379 --bq_project=cr-marketing --bq_credentials=/usr/local/var/crmetrics/bigquery.json --bq_marketing_dataset=marketing --bq_user_dataset=cr_user_dataset --ads_account_id=6687569935
func main() {

	env := flag.String("env", "development", "")
	port := flag.Int("api_http_port", 8080, "")

	redisHost := flag.String("redis_host", "localhost", "")
	redisPort := flag.Int("redis_port", 6379, "")

	bqProject := flag.String("bq_project", "", "BigQuery project id")
	bqCredentials := flag.String("bq_credentials", "", "Path to BigQuery credentials JSON")
	bqMarketingDataset := flag.String("bq_marketing_dataset", "marketing", "Dataset with the ads export tables")
	bqUserDataset := flag.String("bq_user_dataset", "cr_user_dataset", "Dataset with the per-user funnel tables")
	bqLocation := flag.String("bq_location", "US", "")
	adsAccountID := flag.String("ads_account_id", "", "Google ads account id suffix on the export tables")

	attributionStartDate := flag.String("attribution_start_date", "",
		"Earliest date with reliable campaign attribution, YYYY-MM-DD")
	reportStartDate := flag.String("report_start_date", "",
		"Default report window start, YYYY-MM-DD")
	flag.Parse()

	config := &C.Configuration{
		AppName:   "crmetrics_server",
		Env:       *env,
		Port:      *port,
		RedisHost: *redisHost,
		RedisPort: *redisPort,
		Bigquery: C.BigqueryConf{
			ProjectID:        *bqProject,
			CredentialsFile:  *bqCredentials,
			MarketingDataset: *bqMarketingDataset,
			UserDataset:      *bqUserDataset,
			AdsAccountID:     *adsAccountID,
			Location:         *bqLocation,
		},
		AttributionStartDate: *attributionStartDate,
		ReportStartDate:      *reportStartDate,
	}

	// Initialize configs and connections.
	C.InitConf(config)
	C.InitRedisConnection(config.RedisHost, config.RedisPort)
	exporter := metrics.InitMetrics(config.Env, config.AppName, config.Bigquery.ProjectID, config.Bigquery.Location)
	if exporter != nil {
		defer exporter.Flush()
	}

	if !C.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Initialize routes.
	H.InitRoutes(r)
	if err := r.Run(":" + strconv.Itoa(C.GetConfig().Port)); err != nil {
		log.WithError(err).Fatal("Failed to run server.")
	}
}
