package config

import (
	"fmt"
	"strings"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

const DEVELOPMENT = "development"
const STAGING = "staging"
const PRODUCTION = "production"

// Campaign metadata started reaching production events on this date. Rows
// before it have no attribution and are an accepted data-quality boundary,
// not something to fix.
const DefaultAttributionStartDate = "2024-11-08"

// Default lower bound for report date ranges.
const DefaultReportStartDate = "2024-09-11"

type BigqueryConf struct {
	ProjectID        string
	CredentialsFile  string
	MarketingDataset string
	UserDataset      string
	AdsAccountID     string
	Location         string
}

type Configuration struct {
	AppName              string
	Env                  string
	Port                 int
	RedisHost            string
	RedisPort            int
	Bigquery             BigqueryConf
	AttributionStartDate string
	ReportStartDate      string
}

type Services struct {
	RedisPool *redis.Pool
}

var configuration *Configuration
var services *Services = nil

// InitConf stores the process configuration and sets up logging. Must be
// called before any other package touches config state.
func InitConf(config *Configuration) {
	if config.AttributionStartDate == "" {
		config.AttributionStartDate = DefaultAttributionStartDate
	}
	if config.ReportStartDate == "" {
		config.ReportStartDate = DefaultReportStartDate
	}
	configuration = config
	initLogging()
}

func initLogging() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

// InitRedisConnection initializes the redis connection pool used by the
// snapshot cache.
func InitRedisConnection(host string, port int) {
	if services == nil {
		services = &Services{}
	}
	services.RedisPool = &redis.Pool{
		MaxIdle:   20,
		MaxActive: 100,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
		},
	}
}

// GetCacheRedisConnection returns a pooled connection. Callers must Close.
func GetCacheRedisConnection() redis.Conn {
	return services.RedisPool.Get()
}

func GetConfig() *Configuration {
	return configuration
}

func IsDevelopment() bool {
	return strings.Compare(configuration.Env, DEVELOPMENT) == 0
}

func GetAttributionStartDate() string {
	return configuration.AttributionStartDate
}

func GetReportStartDate() string {
	return configuration.ReportStartDate
}

func GetBigqueryConf() BigqueryConf {
	return configuration.Bigquery
}
