package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	C "crmetrics/config"
)

func testContextWithQuery(t *testing.T, rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, "/reports/funnel?"+rawQuery, nil)
	assert.Nil(t, err)
	c.Request = req
	return c
}

func TestParseCohortFilterDefaults(t *testing.T) {
	C.InitConf(&C.Configuration{AppName: "test_server", Env: C.DEVELOPMENT})

	filter, err := parseCohortFilter(testContextWithQuery(t, ""))
	assert.Nil(t, err)

	// The window starts at the configured report start date and stays
	// open-ended on the right.
	assert.Equal(t, C.DefaultReportStartDate, filter.From.String())
	assert.False(t, filter.To.IsValid())
	assert.Nil(t, filter.Countries)
	assert.Equal(t, "", filter.SourceID)
}

func TestParseCohortFilterParams(t *testing.T) {
	C.InitConf(&C.Configuration{AppName: "test_server", Env: C.DEVELOPMENT})

	c := testContextWithQuery(t,
		"from=2024-11-01&to=2024-11-30&countries=Kenya,Uganda&languages=swahili&source_id=google&campaign_id=c1")
	filter, err := parseCohortFilter(c)
	assert.Nil(t, err)

	assert.Equal(t, 2024, filter.From.Year)
	assert.Equal(t, time.November, filter.From.Month)
	assert.Equal(t, 30, filter.To.Day)
	assert.Equal(t, []string{"Kenya", "Uganda"}, filter.Countries)
	assert.Equal(t, []string{"swahili"}, filter.Languages)
	assert.Equal(t, "google", filter.SourceID)
	assert.Equal(t, "c1", filter.CampaignID)
}

func TestParseCohortFilterBadDate(t *testing.T) {
	C.InitConf(&C.Configuration{AppName: "test_server", Env: C.DEVELOPMENT})

	_, err := parseCohortFilter(testContextWithQuery(t, "from=01-11-2024"))
	assert.NotNil(t, err)

	_, err = parseCohortFilter(testContextWithQuery(t, "to=never"))
	assert.NotNil(t, err)
}
