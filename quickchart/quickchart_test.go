package quickchart

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"crmetrics/model/model"
)

func TestFunnelChartConfig(t *testing.T) {
	steps := []model.FunnelStep{
		{Stat: "LR", Title: "Learner Reached", Count: 100},
		{Stat: "DC", Title: "Download Completed", Count: 60},
	}

	config := FunnelChartConfig(steps)
	assert.Equal(t, "horizontalBar", config.Type)
	assert.Equal(t, []interface{}{"Learner Reached", "Download Completed"}, config.Data.Labels)
	assert.Len(t, config.Data.DataSets, 1)
	assert.Equal(t, []interface{}{int64(100), int64(60)}, config.Data.DataSets[0].Data)
}

func TestDailyEventsChartConfig(t *testing.T) {
	attributed := []model.DailyCount{
		{Date: civil.Date{Year: 2024, Month: 11, Day: 1}, Count: 5},
		{Date: civil.Date{Year: 2024, Month: 11, Day: 2}, Count: 7},
	}
	unattributed := []model.DailyCount{
		{Date: civil.Date{Year: 2024, Month: 11, Day: 2}, Count: 3},
		{Date: civil.Date{Year: 2024, Month: 11, Day: 3}, Count: 4},
	}

	config := DailyEventsChartConfig(attributed, unattributed)
	assert.Equal(t, "line", config.Type)
	// Union of dates, attributed days first.
	assert.Equal(t, []interface{}{"2024-11-01", "2024-11-02", "2024-11-03"}, config.Data.Labels)
	assert.Len(t, config.Data.DataSets, 2)
	// Days without a series value fill with zero.
	assert.Equal(t, []interface{}{int64(5), int64(7), int64(0)}, config.Data.DataSets[0].Data)
	assert.Equal(t, []interface{}{int64(0), int64(3), int64(4)}, config.Data.DataSets[1].Data)
}

func TestDailyEventsChartConfigLabelsChronological(t *testing.T) {
	// An unattributed-only day earlier than every attributed day must not
	// end up at the tail of the label axis.
	attributed := []model.DailyCount{
		{Date: civil.Date{Year: 2024, Month: 11, Day: 10}, Count: 5},
	}
	unattributed := []model.DailyCount{
		{Date: civil.Date{Year: 2024, Month: 11, Day: 2}, Count: 3},
	}

	config := DailyEventsChartConfig(attributed, unattributed)
	assert.Equal(t, []interface{}{"2024-11-02", "2024-11-10"}, config.Data.Labels)
	assert.Equal(t, []interface{}{int64(0), int64(5)}, config.Data.DataSets[0].Data)
	assert.Equal(t, []interface{}{int64(3), int64(0)}, config.Data.DataSets[1].Data)
}

func TestCountryPieConfig(t *testing.T) {
	shares := []model.CountryShare{
		{Country: "Kenya", Count: 60, Share: 0.6},
		{Country: "Uganda", Count: 40, Share: 0.4},
	}

	config := CountryPieConfig(shares)
	assert.Equal(t, "pie", config.Type)
	assert.Equal(t, []interface{}{"Kenya", "Uganda"}, config.Data.Labels)
	assert.Equal(t, []interface{}{int64(60), int64(40)}, config.Data.DataSets[0].Data)
}

func TestCampaignReportTableConfig(t *testing.T) {
	rows := []model.CampaignReportRow{
		{CampaignID: "c1", CampaignName: "CR: Swahili - Kenya Campaign",
			Country: "Kenya", AppLanguage: "swahili",
			LearnersReached: 2, Cost: 30, CostPerLearner: 15},
	}

	config := CampaignReportTableConfig(rows)
	assert.Len(t, config.DataSource, 1)
	assert.Len(t, config.Columns, 6)

	row := config.DataSource[0].(map[string]interface{})
	assert.Equal(t, "Kenya", row["country"])
	assert.Equal(t, 15.0, row["cost_per_learner"])

	url, err := GetTableURLfromTableConfig(config)
	assert.Nil(t, err)
	assert.Contains(t, url, "https://api.quickchart.io/v1/table?data=")
}
