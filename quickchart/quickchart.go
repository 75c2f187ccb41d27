package quickchart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"

	quickchartgo "github.com/henomis/quickchart-go"
	log "github.com/sirupsen/logrus"

	"crmetrics/model/model"
)

type ChartConfig struct {
	Type string    `json:"type"`
	Data ChartData `json:"data"`
}
type ChartData struct {
	Labels   []interface{} `json:"labels"`
	DataSets []Dataset     `json:"datasets"`
}
type Dataset struct {
	Label       string        `json:"label"`
	Data        []interface{} `json:"data"`
	Fill        bool          `json:"fill"`
	LineTension float32       `json:"lineTension"`
}
type TableConfig struct {
	Title      string        `json:"title"`
	Columns    []Column      `json:"columns"`
	DataSource []interface{} `json:"dataSource"`
}
type Column struct {
	Width     int    `json:"width"`
	Title     string `json:"title"`
	DataIndex string `json:"dataIndex"`
}

func GetChartImageUrlForConfig(config ChartConfig) (url string, err error) {
	bytes, err := json.Marshal(config)
	if err != nil {
		log.Error("failed to marshal chart config")
		return "", errors.New("failed to get chart url from quickchart")
	}
	qc := quickchartgo.New()
	qc.Config = string(bytes)
	url, error := qc.GetUrl()
	if error != nil {
		log.Error("failed to get chart url from quickchart")
		return "", errors.New("failed to get chart url from quickchart")
	}
	return url, nil
}

func GetTableURLfromTableConfig(config TableConfig) (string, error) {
	bytes, err := json.Marshal(config)
	if err != nil {
		return "", errors.New("Failed to marshal table config")
	}
	url := fmt.Sprintf("https://api.quickchart.io/v1/table?data=%s", url.QueryEscape(string(bytes)))
	return url, nil
}

// FunnelChartConfig renders the ordered funnel steps as a horizontal bar
// chart, one bar per stat.
func FunnelChartConfig(steps []model.FunnelStep) ChartConfig {
	labels := make([]interface{}, 0, len(steps))
	counts := make([]interface{}, 0, len(steps))
	for _, step := range steps {
		labels = append(labels, step.Title)
		counts = append(counts, step.Count)
	}
	return ChartConfig{
		Type: "horizontalBar",
		Data: ChartData{
			Labels: labels,
			DataSets: []Dataset{
				{Label: "Users", Data: counts},
			},
		},
	}
}

// DailyEventsChartConfig renders attributed and unattributed daily app
// launches as two lines over the union of their dates.
func DailyEventsChartConfig(attributed, unattributed []model.DailyCount) ChartConfig {
	attributedByDate := make(map[string]int64, len(attributed))
	unattributedByDate := make(map[string]int64, len(unattributed))
	dates := make([]string, 0, len(attributed)+len(unattributed))
	for _, day := range attributed {
		attributedByDate[day.Date.String()] = day.Count
		dates = append(dates, day.Date.String())
	}
	for _, day := range unattributed {
		unattributedByDate[day.Date.String()] = day.Count
		if _, seen := attributedByDate[day.Date.String()]; !seen {
			dates = append(dates, day.Date.String())
		}
	}
	// YYYY-MM-DD sorts chronologically as strings.
	sort.Strings(dates)

	labels := make([]interface{}, 0, len(dates))
	attributedCounts := make([]interface{}, 0, len(dates))
	unattributedCounts := make([]interface{}, 0, len(dates))
	for _, date := range dates {
		labels = append(labels, date)
		attributedCounts = append(attributedCounts, attributedByDate[date])
		unattributedCounts = append(unattributedCounts, unattributedByDate[date])
	}
	return ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels: labels,
			DataSets: []Dataset{
				{Label: "Attributed", Data: attributedCounts},
				{Label: "Unattributed", Data: unattributedCounts},
			},
		},
	}
}

// CountryPieConfig renders the country distribution of a cohort. Shares
// below the display threshold are expected to be folded into "Other"
// before this is called.
func CountryPieConfig(shares []model.CountryShare) ChartConfig {
	labels := make([]interface{}, 0, len(shares))
	counts := make([]interface{}, 0, len(shares))
	for _, share := range shares {
		labels = append(labels, share.Country)
		counts = append(counts, share.Count)
	}
	return ChartConfig{
		Type: "pie",
		Data: ChartData{
			Labels: labels,
			DataSets: []Dataset{
				{Label: "Learners", Data: counts},
			},
		},
	}
}

// CampaignReportTableConfig renders the campaign cost report as a
// shareable table image.
func CampaignReportTableConfig(rows []model.CampaignReportRow) TableConfig {
	dataSource := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		dataSource = append(dataSource, map[string]interface{}{
			"campaign":         row.CampaignName,
			"country":          row.Country,
			"language":         row.AppLanguage,
			"cost":             row.Cost,
			"learners":         row.LearnersReached,
			"cost_per_learner": row.CostPerLearner,
		})
	}
	return TableConfig{
		Title: "Campaign cost report",
		Columns: []Column{
			{Width: 220, Title: "Campaign", DataIndex: "campaign"},
			{Width: 100, Title: "Country", DataIndex: "country"},
			{Width: 100, Title: "Language", DataIndex: "language"},
			{Width: 80, Title: "Cost", DataIndex: "cost"},
			{Width: 80, Title: "Learners", DataIndex: "learners"},
			{Width: 100, Title: "Cost / learner", DataIndex: "cost_per_learner"},
		},
	}
}
