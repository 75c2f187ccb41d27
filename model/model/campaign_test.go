package model

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func testDate(year int, month int, day int) civil.Date {
	return civil.Date{Year: year, Month: time.Month(month), Day: day}
}

func TestExtractCampaignCountry(t *testing.T) {
	country := ExtractCampaignCountry("Acquisition: Spanish - Mexico Campaign")
	assert.True(t, country.Valid)
	assert.Equal(t, "Mexico", country.String)

	// The marker word is stripped only as a suffix.
	country = ExtractCampaignCountry("Push - Brazil")
	assert.True(t, country.Valid)
	assert.Equal(t, "Brazil", country.String)

	// No dash means no country, not an empty one.
	country = ExtractCampaignCountry("Generic Brand Push")
	assert.False(t, country.Valid)
	assert.Equal(t, "", country.String)

	// Multiple dashes resolve against the last one.
	country = ExtractCampaignCountry("Language: Hindi - India - Rural Campaign")
	assert.True(t, country.Valid)
	assert.Equal(t, "Rural", country.String)

	// Dash followed by nothing useful.
	country = ExtractCampaignCountry("Push - Campaign")
	assert.False(t, country.Valid)
}

func TestExtractCampaignLanguage(t *testing.T) {
	language := ExtractCampaignLanguage("Acquisition: Spanish - Mexico Campaign")
	assert.True(t, language.Valid)
	assert.Equal(t, "spanish", language.String)

	// No colon-then-dash pattern means no language.
	language = ExtractCampaignLanguage("Push - Brazil")
	assert.False(t, language.Valid)

	language = ExtractCampaignLanguage("Generic Brand Push")
	assert.False(t, language.Valid)

	// Language capture stops at the first dash after the colon.
	language = ExtractCampaignLanguage("CR: French - Senegal Campaign")
	assert.True(t, language.Valid)
	assert.Equal(t, "french", language.String)
}

func TestExtractCampaignAttributes(t *testing.T) {
	rows := []CampaignCostRecord{
		{CampaignID: "1", CampaignName: "CR: Spanish - Mexico Campaign", Cost: 10},
		{CampaignID: "2", CampaignName: "Generic Brand Push", Cost: 5},
	}

	extracted := ExtractCampaignAttributes(rows)
	assert.Len(t, extracted, 2)
	assert.Equal(t, "Mexico", extracted[0].Country.String)
	assert.Equal(t, "spanish", extracted[0].AppLanguage.String)
	assert.False(t, extracted[1].Country.Valid)
	assert.False(t, extracted[1].AppLanguage.Valid)

	// Input rows are untouched.
	assert.False(t, rows[0].Country.Valid)
	assert.False(t, rows[0].AppLanguage.Valid)
}

func TestRollupCampaigns(t *testing.T) {
	rows := []CampaignCostRecord{
		{CampaignID: "123", CampaignName: "Old Name", SegmentDate: testDate(2024, 11, 1), Cost: 10},
		{CampaignID: "123", CampaignName: "CR: Spanish - Mexico Campaign", SegmentDate: testDate(2024, 11, 5), Cost: 20},
		{CampaignID: "456", CampaignName: "Push - Brazil", SegmentDate: testDate(2024, 11, 2), Cost: 5},
	}

	campaigns, err := RollupCampaigns(ExtractCampaignAttributes(rows))
	assert.Nil(t, err)
	assert.Len(t, campaigns, 2)

	// Output sorted by campaign id.
	assert.Equal(t, "123", campaigns[0].CampaignID)
	assert.Equal(t, "456", campaigns[1].CampaignID)

	// Most recent segment_date wins the name, attributes come from the
	// winning name, cost sums over the whole group.
	assert.Equal(t, "CR: Spanish - Mexico Campaign", campaigns[0].CampaignName)
	assert.Equal(t, "Mexico", campaigns[0].Country.String)
	assert.Equal(t, "spanish", campaigns[0].AppLanguage.String)
	assert.Equal(t, 30.0, campaigns[0].TotalCost)

	// Singleton group passes through.
	assert.Equal(t, "Push - Brazil", campaigns[1].CampaignName)
	assert.Equal(t, "Brazil", campaigns[1].Country.String)
	assert.False(t, campaigns[1].AppLanguage.Valid)
	assert.Equal(t, 5.0, campaigns[1].TotalCost)
}

func TestRollupCampaignsCostConservation(t *testing.T) {
	rows := []CampaignCostRecord{
		{CampaignID: "1", CampaignName: "A", SegmentDate: testDate(2024, 11, 1), Cost: 1.5},
		{CampaignID: "1", CampaignName: "A", SegmentDate: testDate(2024, 11, 2), Cost: 2.25},
		{CampaignID: "2", CampaignName: "B", SegmentDate: testDate(2024, 11, 1), Cost: 4},
		{CampaignID: "2", CampaignName: "B", SegmentDate: testDate(2024, 11, 3), Cost: 0},
	}

	var totalIn float64
	for _, row := range rows {
		totalIn += row.Cost
	}

	campaigns, err := RollupCampaigns(rows)
	assert.Nil(t, err)

	var totalOut float64
	for _, campaign := range campaigns {
		totalOut += campaign.TotalCost
	}
	assert.Equal(t, totalIn, totalOut)
}

func TestRollupCampaignsDeterministic(t *testing.T) {
	rows := []CampaignCostRecord{
		{CampaignID: "9", CampaignName: "Name v1", SegmentDate: testDate(2024, 11, 1), Cost: 1},
		{CampaignID: "9", CampaignName: "Name v2", SegmentDate: testDate(2024, 11, 2), Cost: 2},
		{CampaignID: "3", CampaignName: "Other", SegmentDate: testDate(2024, 11, 1), Cost: 3},
	}
	reversed := []CampaignCostRecord{rows[2], rows[1], rows[0]}

	first, err := RollupCampaigns(rows)
	assert.Nil(t, err)
	second, err := RollupCampaigns(reversed)
	assert.Nil(t, err)
	assert.Equal(t, first, second)
}

func TestRollupCampaignsMissingId(t *testing.T) {
	rows := []CampaignCostRecord{
		{CampaignID: "", CampaignName: "No Id", SegmentDate: testDate(2024, 11, 1), Cost: 1},
	}

	campaigns, err := RollupCampaigns(rows)
	assert.Nil(t, campaigns)
	assert.NotNil(t, err)
	assert.True(t, IsDataShapeError(err))
}

func TestFilterCampaignCostsByDate(t *testing.T) {
	rows := []CampaignCostRecord{
		{CampaignID: "1", SegmentDate: testDate(2024, 11, 1), Cost: 1},
		{CampaignID: "1", SegmentDate: testDate(2024, 11, 10), Cost: 2},
		{CampaignID: "1", SegmentDate: testDate(2024, 11, 20), Cost: 3},
	}

	filtered := FilterCampaignCostsByDate(rows, testDate(2024, 11, 5), testDate(2024, 11, 15))
	assert.Len(t, filtered, 1)
	assert.Equal(t, 2.0, filtered[0].Cost)

	// Zero bounds are open.
	filtered = FilterCampaignCostsByDate(rows, civil.Date{}, testDate(2024, 11, 10))
	assert.Len(t, filtered, 2)
	filtered = FilterCampaignCostsByDate(rows, testDate(2024, 11, 10), civil.Date{})
	assert.Len(t, filtered, 2)
}
