package model

import (
	"regexp"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
)

// NullString is an explicitly optional string attribute. A missing value is
// Valid=false, never an empty string, so downstream grouping can tell
// "no attribution" apart from a blank one.
type NullString struct {
	String string
	Valid  bool
}

// NewNullString trims the given value and collapses whitespace-only values
// to the invalid state.
func NewNullString(value string) NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return NullString{}
	}
	return NullString{String: value, Valid: true}
}

// CampaignCostRecord is one raw per-day cost row for a campaign, as pulled
// from the ad platforms. Immutable once ingested.
type CampaignCostRecord struct {
	CampaignID   string
	CampaignName string
	SegmentDate  civil.Date
	Cost         float64
	Country      NullString
	AppLanguage  NullString
}

// CanonicalCampaign is the single rolled up row per campaign id. SegmentDate
// has no meaning once daily rows are summed, so it is not carried over.
type CanonicalCampaign struct {
	CampaignID   string
	CampaignName string
	Country      NullString
	AppLanguage  NullString
	TotalCost    float64
}

// Campaign names follow the convention "<anything>: <language> - <country> Campaign".
// Country is anchored to the content after the last dash so names with
// multiple dashes resolve deterministically.
var (
	campaignCountryRegex  = regexp.MustCompile(`-\s*([^-]*)$`)
	campaignLanguageRegex = regexp.MustCompile(`:\s*([^-]+?)\s*-`)
)

const campaignNameMarker = "Campaign"

// ExtractCampaignAttributes derives country and app_language for every row
// from its campaign name. Returns a new slice, inputs are not mutated.
// Presence of an attribute is decided by the same parse used for extraction,
// so presence and captured value can never disagree.
func ExtractCampaignAttributes(rows []CampaignCostRecord) []CampaignCostRecord {
	result := make([]CampaignCostRecord, 0, len(rows))
	for _, row := range rows {
		row.Country = ExtractCampaignCountry(row.CampaignName)
		row.AppLanguage = ExtractCampaignLanguage(row.CampaignName)
		result = append(result, row)
	}
	return result
}

// ExtractCampaignCountry returns the content after the last dash with the
// trailing "Campaign" marker word removed. Names without a dash have no
// country.
func ExtractCampaignCountry(campaignName string) NullString {
	match := campaignCountryRegex.FindStringSubmatch(campaignName)
	if match == nil {
		return NullString{}
	}

	country := strings.TrimSpace(match[1])
	if strings.HasSuffix(country, campaignNameMarker) {
		country = strings.TrimSpace(strings.TrimSuffix(country, campaignNameMarker))
	}
	return NewNullString(country)
}

// ExtractCampaignLanguage returns the lowercased content between a colon and
// the dash that follows it. Names without the colon-then-dash pattern have
// no language.
func ExtractCampaignLanguage(campaignName string) NullString {
	match := campaignLanguageRegex.FindStringSubmatch(campaignName)
	if match == nil {
		return NullString{}
	}
	return NewNullString(strings.ToLower(match[1]))
}

// RollupCampaigns aggregates raw per-day cost rows into exactly one
// CanonicalCampaign per campaign id. Campaigns with a single row pass
// through unchanged. For campaigns with multiple daily rows the campaign
// name of the most recent row by segment_date is authoritative, since
// country/language conventions were back-filled into names over time, and
// cost is summed across the whole group. Output is sorted by campaign id so
// repeated runs on the same input are identical.
func RollupCampaigns(rows []CampaignCostRecord) ([]CanonicalCampaign, error) {
	groups := make(map[string][]CampaignCostRecord)
	for _, row := range rows {
		if row.CampaignID == "" {
			return nil, NewDataShapeError(DatasetCampaignCost, ColumnCampaignID)
		}
		groups[row.CampaignID] = append(groups[row.CampaignID], row)
	}

	result := make([]CanonicalCampaign, 0, len(groups))
	for campaignID, group := range groups {
		if len(group) == 1 {
			row := group[0]
			result = append(result, CanonicalCampaign{
				CampaignID:   campaignID,
				CampaignName: row.CampaignName,
				Country:      row.Country,
				AppLanguage:  row.AppLanguage,
				TotalCost:    row.Cost,
			})
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[j].SegmentDate.Before(group[i].SegmentDate)
		})

		// Most recent row wins the name. Attributes are re-derived from the
		// authoritative name and applied to the aggregate.
		authoritativeName := group[0].CampaignName
		var totalCost float64
		for _, row := range group {
			totalCost += row.Cost
		}
		result = append(result, CanonicalCampaign{
			CampaignID:   campaignID,
			CampaignName: authoritativeName,
			Country:      ExtractCampaignCountry(authoritativeName),
			AppLanguage:  ExtractCampaignLanguage(authoritativeName),
			TotalCost:    totalCost,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CampaignID < result[j].CampaignID
	})
	return result, nil
}

// FilterCampaignCostsByDate keeps cost rows whose segment_date falls in the
// inclusive [from, to] range. Used to re-rollup spend for a report window
// without touching the cached raw rows. Zero bounds are open on that side.
func FilterCampaignCostsByDate(rows []CampaignCostRecord, from, to civil.Date) []CampaignCostRecord {
	filtered := make([]CampaignCostRecord, 0, len(rows))
	for _, row := range rows {
		if from.IsValid() && row.SegmentDate.Before(from) {
			continue
		}
		if to.IsValid() && row.SegmentDate.After(to) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}
