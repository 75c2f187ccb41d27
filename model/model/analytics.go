package model

import (
	"sort"

	"cloud.google.com/go/civil"

	U "crmetrics/util"
)

// Funnel stats reported by the dashboard. LR..PC are cumulative stage
// counts, LA/RA/GC are acquisition thresholds on top of the funnel.
const (
	StatLearnersReached   = "LR"
	StatDownloadCompleted = "DC"
	StatTappedStart       = "TS"
	StatSelectedLevel     = "SL"
	StatPuzzleCompleted   = "PC"
	StatLearnersAcquired  = "LA"
	StatReadersAcquired   = "RA"
	StatGameCompleted     = "GC"
)

var FunnelStatsOrdered = []string{
	StatLearnersReached,
	StatDownloadCompleted,
	StatTappedStart,
	StatSelectedLevel,
	StatPuzzleCompleted,
	StatLearnersAcquired,
	StatReadersAcquired,
	StatGameCompleted,
}

var funnelStatTitles = map[string]string{
	StatLearnersReached:   "Learner Reached",
	StatDownloadCompleted: "Download Completed",
	StatTappedStart:       "Tapped Start",
	StatSelectedLevel:     "Selected Level",
	StatPuzzleCompleted:   "Puzzle Completed",
	StatLearnersAcquired:  "Learners Acquired",
	StatReadersAcquired:   "Readers Acquired",
	StatGameCompleted:     "Game Completed",
}

// Acquisition thresholds.
const (
	LearnerAcquiredMinLevel int64   = 1
	ReaderAcquiredMinLevel  int64   = 25
	GameCompletedMinGPC     float64 = 90
)

// SafeRatio divides numerator by denominator, with a zero denominator
// yielding an explicit zero instead of a crash or an Inf leaking into
// reports.
func SafeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// CohortFilter narrows a per-user dataset. Zero values mean "no filter":
// invalid dates leave that bound open, nil slices match every country or
// language, empty ids match every source or campaign.
type CohortFilter struct {
	From       civil.Date
	To         civil.Date
	Countries  []string
	Languages  []string
	SourceID   string
	CampaignID string
}

// FilterUserCohort returns the rows matching the filter, with the date
// bounds applied to first_open. Used for acquisition cohorts.
func FilterUserCohort(rows []UserFunnelRecord, filter CohortFilter) []UserFunnelRecord {
	result := make([]UserFunnelRecord, 0, len(rows))
	for _, row := range rows {
		if !matchesDateRange(row.FirstOpen, filter.From, filter.To) {
			continue
		}
		if !matchesCohortAttributes(row, filter) {
			continue
		}
		result = append(result, row)
	}
	return result
}

// FilterEventRecords is FilterUserCohort with the date bounds applied to
// event_date instead. Used for daily event series.
func FilterEventRecords(rows []UserFunnelRecord, filter CohortFilter) []UserFunnelRecord {
	result := make([]UserFunnelRecord, 0, len(rows))
	for _, row := range rows {
		if !matchesDateRange(row.EventDate, filter.From, filter.To) {
			continue
		}
		if !matchesCohortAttributes(row, filter) {
			continue
		}
		result = append(result, row)
	}
	return result
}

func matchesDateRange(date, from, to civil.Date) bool {
	if from.IsValid() && date.Before(from) {
		return false
	}
	if to.IsValid() && date.After(to) {
		return false
	}
	return true
}

func matchesCohortAttributes(row UserFunnelRecord, filter CohortFilter) bool {
	if len(filter.Countries) > 0 && !U.StringValueIn(row.Country, filter.Countries) {
		return false
	}
	if len(filter.Languages) > 0 && !U.StringValueIn(row.AppLanguage, filter.Languages) {
		return false
	}
	if filter.SourceID != "" && row.SourceID != filter.SourceID {
		return false
	}
	if filter.CampaignID != "" && row.CampaignID != filter.CampaignID {
		return false
	}
	return true
}

// CohortTotalsByStat counts the users of an already-filtered cohort that
// reached the given stat. Stage stats count cumulatively: a user at
// puzzle_completed also counts for DC, TS and SL.
func CohortTotalsByStat(rows []UserFunnelRecord, stat string) int64 {
	switch stat {
	case StatLearnersReached:
		return int64(len(rows))
	case StatLearnersAcquired:
		return countMatching(rows, func(row UserFunnelRecord) bool {
			return row.MaxUserLevel >= LearnerAcquiredMinLevel
		})
	case StatReadersAcquired:
		return countMatching(rows, func(row UserFunnelRecord) bool {
			return row.MaxUserLevel >= ReaderAcquiredMinLevel
		})
	case StatGameCompleted:
		return countMatching(rows, func(row UserFunnelRecord) bool {
			return row.MaxUserLevel >= LearnerAcquiredMinLevel && row.GPC >= GameCompletedMinGPC
		})
	}

	minRank, exists := statMinStageRank(stat)
	if !exists {
		return 0
	}
	return countMatching(rows, func(row UserFunnelRecord) bool {
		rank := FunnelStageRank(row.FurthestEvent)
		return rank >= minRank
	})
}

func statMinStageRank(stat string) (int, bool) {
	switch stat {
	case StatDownloadCompleted:
		return funnelStageRanks[StageDownloadCompleted], true
	case StatTappedStart:
		return funnelStageRanks[StageTappedStart], true
	case StatSelectedLevel:
		return funnelStageRanks[StageSelectedLevel], true
	case StatPuzzleCompleted:
		return funnelStageRanks[StagePuzzleCompleted], true
	}
	return 0, false
}

func countMatching(rows []UserFunnelRecord, match func(UserFunnelRecord) bool) int64 {
	var count int64
	for _, row := range rows {
		if match(row) {
			count++
		}
	}
	return count
}

// FunnelStep is one rendered step of the CR funnel. Percent fields are nil
// where the ratio is undefined (first steps, zero base).
type FunnelStep struct {
	Stat              string   `json:"stat"`
	Title             string   `json:"title"`
	Count             int64    `json:"count"`
	PercentOfPrevious *float64 `json:"percent_of_previous"`
	PercentOfSecond   *float64 `json:"percent_of_second"`
}

// BuildFunnelSteps computes all funnel stats for a cohort. Learners Reached
// comes from the app-launch cohort (unique users), every other stat from
// the progress cohort.
func BuildFunnelSteps(progressCohort, appLaunchCohort []UserFunnelRecord) []FunnelStep {
	steps := make([]FunnelStep, 0, len(FunnelStatsOrdered))
	for _, stat := range FunnelStatsOrdered {
		var count int64
		if stat == StatLearnersReached {
			count = countUniqueUsers(appLaunchCohort)
		} else {
			count = CohortTotalsByStat(progressCohort, stat)
		}
		steps = append(steps, FunnelStep{Stat: stat, Title: funnelStatTitles[stat], Count: count})
	}

	for i := 1; i < len(steps); i++ {
		if previous := steps[i-1].Count; previous > 0 {
			percent := U.RoundTwoDecimals(100 * float64(steps[i].Count) / float64(previous))
			steps[i].PercentOfPrevious = &percent
		}
	}
	if len(steps) >= 2 && steps[1].Count > 0 {
		second := float64(steps[1].Count)
		for i := 2; i < len(steps); i++ {
			percent := U.RoundTwoDecimals(100 * float64(steps[i].Count) / second)
			steps[i].PercentOfSecond = &percent
		}
	}
	return steps
}

func countUniqueUsers(rows []UserFunnelRecord) int64 {
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		seen[row.CRUserID] = true
	}
	return int64(len(seen))
}

// CampaignReportRow is one row of the home data table: acquisition counts
// joined with rolled up cost per campaign.
type CampaignReportRow struct {
	CampaignID      string  `json:"campaign_id"`
	SourceID        string  `json:"source_id"`
	CampaignName    string  `json:"campaign_name"`
	LearnersReached int64   `json:"lr"`
	Cost            float64 `json:"cost"`
	CostPerLearner  float64 `json:"lrc"`
	Country         string  `json:"country"`
	AppLanguage     string  `json:"app_language"`
}

// BuildCampaignReport joins per-campaign learner counts from the canonical
// app-launch cohort with the campaign cost rollup. Campaign attributes from
// the cost side fill in whatever the user side is missing. Cost per learner
// is zero when a campaign reached nobody.
func BuildCampaignReport(appLaunchCohort []UserFunnelRecord, campaigns []CanonicalCampaign) []CampaignReportRow {
	rowsByCampaign := make(map[string]*CampaignReportRow)
	order := make([]string, 0)
	for _, user := range appLaunchCohort {
		if user.CampaignID == "" {
			continue
		}
		row, exists := rowsByCampaign[user.CampaignID]
		if !exists {
			row = &CampaignReportRow{
				CampaignID:  user.CampaignID,
				SourceID:    user.SourceID,
				Country:     user.Country,
				AppLanguage: user.AppLanguage,
			}
			rowsByCampaign[user.CampaignID] = row
			order = append(order, user.CampaignID)
		}
		row.LearnersReached++
	}

	for _, campaign := range campaigns {
		row, exists := rowsByCampaign[campaign.CampaignID]
		if !exists {
			continue
		}
		row.CampaignName = campaign.CampaignName
		row.Cost = campaign.TotalCost
		if row.Country == "" && campaign.Country.Valid {
			row.Country = campaign.Country.String
		}
		if row.AppLanguage == "" && campaign.AppLanguage.Valid {
			row.AppLanguage = campaign.AppLanguage.String
		}
	}

	result := make([]CampaignReportRow, 0, len(order))
	for _, campaignID := range order {
		row := rowsByCampaign[campaignID]
		row.CostPerLearner = U.RoundTwoDecimals(SafeRatio(row.Cost, float64(row.LearnersReached)))
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CampaignID < result[j].CampaignID
	})
	return result
}

// AttributeCostRow aggregates campaign spend by (country, app_language)
// with the acquisition stats and cost ratios for that segment.
type AttributeCostRow struct {
	Country         string             `json:"country"`
	AppLanguage     string             `json:"app_language"`
	Cost            float64            `json:"cost"`
	StatTotals      map[string]int64   `json:"stat_totals"`
	CostPerStat     map[string]float64 `json:"cost_per_stat"`
	PuzzlePercent   float64            `json:"pc_lr_percent"`
	AcquiredPercent float64            `json:"la_lr_percent"`
	ReaderPercent   float64            `json:"ra_lr_percent"`
}

var attributeCostStats = []string{
	StatLearnersReached,
	StatPuzzleCompleted,
	StatLearnersAcquired,
	StatReadersAcquired,
}

// BuildAttributeCostReport groups canonical campaign spend by country and
// language, then prices each funnel stat for the matching user segment.
// Campaigns without both attributes are skipped, they cannot be assigned to
// a segment. All ratios follow the zero-denominator-is-zero policy.
func BuildAttributeCostReport(campaigns []CanonicalCampaign,
	appLaunch, progress []UserFunnelRecord, filter CohortFilter) []AttributeCostRow {

	type segment struct{ country, language string }
	costBySegment := make(map[segment]float64)
	order := make([]segment, 0)
	for _, campaign := range campaigns {
		if !campaign.Country.Valid || !campaign.AppLanguage.Valid {
			continue
		}
		key := segment{country: campaign.Country.String, language: campaign.AppLanguage.String}
		if _, exists := costBySegment[key]; !exists {
			order = append(order, key)
		}
		costBySegment[key] += campaign.TotalCost
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].country != order[j].country {
			return order[i].country < order[j].country
		}
		return order[i].language < order[j].language
	})

	result := make([]AttributeCostRow, 0, len(order))
	for _, key := range order {
		segmentFilter := filter
		segmentFilter.Countries = []string{key.country}
		segmentFilter.Languages = []string{key.language}

		launchCohort := FilterUserCohort(appLaunch, segmentFilter)
		progressCohort := FilterUserCohort(progress, segmentFilter)

		row := AttributeCostRow{
			Country:     key.country,
			AppLanguage: key.language,
			Cost:        U.RoundTwoDecimals(costBySegment[key]),
			StatTotals:  make(map[string]int64, len(attributeCostStats)),
			CostPerStat: make(map[string]float64, len(attributeCostStats)),
		}
		for _, stat := range attributeCostStats {
			var total int64
			if stat == StatLearnersReached {
				total = countUniqueUsers(launchCohort)
			} else {
				total = CohortTotalsByStat(progressCohort, stat)
			}
			row.StatTotals[stat] = total
			row.CostPerStat[stat] = U.RoundTwoDecimals(SafeRatio(row.Cost, float64(total)))
		}

		learnersReached := float64(row.StatTotals[StatLearnersReached])
		row.PuzzlePercent = U.RoundTwoDecimals(100 * SafeRatio(float64(row.StatTotals[StatPuzzleCompleted]), learnersReached))
		row.AcquiredPercent = U.RoundTwoDecimals(100 * SafeRatio(float64(row.StatTotals[StatLearnersAcquired]), learnersReached))
		row.ReaderPercent = U.RoundTwoDecimals(100 * SafeRatio(float64(row.StatTotals[StatReadersAcquired]), learnersReached))
		result = append(result, row)
	}
	return result
}

// CountryShare is one slice of the country breakdown.
type CountryShare struct {
	Country string  `json:"country"`
	Count   int64   `json:"count"`
	Share   float64 `json:"share"`
}

// CountryShares groups rows by country and drops countries below the
// minimum share of the total, so the breakdown is not dominated by a long
// tail of one-off attributions.
func CountryShares(rows []UserFunnelRecord, minShare float64) []CountryShare {
	counts := make(map[string]int64)
	for _, row := range rows {
		counts[row.Country]++
	}
	total := float64(len(rows))

	result := make([]CountryShare, 0, len(counts))
	for country, count := range counts {
		share := SafeRatio(float64(count), total)
		if share < minShare {
			continue
		}
		result = append(result, CountryShare{Country: country, Count: count, Share: share})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Country < result[j].Country
	})
	return result
}

// DailyCount is one point of a per-day event series.
type DailyCount struct {
	Date  civil.Date `json:"date"`
	Count int64      `json:"count"`
}

// DailyEventCounts counts rows per event_date, sorted by date.
func DailyEventCounts(rows []UserFunnelRecord) []DailyCount {
	counts := make(map[civil.Date]int64)
	for _, row := range rows {
		counts[row.EventDate]++
	}
	result := make([]DailyCount, 0, len(counts))
	for date, count := range counts {
		result = append(result, DailyCount{Date: date, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}
