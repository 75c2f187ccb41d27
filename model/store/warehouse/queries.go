package warehouse

import (
	"fmt"

	C "crmetrics/config"
)

// Warehouse tables. Ads tables carry the ad account id in the table name,
// user tables are daily-materialized views maintained by the events
// pipeline.
const (
	tableGoogleAdsCampaignStats = "p_ads_CampaignStats_%s"
	tableGoogleAdsCampaigns     = "ads_Campaign_%s"
	tableFacebookAds            = "facebook_ads_data"
	tableAppLaunchUsers         = "cr_app_launch_campaign_data"
	tableProgressUsers          = "cr_user_progress_campaign_data"
	tableUnattributedEvents     = "cr_app_launch_unattributed_events"
	tableActiveCountries        = "active_countries"
	tableLanguageMaxLevel       = "language_max_level"
)

func marketingTable(conf C.BigqueryConf, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", conf.ProjectID, conf.MarketingDataset, table)
}

func userTable(conf C.BigqueryConf, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", conf.ProjectID, conf.UserDataset, table)
}

// buildGoogleAdsQuery joins daily campaign stats with campaign names. Cost
// comes back in micros and the campaign id as a number, both normalized by
// the loader.
func buildGoogleAdsQuery(conf C.BigqueryConf, startDate string) string {
	statsTable := marketingTable(conf, fmt.Sprintf(tableGoogleAdsCampaignStats, conf.AdsAccountID))
	campaignsTable := marketingTable(conf, fmt.Sprintf(tableGoogleAdsCampaigns, conf.AdsAccountID))

	return fmt.Sprintf(`SELECT DISTINCT
    CAST(metrics.campaign_id AS STRING) AS campaign_id,
    metrics.segments_date AS segment_date,
    campaigns.campaign_name AS campaign_name,
    metrics.metrics_cost_micros AS cost_micros
FROM %s AS metrics
INNER JOIN %s AS campaigns
    ON metrics.campaign_id = campaigns.campaign_id
    AND metrics.segments_date >= '%s'`, statsTable, campaignsTable, startDate)
}

func buildFacebookAdsQuery(conf C.BigqueryConf, startDate string) string {
	return fmt.Sprintf(`SELECT
    CAST(d.campaign_id AS STRING) AS campaign_id,
    d.data_date_start AS segment_date,
    d.campaign_name AS campaign_name,
    d.spend AS cost
FROM %s AS d
WHERE d.data_date_start >= '%s'
ORDER BY d.data_date_start DESC`, marketingTable(conf, tableFacebookAds), startDate)
}

func buildUserRecordsQuery(conf C.BigqueryConf, table, startDate string) string {
	return fmt.Sprintf(`SELECT
    cr_user_id,
    user_pseudo_id,
    country,
    app_language,
    source_id,
    campaign_id,
    furthest_event,
    max_user_level,
    gpc,
    first_open,
    event_date
FROM %s
WHERE first_open >= '%s'`, userTable(conf, table), startDate)
}

func buildUnattributedEventsQuery(conf C.BigqueryConf, startDate string) string {
	return fmt.Sprintf(`SELECT
    cr_user_id,
    user_pseudo_id,
    country,
    app_language,
    first_open,
    event_date
FROM %s
WHERE event_date >= '%s'`, userTable(conf, tableUnattributedEvents), startDate)
}

func buildCountryListQuery(conf C.BigqueryConf) string {
	return fmt.Sprintf("SELECT country FROM %s ORDER BY country ASC",
		userTable(conf, tableActiveCountries))
}

func buildLanguageListQuery(conf C.BigqueryConf) string {
	return fmt.Sprintf("SELECT display_language FROM %s",
		userTable(conf, tableLanguageMaxLevel))
}
