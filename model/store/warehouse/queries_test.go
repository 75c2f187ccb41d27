package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	C "crmetrics/config"
)

func testBigqueryConf() C.BigqueryConf {
	return C.BigqueryConf{
		ProjectID:        "cr-marketing",
		MarketingDataset: "marketing",
		UserDataset:      "cr_user_dataset",
		AdsAccountID:     "6687569935",
	}
}

func TestBuildGoogleAdsQuery(t *testing.T) {
	query := buildGoogleAdsQuery(testBigqueryConf(), "2024-11-08")

	// Ads export tables carry the account id.
	assert.Contains(t, query, "`cr-marketing.marketing.p_ads_CampaignStats_6687569935`")
	assert.Contains(t, query, "`cr-marketing.marketing.ads_Campaign_6687569935`")
	// Numeric ids must come back as strings to survive the join with the
	// user-side campaign ids.
	assert.Contains(t, query, "CAST(metrics.campaign_id AS STRING)")
	assert.Contains(t, query, "metrics.segments_date >= '2024-11-08'")
}

func TestBuildFacebookAdsQuery(t *testing.T) {
	query := buildFacebookAdsQuery(testBigqueryConf(), "2024-11-08")

	assert.Contains(t, query, "`cr-marketing.marketing.facebook_ads_data`")
	assert.Contains(t, query, "d.spend AS cost")
	assert.Contains(t, query, "d.data_date_start >= '2024-11-08'")
}

func TestBuildUserRecordsQuery(t *testing.T) {
	query := buildUserRecordsQuery(testBigqueryConf(), tableAppLaunchUsers, "2024-11-08")

	assert.Contains(t, query, "`cr-marketing.cr_user_dataset.cr_app_launch_campaign_data`")
	assert.Contains(t, query, "first_open >= '2024-11-08'")
	for _, column := range []string{"cr_user_id", "furthest_event", "max_user_level", "gpc"} {
		assert.Contains(t, query, column)
	}

	progressQuery := buildUserRecordsQuery(testBigqueryConf(), tableProgressUsers, "2024-11-08")
	assert.Contains(t, progressQuery, "cr_user_progress_campaign_data")
}

func TestBuildUnattributedEventsQuery(t *testing.T) {
	query := buildUnattributedEventsQuery(testBigqueryConf(), "2024-09-11")

	assert.Contains(t, query, "cr_app_launch_unattributed_events")
	// The unattributed series is an event series, not a cohort.
	assert.Contains(t, query, "event_date >= '2024-09-11'")
	assert.False(t, strings.Contains(query, "campaign_id"))
}

func TestBuildReferenceListQueries(t *testing.T) {
	assert.Contains(t, buildCountryListQuery(testBigqueryConf()),
		"`cr-marketing.cr_user_dataset.active_countries`")
	assert.Contains(t, buildLanguageListQuery(testBigqueryConf()),
		"`cr-marketing.cr_user_dataset.language_max_level`")
}
