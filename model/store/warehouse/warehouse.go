package warehouse

import (
	"context"
	"io/ioutil"
	"strings"
	"sync"

	bigquery "cloud.google.com/go/bigquery"
	pkgErrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	C "crmetrics/config"
	"crmetrics/metrics"
	"crmetrics/model/model"
	BQ "crmetrics/services/bigquery"
	U "crmetrics/util"
)

// WarehouseStore pulls the raw marketing and user datasets from BigQuery
// and normalizes them to the model row shapes. All transformation beyond
// per-row normalization belongs to the model package.
type WarehouseStore struct {
	client *bigquery.Client
}

var store *WarehouseStore
var storeInitLock sync.Mutex

// GetStore returns the process-wide warehouse store, creating the BigQuery
// client on first use from the configured credentials.
func GetStore(ctx context.Context) (*WarehouseStore, error) {
	storeInitLock.Lock()
	defer storeInitLock.Unlock()
	if store != nil {
		return store, nil
	}

	conf := C.GetBigqueryConf()
	credentialsJSON := ""
	if conf.CredentialsFile != "" {
		raw, err := ioutil.ReadFile(conf.CredentialsFile)
		if err != nil {
			return nil, pkgErrors.Wrap(err, "failed to read bigquery credentials file")
		}
		credentialsJSON = string(raw)
	}

	setting := BQ.Setting{
		BigqueryProjectID:       conf.ProjectID,
		BigqueryCredentialsJSON: credentialsJSON,
	}
	client, err := BQ.CreateBigqueryClient(&ctx, &setting)
	if err != nil {
		return nil, err
	}

	store = &WarehouseStore{client: client}
	return store, nil
}

// SnapshotInputs holds everything one refresh cycle reads from the
// warehouse, already normalized and cleaned.
type SnapshotInputs struct {
	CampaignCosts []model.CampaignCostRecord
	AppLaunch     []model.UserFunnelRecord
	Progress      []model.UserFunnelRecord
	Unattributed  []model.UserFunnelRecord
}

// LoadSnapshotInputs fetches the five snapshot datasets concurrently,
// matching the daily refresh shape: two ad platforms, the two per-user
// tables and the unattributed event series. The first failed fetch fails
// the whole load.
func (store *WarehouseStore) LoadSnapshotInputs(ctx context.Context) (*SnapshotInputs, error) {
	startDate := C.GetAttributionStartDate()

	var googleRows, facebookRows []model.CampaignCostRecord
	var appLaunchRows, progressRows, unattributedRows []model.UserFunnelRecord
	loadErrors := make([]error, 5)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		googleRows, loadErrors[0] = store.pullGoogleAdsRecords(ctx, startDate)
	}()
	go func() {
		defer wg.Done()
		facebookRows, loadErrors[1] = store.pullFacebookAdsRecords(ctx, startDate)
	}()
	go func() {
		defer wg.Done()
		appLaunchRows, loadErrors[2] = store.pullUserRecords(ctx,
			model.DatasetAppLaunch, tableAppLaunchUsers, startDate)
	}()
	go func() {
		defer wg.Done()
		progressRows, loadErrors[3] = store.pullUserRecords(ctx,
			model.DatasetProgress, tableProgressUsers, startDate)
	}()
	go func() {
		defer wg.Done()
		unattributedRows, loadErrors[4] = store.pullUnattributedEvents(ctx, startDate)
	}()
	wg.Wait()

	for _, err := range loadErrors {
		if err != nil {
			metrics.Increment(metrics.IncrWarehouseQueryFailure)
			return nil, err
		}
	}

	inputs := &SnapshotInputs{
		CampaignCosts: append(googleRows, facebookRows...),
		AppLaunch:     model.CleanupUserRecords(appLaunchRows),
		Progress:      model.CleanupUserRecords(progressRows),
		Unattributed:  model.CleanupUserRecords(unattributedRows),
	}
	log.WithFields(log.Fields{
		"campaign_cost_rows": len(inputs.CampaignCosts),
		"app_launch_rows":    len(inputs.AppLaunch),
		"progress_rows":      len(inputs.Progress),
		"unattributed_rows":  len(inputs.Unattributed),
	}).Info("Loaded snapshot inputs from warehouse.")
	return inputs, nil
}

type googleAdsRow struct {
	CampaignID   bigquery.NullString `bigquery:"campaign_id"`
	SegmentDate  bigquery.NullDate   `bigquery:"segment_date"`
	CampaignName bigquery.NullString `bigquery:"campaign_name"`
	CostMicros   bigquery.NullInt64  `bigquery:"cost_micros"`
}

func (store *WarehouseStore) pullGoogleAdsRecords(ctx context.Context,
	startDate string) ([]model.CampaignCostRecord, error) {

	query := buildGoogleAdsQuery(C.GetBigqueryConf(), startDate)
	it, err := store.client.Query(query).Read(ctx)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to query google ads campaign stats")
	}
	// Validate the result shape once, before reading rows. A zero-row
	// result with a missing column must still fail, not pass as empty.
	if err := requireColumns(it.Schema, model.DatasetCampaignCost,
		model.ColumnCampaignID, model.ColumnSegmentDate, model.ColumnCampaignName); err != nil {
		return nil, err
	}

	records := make([]model.CampaignCostRecord, 0)
	for {
		var row googleAdsRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pkgErrors.Wrap(err, "failed to read google ads row")
		}

		record := model.CampaignCostRecord{
			// Ads exports have rendered numeric ids with thousands
			// separators before.
			CampaignID:   strings.ReplaceAll(row.CampaignID.StringVal, ",", ""),
			CampaignName: row.CampaignName.StringVal,
			// Google reports spend in micros.
			Cost: U.RoundTwoDecimals(float64(row.CostMicros.Int64) / 1e6),
		}
		if row.SegmentDate.Valid {
			record.SegmentDate = row.SegmentDate.Date
		}
		records = append(records, record)
	}
	return records, nil
}

type facebookAdsRow struct {
	CampaignID   bigquery.NullString  `bigquery:"campaign_id"`
	SegmentDate  bigquery.NullDate    `bigquery:"segment_date"`
	CampaignName bigquery.NullString  `bigquery:"campaign_name"`
	Cost         bigquery.NullFloat64 `bigquery:"cost"`
}

func (store *WarehouseStore) pullFacebookAdsRecords(ctx context.Context,
	startDate string) ([]model.CampaignCostRecord, error) {

	query := buildFacebookAdsQuery(C.GetBigqueryConf(), startDate)
	it, err := store.client.Query(query).Read(ctx)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to query facebook ads data")
	}
	if err := requireColumns(it.Schema, model.DatasetCampaignCost,
		model.ColumnCampaignID, model.ColumnSegmentDate, model.ColumnCampaignName); err != nil {
		return nil, err
	}

	records := make([]model.CampaignCostRecord, 0)
	for {
		var row facebookAdsRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pkgErrors.Wrap(err, "failed to read facebook ads row")
		}

		record := model.CampaignCostRecord{
			CampaignID:   strings.ReplaceAll(row.CampaignID.StringVal, ",", ""),
			CampaignName: row.CampaignName.StringVal,
			Cost:         row.Cost.Float64,
		}
		if row.SegmentDate.Valid {
			record.SegmentDate = row.SegmentDate.Date
		}
		records = append(records, record)
	}
	return records, nil
}

type userRow struct {
	CRUserID      bigquery.NullString  `bigquery:"cr_user_id"`
	UserPseudoID  bigquery.NullString  `bigquery:"user_pseudo_id"`
	Country       bigquery.NullString  `bigquery:"country"`
	AppLanguage   bigquery.NullString  `bigquery:"app_language"`
	SourceID      bigquery.NullString  `bigquery:"source_id"`
	CampaignID    bigquery.NullString  `bigquery:"campaign_id"`
	FurthestEvent bigquery.NullString  `bigquery:"furthest_event"`
	MaxUserLevel  bigquery.NullInt64   `bigquery:"max_user_level"`
	GPC           bigquery.NullFloat64 `bigquery:"gpc"`
	FirstOpen     bigquery.NullDate    `bigquery:"first_open"`
	EventDate     bigquery.NullDate    `bigquery:"event_date"`
}

func (row *userRow) toRecord() model.UserFunnelRecord {
	record := model.UserFunnelRecord{
		CRUserID:      row.CRUserID.StringVal,
		UserPseudoID:  row.UserPseudoID.StringVal,
		Country:       row.Country.StringVal,
		AppLanguage:   strings.ToLower(strings.TrimSpace(row.AppLanguage.StringVal)),
		SourceID:      row.SourceID.StringVal,
		CampaignID:    row.CampaignID.StringVal,
		FurthestEvent: row.FurthestEvent.StringVal,
		MaxUserLevel:  row.MaxUserLevel.Int64,
		GPC:           row.GPC.Float64,
	}
	if row.FirstOpen.Valid {
		record.FirstOpen = row.FirstOpen.Date
	}
	if row.EventDate.Valid {
		record.EventDate = row.EventDate.Date
	}
	return record
}

func (store *WarehouseStore) pullUserRecords(ctx context.Context,
	dataset, table, startDate string) ([]model.UserFunnelRecord, error) {

	query := buildUserRecordsQuery(C.GetBigqueryConf(), table, startDate)
	return store.readUserRows(ctx, query, dataset)
}

func (store *WarehouseStore) pullUnattributedEvents(ctx context.Context,
	startDate string) ([]model.UserFunnelRecord, error) {

	query := buildUnattributedEventsQuery(C.GetBigqueryConf(), startDate)
	return store.readUserRows(ctx, query, model.DatasetAppLaunch)
}

func (store *WarehouseStore) readUserRows(ctx context.Context,
	query, dataset string) ([]model.UserFunnelRecord, error) {

	it, err := store.client.Query(query).Read(ctx)
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to query %s", dataset)
	}
	if err := requireColumns(it.Schema, dataset,
		model.ColumnCRUserID, model.ColumnFirstOpen); err != nil {
		return nil, err
	}

	records := make([]model.UserFunnelRecord, 0)
	for {
		var row userRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pkgErrors.Wrapf(err, "failed to read %s row", dataset)
		}
		records = append(records, row.toRecord())
	}
	return records, nil
}

// requireColumns returns a DataShapeError for the first required column
// absent from the result schema. Shape failures must surface explicitly
// instead of producing zero-valued rows.
func requireColumns(schema bigquery.Schema, dataset string, columns ...string) error {
	present := make(map[string]bool, len(schema))
	for _, field := range schema {
		present[field.Name] = true
	}
	for _, column := range columns {
		if !present[column] {
			return model.NewDataShapeError(dataset, column)
		}
	}
	return nil
}

// GetCountryList returns the active-countries reference list for the
// filter UI.
func (store *WarehouseStore) GetCountryList(ctx context.Context) ([]string, error) {
	return store.pullReferenceList(ctx, buildCountryListQuery(C.GetBigqueryConf()))
}

// GetLanguageList returns the distinct display languages for the filter UI.
func (store *WarehouseStore) GetLanguageList(ctx context.Context) ([]string, error) {
	return store.pullReferenceList(ctx, buildLanguageListQuery(C.GetBigqueryConf()))
}

func (store *WarehouseStore) pullReferenceList(ctx context.Context, query string) ([]string, error) {
	var rows [][]string
	if err := BQ.ExecuteQuery(&ctx, store.client, query, &rows); err != nil {
		metrics.Increment(metrics.IncrWarehouseQueryFailure)
		return nil, err
	}

	values := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		value := strings.TrimSpace(row[0])
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return values, nil
}
