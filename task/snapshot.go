package task

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"crmetrics/cache"
	cacheRedis "crmetrics/cache/redis"
	"crmetrics/metrics"
	"crmetrics/model/model"
	"crmetrics/model/store/warehouse"
	U "crmetrics/util"
)

const snapshotCacheKeyPrefix = "dashboard:snapshot"

// Snapshot is the fully transformed dataset every dashboard request reads
// from: canonical campaigns with rolled-up spend and the reconciled per-user
// funnel tables. Built once per refresh cycle and cached for a day.
type Snapshot struct {
	CampaignCosts []model.CampaignCostRecord `json:"campaign_costs"`
	Campaigns     []model.CanonicalCampaign  `json:"campaigns"`
	AppLaunch     []model.UserFunnelRecord   `json:"app_launch"`
	Progress      []model.UserFunnelRecord   `json:"progress"`
	Unattributed  []model.UserFunnelRecord   `json:"unattributed"`
	Stats         model.ReconcileStats       `json:"stats"`
	RefreshedAt   time.Time                  `json:"refreshed_at"`
}

// BuildSnapshot loads the raw datasets from the warehouse and runs the full
// transformation pipeline on them. Shape errors from any stage fail the
// build, a partial snapshot is never returned.
func BuildSnapshot(ctx context.Context) (*Snapshot, error) {
	buildStartTime := U.TimeNowZ()

	store, err := warehouse.GetStore(ctx)
	if err != nil {
		return nil, err
	}
	inputs, err := store.LoadSnapshotInputs(ctx)
	if err != nil {
		return nil, err
	}

	costRows := model.ExtractCampaignAttributes(inputs.CampaignCosts)
	campaigns, err := model.RollupCampaigns(costRows)
	if err != nil {
		return nil, err
	}

	reconciled, err := model.ReconcileUserIdentity(inputs.AppLaunch, inputs.Progress)
	if err != nil {
		return nil, err
	}

	metrics.Increment(metrics.IncrSnapshotBuildCount)
	metrics.CountInt(metrics.IncrAttributionConflictCount, reconciled.Stats.AttributionConflicts)
	metrics.CountInt(metrics.IncrOrphanFallbackCount, reconciled.Stats.OrphanFallbacks)
	metrics.CountInt(metrics.IncrDroppedProgressUserCount, reconciled.Stats.DroppedProgressUsers)
	metrics.RecordLatency(metrics.LatencySnapshotBuild,
		float64(time.Since(buildStartTime).Milliseconds()))

	return &Snapshot{
		CampaignCosts: costRows,
		Campaigns:     campaigns,
		AppLaunch:     reconciled.AppLaunch,
		Progress:      reconciled.Progress,
		Unattributed:  inputs.Unattributed,
		Stats:         reconciled.Stats,
		RefreshedAt:   buildStartTime,
	}, nil
}

// GetSnapshot returns the cached snapshot for today, building and caching
// it when absent. hardRefresh bypasses the cache read and overwrites the
// cached value.
func GetSnapshot(ctx context.Context, hardRefresh bool) (*Snapshot, error) {
	cacheKey, err := cache.NewKey(snapshotCacheKeyPrefix, U.DateNowZ().String(), "")
	if err != nil {
		return nil, err
	}

	if !hardRefresh {
		if snapshot, found := readSnapshotFromCache(cacheKey); found {
			metrics.Increment(metrics.IncrSnapshotCacheHitCount)
			return snapshot, nil
		}
	}

	snapshot, err := BuildSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	writeSnapshotToCache(cacheKey, snapshot)
	return snapshot, nil
}

func readSnapshotFromCache(cacheKey *cache.Key) (*Snapshot, bool) {
	cachedValue, err := cacheRedis.Get(cacheKey)
	if err != nil || cachedValue == "" {
		return nil, false
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(cachedValue), &snapshot); err != nil {
		log.WithError(err).Error("Failed to unmarshal cached snapshot. Rebuilding.")
		return nil, false
	}
	return &snapshot, true
}

// Cache write failures are not fatal, the freshly built snapshot is still
// served and the next request rebuilds.
func writeSnapshotToCache(cacheKey *cache.Key, snapshot *Snapshot) {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		log.WithError(err).Error("Failed to marshal snapshot for cache.")
		return
	}
	if err := cacheRedis.Set(cacheKey, string(encoded), float64(U.SecondsInADay)); err != nil {
		log.WithError(err).Error("Failed to cache snapshot.")
	}
}
