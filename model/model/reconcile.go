package model

import (
	log "github.com/sirupsen/logrus"
)

// ReconcileStats counts the data-quality conditions hit while reconciling.
// None of them are fatal, but all of them indicate upstream attribution
// problems and are exported as metrics by the snapshot task.
type ReconcileStats struct {
	// AttributionConflicts: app-launch and progress disagreed on a user's
	// country/language and progress won.
	AttributionConflicts int64 `json:"attribution_conflicts"`
	// OrphanFallbacks: a multi-attributed user had no app-launch row
	// matching the attribution fixed by best progress, so the first
	// occurrence was kept.
	OrphanFallbacks int64 `json:"orphan_fallbacks"`
	// DroppedProgressUsers: progress rows whose user has no app-launch row
	// at all. Funnel progress without acquisition attribution is not
	// reportable, so these are excluded from the output.
	DroppedProgressUsers int64 `json:"dropped_progress_users"`
}

// ReconcileResult holds the canonical per-user tables. Both slices have
// exactly one row per CRUserID and every progress user also exists in
// AppLaunch.
type ReconcileResult struct {
	AppLaunch []UserFunnelRecord
	Progress  []UserFunnelRecord
	Stats     ReconcileStats
}

// ReconcileUserIdentity resolves the two per-user datasets onto a single
// canonical row per CRUserID.
//
// The progress dataset is the source of truth for country/language, because
// it reflects the user's deepest engagement: per user the row with the most
// funnel progress wins, ranked by ProgressKey with a stable first-wins tie
// break. App-launch rows are then aligned to the winning attribution:
// uniquely-attributed users are overwritten on conflict, multi-attributed
// users are matched back on (cr_user_id, country, app_language) with a
// first-occurrence fallback so no app-launch user is silently dropped.
// App-launch remains the source of truth for first_open, which is copied
// onto the progress output.
//
// Callers must pass rows in a deterministic order; ties resolve to the
// first-encountered row.
func ReconcileUserIdentity(appLaunch, progress []UserFunnelRecord) (*ReconcileResult, error) {
	launchOrder := make([]string, 0, len(appLaunch))
	launchGroups := make(map[string][]UserFunnelRecord, len(appLaunch))
	for _, row := range appLaunch {
		if row.CRUserID == "" {
			return nil, NewDataShapeError(DatasetAppLaunch, ColumnCRUserID)
		}
		if _, seen := launchGroups[row.CRUserID]; !seen {
			launchOrder = append(launchOrder, row.CRUserID)
		}
		launchGroups[row.CRUserID] = append(launchGroups[row.CRUserID], row)
	}

	// Best-progress row per user, regardless of how many country/language
	// variants exist for them.
	progressOrder := make([]string, 0, len(progress))
	bestProgress := make(map[string]UserFunnelRecord, len(progress))
	for _, row := range progress {
		if row.CRUserID == "" {
			return nil, NewDataShapeError(DatasetProgress, ColumnCRUserID)
		}
		current, seen := bestProgress[row.CRUserID]
		if !seen {
			progressOrder = append(progressOrder, row.CRUserID)
			bestProgress[row.CRUserID] = row
			continue
		}
		if ProgressKeyForRecord(row).MoreProgressThan(ProgressKeyForRecord(current)) {
			bestProgress[row.CRUserID] = row
		}
	}

	stats := ReconcileStats{}
	canonicalLaunch := make([]UserFunnelRecord, 0, len(launchOrder))
	for _, crUserID := range launchOrder {
		group := launchGroups[crUserID]
		best, hasProgress := bestProgress[crUserID]

		if len(group) == 1 {
			row := group[0]
			if hasProgress && (row.Country != best.Country || row.AppLanguage != best.AppLanguage) {
				stats.AttributionConflicts++
				row.Country = best.Country
				row.AppLanguage = best.AppLanguage
			}
			canonicalLaunch = append(canonicalLaunch, row)
			continue
		}

		// Multi-attributed user: match back on the attribution fixed by
		// best progress.
		if hasProgress {
			matched := false
			for _, row := range group {
				if row.Country == best.Country && row.AppLanguage == best.AppLanguage {
					canonicalLaunch = append(canonicalLaunch, row)
					matched = true
					break
				}
			}
			if !matched {
				stats.OrphanFallbacks++
				canonicalLaunch = append(canonicalLaunch, group[0])
			}
			continue
		}
		canonicalLaunch = append(canonicalLaunch, group[0])
	}

	canonicalLaunch = dedupeByCRUserID(canonicalLaunch)

	launchByUser := make(map[string]UserFunnelRecord, len(canonicalLaunch))
	for _, row := range canonicalLaunch {
		launchByUser[row.CRUserID] = row
	}

	canonicalProgress := make([]UserFunnelRecord, 0, len(progressOrder))
	for _, crUserID := range progressOrder {
		launchRow, exists := launchByUser[crUserID]
		if !exists {
			stats.DroppedProgressUsers++
			continue
		}
		row := bestProgress[crUserID]
		// App-launch first_open is authoritative, progress records the
		// timestamp of a different event.
		row.FirstOpen = launchRow.FirstOpen
		canonicalProgress = append(canonicalProgress, row)
	}

	if stats.AttributionConflicts > 0 || stats.OrphanFallbacks > 0 || stats.DroppedProgressUsers > 0 {
		log.WithFields(log.Fields{
			"attribution_conflicts":  stats.AttributionConflicts,
			"orphan_fallbacks":       stats.OrphanFallbacks,
			"dropped_progress_users": stats.DroppedProgressUsers,
		}).Warn("User identity reconciliation hit attribution quality issues.")
	}

	return &ReconcileResult{
		AppLaunch: canonicalLaunch,
		Progress:  canonicalProgress,
		Stats:     stats,
	}, nil
}

// dedupeByCRUserID keeps the first row per user. Final safety net so the
// one-row-per-identity guarantee holds even if an upstream step regresses.
func dedupeByCRUserID(rows []UserFunnelRecord) []UserFunnelRecord {
	seen := make(map[string]bool, len(rows))
	result := make([]UserFunnelRecord, 0, len(rows))
	for _, row := range rows {
		if seen[row.CRUserID] {
			continue
		}
		seen[row.CRUserID] = true
		result = append(result, row)
	}
	return result
}
