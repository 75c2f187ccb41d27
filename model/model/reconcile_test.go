package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileUserIdentityConflictOverwrite(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili",
			FirstOpen: testDate(2024, 11, 10)},
	}
	progress := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Tanzania", AppLanguage: "swahili",
			FurthestEvent: StageLevelCompleted, MaxUserLevel: 3,
			EventDate: testDate(2024, 11, 12)},
	}

	result, err := ReconcileUserIdentity(appLaunch, progress)
	assert.Nil(t, err)
	assert.Len(t, result.AppLaunch, 1)
	assert.Len(t, result.Progress, 1)

	// Progress attribution wins on conflict, for both attributes.
	assert.Equal(t, "Tanzania", result.AppLaunch[0].Country)
	assert.Equal(t, "swahili", result.AppLaunch[0].AppLanguage)
	assert.Equal(t, int64(1), result.Stats.AttributionConflicts)

	// App-launch first_open is copied onto the progress output.
	assert.Equal(t, testDate(2024, 11, 10), result.Progress[0].FirstOpen)
}

func TestReconcileUserIdentityAgreementNotCounted(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili"},
	}
	progress := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili",
			FurthestEvent: StageTappedStart},
	}

	result, err := ReconcileUserIdentity(appLaunch, progress)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), result.Stats.AttributionConflicts)
}

func TestReconcileUserIdentityBestProgressWins(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili"},
	}
	progress := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili",
			FurthestEvent: StagePuzzleCompleted, MaxUserLevel: 9},
		{CRUserID: "u1", Country: "Uganda", AppLanguage: "english",
			FurthestEvent: StageLevelCompleted, MaxUserLevel: 2},
	}

	result, err := ReconcileUserIdentity(appLaunch, progress)
	assert.Nil(t, err)
	assert.Len(t, result.Progress, 1)

	// level_completed at level 2 outranks puzzle_completed at level 9, so
	// the Uganda row fixes the attribution.
	assert.Equal(t, "Uganda", result.Progress[0].Country)
	assert.Equal(t, "Uganda", result.AppLaunch[0].Country)
	assert.Equal(t, "english", result.AppLaunch[0].AppLanguage)
}

func TestReconcileUserIdentityMultiAttributedMatch(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili", CampaignID: "c1",
			FirstOpen: testDate(2024, 11, 1)},
		{CRUserID: "u1", Country: "Uganda", AppLanguage: "english", CampaignID: "c2",
			FirstOpen: testDate(2024, 11, 2)},
	}
	progress := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Uganda", AppLanguage: "english",
			FurthestEvent: StageSelectedLevel},
	}

	result, err := ReconcileUserIdentity(appLaunch, progress)
	assert.Nil(t, err)
	assert.Len(t, result.AppLaunch, 1)

	// The launch row matching the winning attribution is kept, campaign
	// attribution and all.
	assert.Equal(t, "c2", result.AppLaunch[0].CampaignID)
	assert.Equal(t, int64(0), result.Stats.OrphanFallbacks)
}

func TestReconcileUserIdentityOrphanFallback(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili", CampaignID: "c1"},
		{CRUserID: "u1", Country: "Uganda", AppLanguage: "english", CampaignID: "c2"},
	}
	progress := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Nigeria", AppLanguage: "hausa",
			FurthestEvent: StageTappedStart},
	}

	result, err := ReconcileUserIdentity(appLaunch, progress)
	assert.Nil(t, err)
	assert.Len(t, result.AppLaunch, 1)

	// No launch row matches the winning attribution, keep the first
	// occurrence and count the fallback.
	assert.Equal(t, "c1", result.AppLaunch[0].CampaignID)
	assert.Equal(t, int64(1), result.Stats.OrphanFallbacks)
}

func TestReconcileUserIdentityDroppedProgressUsers(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili"},
	}
	progress := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili",
			FurthestEvent: StageTappedStart},
		{CRUserID: "ghost", Country: "Kenya", AppLanguage: "swahili",
			FurthestEvent: StageLevelCompleted, MaxUserLevel: 10},
	}

	result, err := ReconcileUserIdentity(appLaunch, progress)
	assert.Nil(t, err)

	// Progress without any app-launch row is not reportable.
	assert.Len(t, result.Progress, 1)
	assert.Equal(t, "u1", result.Progress[0].CRUserID)
	assert.Equal(t, int64(1), result.Stats.DroppedProgressUsers)
}

func TestReconcileUserIdentityOneRowPerUser(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili"},
		{CRUserID: "u2", Country: "Kenya", AppLanguage: "swahili"},
		{CRUserID: "u1", Country: "Uganda", AppLanguage: "english"},
		{CRUserID: "u2", Country: "Kenya", AppLanguage: "swahili"},
	}

	result, err := ReconcileUserIdentity(appLaunch, nil)
	assert.Nil(t, err)
	assert.Len(t, result.AppLaunch, 2)

	seen := map[string]bool{}
	for _, row := range result.AppLaunch {
		assert.False(t, seen[row.CRUserID])
		seen[row.CRUserID] = true
	}
}

func TestReconcileUserIdentityStableTieBreak(t *testing.T) {
	appLaunch := []UserFunnelRecord{
		{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili"},
	}
	// Two progress rows with identical progress keys, only order differs.
	first := UserFunnelRecord{CRUserID: "u1", Country: "Kenya", AppLanguage: "swahili",
		FurthestEvent: StageTappedStart}
	second := UserFunnelRecord{CRUserID: "u1", Country: "Uganda", AppLanguage: "english",
		FurthestEvent: StageTappedStart}

	result, err := ReconcileUserIdentity(appLaunch, []UserFunnelRecord{first, second})
	assert.Nil(t, err)
	assert.Equal(t, "Kenya", result.Progress[0].Country)

	result, err = ReconcileUserIdentity(appLaunch, []UserFunnelRecord{second, first})
	assert.Nil(t, err)
	assert.Equal(t, "Uganda", result.Progress[0].Country)
}

func TestReconcileUserIdentityMissingUserId(t *testing.T) {
	result, err := ReconcileUserIdentity(
		[]UserFunnelRecord{{CRUserID: ""}}, nil)
	assert.Nil(t, result)
	assert.True(t, IsDataShapeError(err))

	result, err = ReconcileUserIdentity(
		nil, []UserFunnelRecord{{CRUserID: ""}})
	assert.Nil(t, result)
	assert.True(t, IsDataShapeError(err))
}
