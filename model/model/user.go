package model

import (
	"strings"

	"cloud.google.com/go/civil"
)

// UserFunnelRecord is one raw per-user row from either user dataset
// (cr_app_launch or cr_user_progress). The same physical user can appear
// under several country/language combinations; reconciliation reduces that
// to one row per CRUserID.
//
// CRUserID is the cross-platform-stable identity and the only join key
// between the two datasets. UserPseudoID is platform-local and carried as
// metadata only.
type UserFunnelRecord struct {
	CRUserID      string
	UserPseudoID  string
	Country       string
	AppLanguage   string
	SourceID      string
	CampaignID    string
	FurthestEvent string
	MaxUserLevel  int64
	GPC           float64
	FirstOpen     civil.Date
	EventDate     civil.Date
}

// Known bad language values written by old app builds.
var languageTypoFixes = map[string]string{
	"ukranian": "ukrainian",
	"malgache": "malagasy",
}

// Sources that only ever produced internal traffic.
var removedSourceIDs = []string{"testingSource", "DSS-Botswana"}

const removedSourcePrefix = "test"

// CleanupUserRecords fixes known language typos and removes rows from
// internal test sources. Returns a new slice; inputs are not mutated.
func CleanupUserRecords(rows []UserFunnelRecord) []UserFunnelRecord {
	result := make([]UserFunnelRecord, 0, len(rows))
	for _, row := range rows {
		if isRemovedSource(row.SourceID) {
			continue
		}
		if fixed, exists := languageTypoFixes[row.AppLanguage]; exists {
			row.AppLanguage = fixed
		}
		result = append(result, row)
	}
	return result
}

func isRemovedSource(sourceID string) bool {
	if strings.HasPrefix(sourceID, removedSourcePrefix) {
		return true
	}
	for _, removed := range removedSourceIDs {
		if sourceID == removed {
			return true
		}
	}
	return false
}
