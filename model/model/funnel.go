package model

// Funnel stage event names, in progression order. String event names carry
// no natural order, so the ranking below is the one source of truth for
// "how far did this user get".
const (
	StageDownloadCompleted = "download_completed"
	StageTappedStart       = "tapped_start"
	StageSelectedLevel     = "selected_level"
	StagePuzzleCompleted   = "puzzle_completed"
	StageLevelCompleted    = "level_completed"
)

// UnknownStageRank is the sentinel for an absent or unrecognised
// furthest_event. Unknown is always less progress than any known stage.
const UnknownStageRank = -1

var FunnelStagesOrdered = []string{
	StageDownloadCompleted,
	StageTappedStart,
	StageSelectedLevel,
	StagePuzzleCompleted,
	StageLevelCompleted,
}

var funnelStageRanks = map[string]int{
	StageDownloadCompleted: 0,
	StageTappedStart:       1,
	StageSelectedLevel:     2,
	StagePuzzleCompleted:   3,
	StageLevelCompleted:    4,
}

// FunnelStageRank maps a furthest_event name to its rank, or
// UnknownStageRank when the name is absent or not a known stage.
func FunnelStageRank(furthestEvent string) int {
	rank, exists := funnelStageRanks[furthestEvent]
	if !exists {
		return UnknownStageRank
	}
	return rank
}

// ProgressKey is the comparison key for "most progress", compared field by
// field in declaration order. MaxUserLevel is only meaningful once a user
// has completed a level, so it is zeroed for every lower stage and can
// never promote a row that sits lower in the funnel.
type ProgressKey struct {
	LevelCompleted bool
	MaxUserLevel   int64
	StageRank      int
}

// ProgressKeyForRecord builds the comparison key for one funnel record.
func ProgressKeyForRecord(record UserFunnelRecord) ProgressKey {
	key := ProgressKey{StageRank: FunnelStageRank(record.FurthestEvent)}
	if record.FurthestEvent == StageLevelCompleted {
		key.LevelCompleted = true
		key.MaxUserLevel = record.MaxUserLevel
	}
	return key
}

// MoreProgressThan reports whether key ranks strictly above other. Equal
// keys return false on both orderings, which lets callers keep the
// first-encountered row on ties.
func (key ProgressKey) MoreProgressThan(other ProgressKey) bool {
	if key.LevelCompleted != other.LevelCompleted {
		return key.LevelCompleted
	}
	if key.MaxUserLevel != other.MaxUserLevel {
		return key.MaxUserLevel > other.MaxUserLevel
	}
	return key.StageRank > other.StageRank
}
