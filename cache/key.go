package cache

import (
	"errors"
	"fmt"
)

// Key identifies one cached value of a daily refresh cycle. The snapshot
// date scopes every key, so a new refresh day never reads stale entries.
type Key struct {
	// Prefix - Helps better grouping and searching
	// i.e dashboard:snapshot
	Prefix string
	// SnapshotDate - The refresh day this value belongs to, YYYY-MM-DD.
	SnapshotDate string
	// Suffix - optional
	Suffix string
}

var (
	ErrorInvalidPrefix       = errors.New("invalid key prefix")
	ErrorInvalidSnapshotDate = errors.New("invalid key snapshot date")
	ErrorInvalidKey          = errors.New("invalid redis cache key")
)

func NewKey(prefix, snapshotDate, suffix string) (*Key, error) {
	if prefix == "" {
		return nil, ErrorInvalidPrefix
	}
	if snapshotDate == "" {
		return nil, ErrorInvalidSnapshotDate
	}
	return &Key{Prefix: prefix, SnapshotDate: snapshotDate, Suffix: suffix}, nil
}

func (key *Key) Key() (string, error) {
	if key.Prefix == "" {
		return "", ErrorInvalidPrefix
	}
	if key.SnapshotDate == "" {
		return "", ErrorInvalidSnapshotDate
	}

	// key: i.e, dashboard:snapshot:2024-11-08
	cacheKey := fmt.Sprintf("%s:%s", key.Prefix, key.SnapshotDate)
	if key.Suffix != "" {
		cacheKey = fmt.Sprintf("%s:%s", cacheKey, key.Suffix)
	}
	return cacheKey, nil
}
