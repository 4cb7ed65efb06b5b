package domain

import "time"

// CacheEntry is the memoized result of one named upstream fetch.
// There is at most one entry per key; a refresh replaces the whole row.
type CacheEntry struct {
	Key       string
	Value     []byte
	FetchedAt time.Time
}

// Age returns how long ago the entry was fetched.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
