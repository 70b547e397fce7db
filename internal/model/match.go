package model

import "time"

// RankEntry is one player's finishing record. Entries are appended in finish
// order; survival rank is the reverse of that order.
type RankEntry struct {
	ConnID   ConnID `json:"-"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// MatchRecord is a lightweight summary of a completed game, kept in the
// match-history store.
type MatchRecord struct {
	Seed       Seed        `json:"seed"`
	Rankings   []RankEntry `json:"rankings"`
	FinishedAt time.Time   `json:"finished_at"`
}
