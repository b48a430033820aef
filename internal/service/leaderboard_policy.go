package service

import (
	"sort"

	"github.com/wallet-roaster/internal/models"
)

// rankEntries orders entries by rugPulls descending, wallet ascending on ties
func rankEntries(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RugPulls != entries[j].RugPulls {
			return entries[i].RugPulls > entries[j].RugPulls
		}
		return entries[i].Wallet < entries[j].Wallet
	})
}

// upsertEntry replaces the entry with the same wallet or appends a new one.
// The input slice is not modified.
func upsertEntry(entries []models.LeaderboardEntry, entry models.LeaderboardEntry) []models.LeaderboardEntry {
	out := make([]models.LeaderboardEntry, 0, len(entries)+1)
	replaced := false
	for _, existing := range entries {
		if existing.Wallet == entry.Wallet {
			out = append(out, entry)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, entry)
	}
	return out
}

// trimEntries keeps the first limit entries
func trimEntries(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	if limit >= 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// topEntry returns the entry with the highest rugPulls; the earliest one wins ties
func topEntry(entries []models.LeaderboardEntry) (models.LeaderboardEntry, bool) {
	if len(entries) == 0 {
		return models.LeaderboardEntry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.RugPulls > best.RugPulls {
			best = e
		}
	}
	return best, true
}

// applySubmission returns the bucket after one submission: counter+1,
// upsert by wallet, rank, trim to retainedCap.
func applySubmission(bucket models.Bucket, entry models.LeaderboardEntry, retainedCap int) models.Bucket {
	data := upsertEntry(bucket.Data, entry)
	rankEntries(data)

	return models.Bucket{
		HourID:      bucket.HourID,
		Data:        trimEntries(data, retainedCap),
		GlobalCount: bucket.GlobalCount + 1,
	}
}

// visibleSlice copies the first limit entries of an already ranked list
func visibleSlice(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	top := trimEntries(entries, limit)
	out := make([]models.LeaderboardEntry, len(top))
	copy(out, top)
	return out
}
