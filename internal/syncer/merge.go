package syncer

import "github.com/offlinekit/jobsync/internal/models"

// mergeStats captures what a bulk merge did, for the sync-run log line.
type mergeStats struct {
	Added     int // ids not cached before
	Replaced  int // cached entries overwritten wholesale
	Preserved int // detailed entries whose detail fields were kept
}

// mergeRecord applies the non-destructive merge rule: an incoming summary
// record never downgrades an existing detailed one. When the cached entry is
// detailed and the incoming record is not, only the summary fields are taken
// from the incoming record; otherwise the incoming record wins wholesale.
func mergeRecord(existing models.JobRecord, exists bool, incoming models.JobRecord) models.JobRecord {
	if !exists {
		return incoming
	}

	if existing.Detailed() && !incoming.Detailed() {
		merged := incoming
		merged.Description = existing.Description
		merged.Requirements = existing.Requirements
		merged.Benefits = existing.Benefits
		if merged.CreatedAt.IsZero() {
			merged.CreatedAt = existing.CreatedAt
		}
		return merged
	}

	if incoming.CreatedAt.IsZero() {
		incoming.CreatedAt = existing.CreatedAt
	}
	return incoming
}

// mergeBatch merges incoming records into cache in place and returns the
// merged records in incoming order, ready for a single persistent write.
// Caller holds the cache lock.
func mergeBatch(cache map[string]models.JobRecord, incoming []models.JobRecord) ([]models.JobRecord, mergeStats) {
	var stats mergeStats
	batch := make([]models.JobRecord, 0, len(incoming))

	for _, record := range incoming {
		if record.ID == "" {
			continue
		}
		existing, exists := cache[record.ID]
		merged := mergeRecord(existing, exists, record)

		switch {
		case !exists:
			stats.Added++
		case existing.Detailed() && !record.Detailed():
			stats.Preserved++
		default:
			stats.Replaced++
		}

		cache[record.ID] = merged
		batch = append(batch, merged)
	}

	return batch, stats
}
