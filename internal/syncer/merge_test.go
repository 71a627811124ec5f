package syncer

import (
	"testing"

	"github.com/offlinekit/jobsync/internal/models"
)

func TestMergeRecordKeepsDetailFields(t *testing.T) {
	existing := models.JobRecord{
		ID:           "42",
		Title:        "Old Title",
		Description:  "Long description",
		Requirements: models.TextList{"Go"},
		Benefits:     models.TextList{"Remote budget"},
	}
	incoming := models.JobRecord{
		ID:      "42",
		Title:   "New Title",
		Company: "Acme",
	}

	merged := mergeRecord(existing, true, incoming)

	if merged.Title != "New Title" {
		t.Fatalf("Title = %q, want %q", merged.Title, "New Title")
	}
	if merged.Company != "Acme" {
		t.Fatalf("Company = %q, want %q", merged.Company, "Acme")
	}
	if merged.Description != "Long description" {
		t.Fatalf("Description = %q, want detail fields preserved", merged.Description)
	}
	if len(merged.Requirements) != 1 || merged.Requirements[0] != "Go" {
		t.Fatalf("Requirements = %#v, want preserved", merged.Requirements)
	}
	if len(merged.Benefits) != 1 || merged.Benefits[0] != "Remote budget" {
		t.Fatalf("Benefits = %#v, want preserved", merged.Benefits)
	}
}

func TestMergeRecordReplacesWholesaleWhenIncomingDetailed(t *testing.T) {
	existing := models.JobRecord{ID: "42", Description: "Old description"}
	incoming := models.JobRecord{ID: "42", Title: "New", Description: "New description"}

	merged := mergeRecord(existing, true, incoming)
	if merged.Description != "New description" {
		t.Fatalf("Description = %q, want wholesale replacement", merged.Description)
	}
}

func TestMergeRecordReplacesSummaryOverSummary(t *testing.T) {
	existing := models.JobRecord{ID: "42", Title: "Old", Location: "Berlin"}
	incoming := models.JobRecord{ID: "42", Title: "New"}

	merged := mergeRecord(existing, true, incoming)
	if merged.Title != "New" || merged.Location != "" {
		t.Fatalf("expected wholesale replacement, got %+v", merged)
	}
}

func TestMergeBatch(t *testing.T) {
	cache := map[string]models.JobRecord{
		"1": {ID: "1", Title: "Cached", Description: "Detail"},
		"2": {ID: "2", Title: "Summary only"},
	}
	incoming := []models.JobRecord{
		{ID: "1", Title: "Fresh"},
		{ID: "2", Title: "Fresher"},
		{ID: "3", Title: "Brand new"},
		{Title: "No id, skipped"},
	}

	batch, stats := mergeBatch(cache, incoming)

	if len(batch) != 3 {
		t.Fatalf("expected batch of 3, got %d", len(batch))
	}
	if stats.Preserved != 1 || stats.Replaced != 1 || stats.Added != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if cache["1"].Description != "Detail" {
		t.Fatalf("detailed cache entry lost its description")
	}
	if cache["1"].Title != "Fresh" {
		t.Fatalf("summary fields not updated: %q", cache["1"].Title)
	}
	if _, ok := cache["3"]; !ok {
		t.Fatalf("new record not added to cache")
	}
}
