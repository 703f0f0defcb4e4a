package services

import (
	"strings"
	"testing"

	"bunkmate/internal/models"
)

func completeDraft() models.ListingDraft {
	d := models.DefaultDraft()
	d.Title = "Sunny room near campus"
	d.Description = strings.Repeat("Bright furnished room in a quiet duplex, short bike ride to class. ", 2)
	d.BedCount = 2
	d.BathCount = 1
	d.Price = 850
	d.Address = models.DraftAddress{Label: "2301 Bolsover St, Houston, TX"}
	d.StartDate = "2026-06-01T00:00:00Z"
	d.EndDate = "2026-08-15T00:00:00Z"
	d.Photos = []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"}
	d.RawPhotos = [][]byte{{1}, {2}, {3}, {4}, {5}}
	d.Affiliation = "student"
	d.Phone = "7135551234"
	return d
}

func TestDraftSectionsComplete(t *testing.T) {
	d := completeDraft()
	s := DraftSections(d, false)
	if !s.Title || !s.Pricing || !s.Location || !s.Duration || !s.Photos || !s.Profile {
		t.Fatalf("expected every section complete, got %+v", s)
	}
	if !s.Ready {
		t.Fatalf("expected ready with all sections complete")
	}
}

func TestDescriptionBoundaries(t *testing.T) {
	d := completeDraft()

	d.Description = strings.Repeat("x", 99)
	if SectionComplete(d, SectionTitle, false) {
		t.Fatalf("99-char description should fail the title section")
	}

	d.Description = strings.Repeat("x", 100)
	if !SectionComplete(d, SectionTitle, false) {
		t.Fatalf("100-char description should pass the title section")
	}

	d.Description = strings.Repeat("x", 500)
	if !SectionComplete(d, SectionTitle, false) {
		t.Fatalf("500-char description should pass the title section")
	}

	d.Description = strings.Repeat("x", 501)
	if SectionComplete(d, SectionTitle, false) {
		t.Fatalf("501-char description should fail the title section")
	}
}

// A broken field must only take down its own section.
func TestSectionIsolation(t *testing.T) {
	d := completeDraft()
	d.Price = 0

	s := DraftSections(d, false)
	if s.Pricing {
		t.Fatalf("pricing should be incomplete with zero price")
	}
	if !s.Title || !s.Location || !s.Duration || !s.Photos || !s.Profile {
		t.Fatalf("unrelated sections went incomplete: %+v", s)
	}
	if s.Ready {
		t.Fatalf("ready must be false with an incomplete section")
	}
}

func TestPhotoFloor(t *testing.T) {
	d := completeDraft()
	d.Photos = d.Photos[:4]
	d.RawPhotos = d.RawPhotos[:4]

	if SectionComplete(d, SectionPhotos, false) {
		t.Fatalf("4 photos should fail the create gate")
	}

	// Persisted photos count toward the floor.
	d.ImagePaths = []string{"listings/1/old.jpg"}
	if !SectionComplete(d, SectionPhotos, false) {
		t.Fatalf("4 new + 1 persisted photos should pass the create gate")
	}
}

func TestEditModeRelaxesPhotoFloor(t *testing.T) {
	d := completeDraft()
	d.Photos = nil
	d.RawPhotos = nil
	d.EditListingID = 42

	if !SectionComplete(d, SectionPhotos, true) {
		t.Fatalf("photo floor must not apply when editing")
	}
	if SectionComplete(d, SectionPhotos, false) {
		t.Fatalf("photo floor must still apply when creating")
	}
}

func TestInvalidDates(t *testing.T) {
	d := completeDraft()
	d.StartDate = "June 1st"
	if SectionComplete(d, SectionDuration, false) {
		t.Fatalf("non-RFC3339 start date should fail the duration section")
	}
	d.StartDate = ""
	if SectionComplete(d, SectionDuration, false) {
		t.Fatalf("empty start date should fail the duration section")
	}
}

func TestValidateDraftCollectsAllFailures(t *testing.T) {
	d := models.DefaultDraft()
	d.Affiliation = ""

	errs := ValidateDraft(d, false)
	if errs == nil {
		t.Fatalf("expected validation errors for an empty draft")
	}
	for _, section := range []string{SectionTitle, SectionPricing, SectionLocation, SectionDuration, SectionPhotos, SectionProfile} {
		if len(errs[section]) == 0 {
			t.Fatalf("expected failures for section %q, got %v", section, errs)
		}
	}
	if _, ok := errs[SectionTitle]["description"]; !ok {
		t.Fatalf("expected a description failure, got %v", errs[SectionTitle])
	}
}

func TestValidateDraftNilOnSuccess(t *testing.T) {
	if errs := ValidateDraft(completeDraft(), false); errs != nil {
		t.Fatalf("expected nil for a complete draft, got %v", errs)
	}
}
