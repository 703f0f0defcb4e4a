package services

import (
	"time"

	"bunkmate/internal/models"
)

// MinListingPhotos is the photo-count floor for publishing a new listing.
// Deliberately not enforced on the edit-save gate.
const MinListingPhotos = 5

// Section names, matching the wizard steps.
const (
	SectionTitle    = "title"
	SectionPricing  = "pricing"
	SectionLocation = "location"
	SectionDuration = "duration"
	SectionPhotos   = "photos"
	SectionProfile  = "profile"
)

// rule is one field-level completeness predicate. Rules are pure; they
// read the draft and never mutate it.
type rule struct {
	Field   string
	Check   func(d models.ListingDraft) bool
	Message string
}

func titleRules() []rule {
	return []rule{
		{"title", func(d models.ListingDraft) bool {
			return len(d.Title) >= 1 && len(d.Title) <= 50
		}, "title must be 1-50 characters"},
		{"description", func(d models.ListingDraft) bool {
			return len(d.Description) >= 100 && len(d.Description) <= 500
		}, "description must be 100-500 characters"},
		{"bed_count", func(d models.ListingDraft) bool {
			return d.BedCount >= 0
		}, "bed count must not be negative"},
		{"bath_count", func(d models.ListingDraft) bool {
			return d.BathCount >= 0
		}, "bath count must not be negative"},
	}
}

func pricingRules() []rule {
	return []rule{
		{"price", func(d models.ListingDraft) bool {
			return d.Price >= 1
		}, "monthly rent is required"},
	}
}

func locationRules() []rule {
	return []rule{
		{"address", func(d models.ListingDraft) bool {
			return d.Address.Label != ""
		}, "address is required"},
	}
}

func durationRules() []rule {
	return []rule{
		{"start_date", func(d models.ListingDraft) bool {
			return parseableDate(d.StartDate)
		}, "start date is required"},
		{"end_date", func(d models.ListingDraft) bool {
			return parseableDate(d.EndDate)
		}, "end date is required"},
	}
}

func photoRules(editing bool) []rule {
	if editing {
		// Edit-save gate intentionally omits the photo floor; create and
		// edit flows diverge here on purpose.
		return nil
	}
	return []rule{
		{"photos", func(d models.ListingDraft) bool {
			return len(d.Photos)+len(d.ImagePaths) >= MinListingPhotos
		}, "at least 5 photos are required"},
	}
}

func profileRules() []rule {
	return []rule{
		{"affiliation", func(d models.ListingDraft) bool {
			return d.Affiliation != ""
		}, "affiliation is required"},
		{"phone", func(d models.ListingDraft) bool {
			return len(d.Phone) >= 10
		}, "phone number must have at least 10 digits"},
	}
}

func parseableDate(v string) bool {
	if v == "" {
		return false
	}
	_, err := time.Parse(time.RFC3339, v)
	return err == nil
}

func sectionRules(editing bool) map[string][]rule {
	return map[string][]rule{
		SectionTitle:    titleRules(),
		SectionPricing:  pricingRules(),
		SectionLocation: locationRules(),
		SectionDuration: durationRules(),
		SectionPhotos:   photoRules(editing),
		SectionProfile:  profileRules(),
	}
}

func allPass(d models.ListingDraft, rules []rule) bool {
	for _, r := range rules {
		if !r.Check(d) {
			return false
		}
	}
	return true
}

// SectionComplete reports whether one section's gate passes.
func SectionComplete(d models.ListingDraft, section string, editing bool) bool {
	return allPass(d, sectionRules(editing)[section])
}

// DraftSections derives the per-section completion states and the aggregate
// submit gate for the given draft.
func DraftSections(d models.ListingDraft, editing bool) models.SectionStates {
	s := models.SectionStates{
		Title:    SectionComplete(d, SectionTitle, editing),
		Pricing:  SectionComplete(d, SectionPricing, editing),
		Location: SectionComplete(d, SectionLocation, editing),
		Duration: SectionComplete(d, SectionDuration, editing),
		Photos:   SectionComplete(d, SectionPhotos, editing),
		Profile:  SectionComplete(d, SectionProfile, editing),
	}
	s.Ready = s.Title && s.Pricing && s.Location && s.Duration && s.Photos && s.Profile
	return s
}

// ValidateDraft re-runs every section's rules and collects failures as a
// structured error set. Used as the orchestrator's defensive re-check,
// independent of the UI gating.
func ValidateDraft(d models.ListingDraft, editing bool) models.ValidationErrors {
	errs := models.ValidationErrors{}
	for section, rules := range sectionRules(editing) {
		for _, r := range rules {
			if !r.Check(d) {
				errs.Add(section, r.Field, r.Message)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
