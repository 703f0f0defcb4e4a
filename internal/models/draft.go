package models

// DefaultAffiliation is what a freshly reset draft carries. The publishable
// values are "student", "alum" and "none"; the profile step overwrites this.
const DefaultAffiliation = "rice"

// EditSlotOffset shifts caption slots that address already-persisted photos
// so one map can describe both new uploads (0..N-1) and existing photos
// (index+100) without collision.
const EditSlotOffset = 100

// ListingDraft is the in-progress listing composed across the six wizard
// sections. It lives in the draft store until submitted or reset and is
// never persisted itself.
type ListingDraft struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	BedCount      int            `json:"bed_count"`
	BathCount     int            `json:"bath_count"`
	Price         float64        `json:"price"`
	PriceNotes    string         `json:"price_notes"`
	Address       DraftAddress   `json:"address"`
	LocationNotes string         `json:"location_notes"`
	StartDate     string         `json:"start_date"` // RFC3339
	EndDate       string         `json:"end_date"`   // RFC3339
	DurationNotes string         `json:"duration_notes"`
	Photos        []string       `json:"photos"`     // client-side names, paired with RawPhotos
	RawPhotos     [][]byte       `json:"raw_photos"` // blobs to persist, index-for-index with Photos
	PhotoLabels   map[int]string `json:"photo_labels"`
	ImagePaths    []string       `json:"image_paths"`         // already-persisted keys (edit mode)
	RemovedPaths  []string       `json:"removed_image_paths"` // keys to delete on save (edit mode)
	Affiliation   string         `json:"affiliation"`
	Phone         string         `json:"phone"`
	EditListingID int            `json:"edit_listing_id,omitempty"`
}

type DraftAddress struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// DefaultDraft returns the documented reset state.
func DefaultDraft() ListingDraft {
	return ListingDraft{
		Photos:       []string{},
		RawPhotos:    [][]byte{},
		PhotoLabels:  map[int]string{},
		ImagePaths:   []string{},
		RemovedPaths: []string{},
		Affiliation:  DefaultAffiliation,
	}
}

// DraftUpdate carries a shallow patch for a draft. Nil fields are left
// untouched by the merge.
type DraftUpdate struct {
	Title         *string        `json:"title,omitempty"`
	Description   *string        `json:"description,omitempty"`
	BedCount      *int           `json:"bed_count,omitempty"`
	BathCount     *int           `json:"bath_count,omitempty"`
	Price         *float64       `json:"price,omitempty"`
	PriceNotes    *string        `json:"price_notes,omitempty"`
	Address       *DraftAddress  `json:"address,omitempty"`
	LocationNotes *string        `json:"location_notes,omitempty"`
	StartDate     *string        `json:"start_date,omitempty"`
	EndDate       *string        `json:"end_date,omitempty"`
	DurationNotes *string        `json:"duration_notes,omitempty"`
	Photos        []string       `json:"photos,omitempty"`
	RawPhotos     [][]byte       `json:"raw_photos,omitempty"`
	PhotoLabels   map[int]string `json:"photo_labels,omitempty"`
	ImagePaths    []string       `json:"image_paths,omitempty"`
	RemovedPaths  []string       `json:"removed_image_paths,omitempty"`
	Affiliation   *string        `json:"affiliation,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	EditListingID *int           `json:"edit_listing_id,omitempty"`
}

// Apply merges the set fields of u into d.
func (u DraftUpdate) Apply(d *ListingDraft) {
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.BedCount != nil {
		d.BedCount = *u.BedCount
	}
	if u.BathCount != nil {
		d.BathCount = *u.BathCount
	}
	if u.Price != nil {
		d.Price = *u.Price
	}
	if u.PriceNotes != nil {
		d.PriceNotes = *u.PriceNotes
	}
	if u.Address != nil {
		d.Address = *u.Address
	}
	if u.LocationNotes != nil {
		d.LocationNotes = *u.LocationNotes
	}
	if u.StartDate != nil {
		d.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		d.EndDate = *u.EndDate
	}
	if u.DurationNotes != nil {
		d.DurationNotes = *u.DurationNotes
	}
	if u.Photos != nil {
		d.Photos = u.Photos
	}
	if u.RawPhotos != nil {
		d.RawPhotos = u.RawPhotos
	}
	if u.PhotoLabels != nil {
		d.PhotoLabels = u.PhotoLabels
	}
	if u.ImagePaths != nil {
		d.ImagePaths = u.ImagePaths
	}
	if u.RemovedPaths != nil {
		d.RemovedPaths = u.RemovedPaths
	}
	if u.Affiliation != nil {
		d.Affiliation = *u.Affiliation
	}
	if u.Phone != nil {
		d.Phone = *u.Phone
	}
	if u.EditListingID != nil {
		d.EditListingID = *u.EditListingID
	}
}

// SectionStates reports per-section completion, derived on every read.
type SectionStates struct {
	Title    bool `json:"title"`
	Pricing  bool `json:"pricing"`
	Location bool `json:"location"`
	Duration bool `json:"duration"`
	Photos   bool `json:"photos"`
	Profile  bool `json:"profile"`
	Ready    bool `json:"ready"`
}
