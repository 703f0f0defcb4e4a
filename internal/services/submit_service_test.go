package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bunkmate/internal/geo"
	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
)

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	removed  []string
	failOn   func(data []byte) bool
	delay    func(data []byte) time.Duration
	removeErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(key string, data []byte) (string, error) {
	if f.delay != nil {
		time.Sleep(f.delay(data))
	}
	if f.failOn != nil && f.failOn(data) {
		return "", errors.New("storage unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return key, nil
}

func (f *fakeStorage) Remove(keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, keys...)
	return f.removeErr
}

type fakeGeocoder struct {
	point geo.Point
	err   error
	calls int
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (geo.Point, error) {
	f.calls++
	return f.point, f.err
}

type fakeRouter struct {
	meters float64
	err    error
}

func (f *fakeRouter) DrivingDistance(ctx context.Context, from, to geo.Point) (float64, float64, error) {
	return f.meters, f.meters / 10, f.err
}

type fakeListings struct {
	created   []models.Listing
	updated   []models.Listing
	existing  map[int]models.Listing
	createErr error
	updateErr error
	nextID    int
}

func (f *fakeListings) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	if f.createErr != nil {
		return models.Listing{}, f.createErr
	}
	f.nextID++
	listing.ID = f.nextID
	f.created = append(f.created, listing)
	return listing, nil
}

func (f *fakeListings) GetListingByID(ctx context.Context, id int, userID int) (models.Listing, error) {
	listing, ok := f.existing[id]
	if !ok {
		return models.Listing{}, repositories.ErrListingNotFound
	}
	return listing, nil
}

func (f *fakeListings) UpdateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	if f.updateErr != nil {
		return models.Listing{}, f.updateErr
	}
	f.updated = append(f.updated, listing)
	return listing, nil
}

type fakeCaptions struct {
	inserted  map[string]string
	deleted   []string
	byPath    map[string]string
	insertErr error
}

func (f *fakeCaptions) InsertCaptions(ctx context.Context, userID int, captions map[string]string) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.inserted == nil {
		f.inserted = map[string]string{}
	}
	for k, v := range captions {
		f.inserted[k] = v
	}
	return nil
}

func (f *fakeCaptions) DeleteByPaths(ctx context.Context, userID int, paths []string) error {
	f.deleted = append(f.deleted, paths...)
	return nil
}

func (f *fakeCaptions) GetByPaths(ctx context.Context, userID int, paths []string) (map[string]string, error) {
	if f.byPath == nil {
		return map[string]string{}, nil
	}
	return f.byPath, nil
}

func newSubmitService(store repositories.DraftStore, storage *fakeStorage, listings *fakeListings, captions *fakeCaptions) *SubmitService {
	return &SubmitService{
		Drafts:   store,
		Listings: listings,
		Captions: captions,
		Storage:  storage,
		Geocoder: &fakeGeocoder{point: geo.Point{Lat: 29.7, Lon: -95.38}},
		Router:   &fakeRouter{meters: 4023.36}, // 2.5 miles
	}
}

func seedDraft(t *testing.T, store repositories.DraftStore, userID int, draft models.ListingDraft) {
	t.Helper()
	if err := store.Replace(context.Background(), userID, draft); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
}

func TestCreateFromDraftSuccess(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	storage := newFakeStorage()
	listings := &fakeListings{}
	captions := &fakeCaptions{}
	svc := newSubmitService(store, storage, listings, captions)

	draft := completeDraft()
	draft.PhotoLabels = map[int]string{0: "front porch", 2: "kitchen"}
	seedDraft(t, store, 7, draft)

	created, err := svc.CreateFromDraft(context.Background(), 7)
	if err != nil {
		t.Fatalf("CreateFromDraft: %v", err)
	}

	if len(listings.created) != 1 {
		t.Fatalf("expected exactly one listing row, got %d", len(listings.created))
	}
	if len(created.ImagePaths) != 5 {
		t.Fatalf("expected 5 image paths, got %d", len(created.ImagePaths))
	}
	if created.DistanceMiles != 2.5 {
		t.Fatalf("expected distance 2.5 miles, got %v", created.DistanceMiles)
	}
	if created.UserID != 7 {
		t.Fatalf("expected owner 7, got %d", created.UserID)
	}

	if len(captions.inserted) != 2 {
		t.Fatalf("expected 2 captions, got %v", captions.inserted)
	}
	if captions.inserted[created.ImagePaths[0]] != "front porch" {
		t.Fatalf("caption for slot 0 mismatched: %v", captions.inserted)
	}
	if captions.inserted[created.ImagePaths[2]] != "kitchen" {
		t.Fatalf("caption for slot 2 mismatched: %v", captions.inserted)
	}

	// Draft must be back to the reset state.
	after, err := store.Read(context.Background(), 7)
	if err != nil {
		t.Fatalf("read draft: %v", err)
	}
	if after.Title != "" || len(after.RawPhotos) != 0 {
		t.Fatalf("draft was not reset after submit: %+v", after)
	}
	if after.Affiliation != models.DefaultAffiliation {
		t.Fatalf("reset draft affiliation = %q", after.Affiliation)
	}
}

// Keys must line up with the input photo order even when uploads finish
// out of order.
func TestCreateFromDraftPreservesUploadOrder(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	storage := newFakeStorage()
	// First photo finishes last, last finishes first.
	storage.delay = func(data []byte) time.Duration {
		return time.Duration(50-10*int(data[0])) * time.Millisecond
	}
	listings := &fakeListings{}
	captions := &fakeCaptions{}
	svc := newSubmitService(store, storage, listings, captions)

	draft := completeDraft()
	seedDraft(t, store, 3, draft)

	created, err := svc.CreateFromDraft(context.Background(), 3)
	if err != nil {
		t.Fatalf("CreateFromDraft: %v", err)
	}

	for i, key := range created.ImagePaths {
		if !bytes.Equal(storage.objects[key], draft.RawPhotos[i]) {
			t.Fatalf("image path %d does not point at photo %d", i, i)
		}
	}
}

func TestCreateFromDraftPartialUploadFailure(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	storage := newFakeStorage()
	storage.failOn = func(data []byte) bool { return data[0] == 3 }
	listings := &fakeListings{}
	captions := &fakeCaptions{}
	svc := newSubmitService(store, storage, listings, captions)

	draft := completeDraft()
	seedDraft(t, store, 5, draft)

	_, err := svc.CreateFromDraft(context.Background(), 5)
	if !errors.Is(err, models.ErrPhotoUploadFailed) {
		t.Fatalf("expected ErrPhotoUploadFailed, got %v", err)
	}

	if len(listings.created) != 0 {
		t.Fatalf("no listing row may be written after a failed upload")
	}
	// The draft survives so the user can retry.
	after, _ := store.Read(context.Background(), 5)
	if after.Title != draft.Title {
		t.Fatalf("draft must be intact after a failed upload")
	}
}

func TestCreateFromDraftGeocodeFailureCompensates(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	storage := newFakeStorage()
	listings := &fakeListings{}
	captions := &fakeCaptions{}
	svc := newSubmitService(store, storage, listings, captions)
	svc.Geocoder = &fakeGeocoder{err: fmt.Errorf("no results")}

	draft := completeDraft()
	seedDraft(t, store, 9, draft)

	_, err := svc.CreateFromDraft(context.Background(), 9)
	if !errors.Is(err, models.ErrGeocodeFailed) {
		t.Fatalf("expected ErrGeocodeFailed, got %v", err)
	}

	if len(storage.removed) != len(draft.RawPhotos) {
		t.Fatalf("expected %d uploaded photos removed, got %d", len(draft.RawPhotos), len(storage.removed))
	}
	if len(captions.deleted) != len(draft.RawPhotos) {
		t.Fatalf("expected caption cleanup for uploaded keys, got %v", captions.deleted)
	}
	if len(listings.created) != 0 {
		t.Fatalf("no listing row may be written after a geocode failure")
	}
}

func TestCreateFromDraftValidationFailureKeepsUploads(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	storage := newFakeStorage()
	listings := &fakeListings{}
	captions := &fakeCaptions{}
	svc := newSubmitService(store, storage, listings, captions)

	draft := completeDraft()
	draft.Price = 0
	seedDraft(t, store, 11, draft)

	_, err := svc.CreateFromDraft(context.Background(), 11)
	var verrs models.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(verrs[SectionPricing]) == 0 {
		t.Fatalf("expected a pricing failure, got %v", verrs)
	}

	// Validation failures do not trigger photo cleanup.
	if len(storage.removed) != 0 {
		t.Fatalf("uploads must not be removed on a validation failure")
	}
	if len(listings.created) != 0 {
		t.Fatalf("no listing row may be written on a validation failure")
	}
}

func TestCreateFromDraftInsertFailureCompensates(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	storage := newFakeStorage()
	listings := &fakeListings{createErr: errors.New("db down")}
	captions := &fakeCaptions{}
	svc := newSubmitService(store, storage, listings, captions)

	draft := completeDraft()
	seedDraft(t, store, 13, draft)

	_, err := svc.CreateFromDraft(context.Background(), 13)
	if err == nil {
		t.Fatalf("expected insert error")
	}
	if len(storage.removed) != len(draft.RawPhotos) {
		t.Fatalf("expected compensation after insert failure, removed %d", len(storage.removed))
	}
}

func TestUpdateFromDraftRemapsCaptions(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	storage := newFakeStorage()
	existing := models.Listing{
		ID:            42,
		UserID:        7,
		DistanceMiles: 1.3,
		ImagePaths:    []string{"p0", "p1", "p2"},
		CreatedAt:     time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	listings := &fakeListings{existing: map[int]models.Listing{42: existing}}
	captions := &fakeCaptions{}
	svc := newSubmitService(store, storage, listings, captions)

	draft := completeDraft()
	draft.EditListingID = 42
	draft.ImagePaths = []string{"p0", "p1", "p2"}
	draft.RemovedPaths = []string{"p1"}
	draft.Photos = []string{"new.jpg"}
	draft.RawPhotos = [][]byte{{9}}
	draft.PhotoLabels = map[int]string{
		100: "living room",
		101: "old bathroom",
		102: "backyard",
		0:   "new bathroom",
	}
	seedDraft(t, store, 7, draft)

	updated, err := svc.UpdateFromDraft(context.Background(), 7)
	if err != nil {
		t.Fatalf("UpdateFromDraft: %v", err)
	}

	if len(listings.updated) != 1 {
		t.Fatalf("expected one row update, got %d", len(listings.updated))
	}
	if len(updated.ImagePaths) != 3 {
		t.Fatalf("expected retained + new = 3 paths, got %v", updated.ImagePaths)
	}
	if updated.ImagePaths[0] != "p0" || updated.ImagePaths[1] != "p2" {
		t.Fatalf("retained paths out of order: %v", updated.ImagePaths)
	}
	newKey := updated.ImagePaths[2]

	// Address changes never recompute distance on the edit path.
	if updated.DistanceMiles != 1.3 {
		t.Fatalf("distance must be preserved on edit, got %v", updated.DistanceMiles)
	}
	if updated.ID != 42 {
		t.Fatalf("row identity lost: %d", updated.ID)
	}
	if !updated.CreatedAt.Equal(existing.CreatedAt) {
		t.Fatalf("created_at must survive an edit")
	}

	want := map[string]string{
		"p0":   "living room",
		"p2":   "backyard",
		newKey: "new bathroom",
	}
	if len(captions.inserted) != len(want) {
		t.Fatalf("caption set mismatch: got %v want %v", captions.inserted, want)
	}
	for k, v := range want {
		if captions.inserted[k] != v {
			t.Fatalf("caption %q = %q, want %q", k, captions.inserted[k], v)
		}
	}

	// Old caption rows are cleared for every known path, removed included.
	if len(captions.deleted) != 3 {
		t.Fatalf("expected caption cleanup for all 3 known paths, got %v", captions.deleted)
	}

	// The removed photo leaves storage only after the row update, and it did.
	if len(storage.removed) != 1 || storage.removed[0] != "p1" {
		t.Fatalf("expected p1 removed from storage, got %v", storage.removed)
	}
}

func TestUpdateFromDraftWithoutEditTarget(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	svc := newSubmitService(store, newFakeStorage(), &fakeListings{}, &fakeCaptions{})

	draft := completeDraft()
	seedDraft(t, store, 7, draft)

	_, err := svc.UpdateFromDraft(context.Background(), 7)
	if !errors.Is(err, repositories.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound without an edit target, got %v", err)
	}
}

func TestUpdateFromDraftRejectsNonOwner(t *testing.T) {
	store := repositories.NewMemoryDraftStore()
	listings := &fakeListings{existing: map[int]models.Listing{42: {ID: 42, UserID: 99}}}
	svc := newSubmitService(store, newFakeStorage(), listings, &fakeCaptions{})

	draft := completeDraft()
	draft.EditListingID = 42
	seedDraft(t, store, 7, draft)

	_, err := svc.UpdateFromDraft(context.Background(), 7)
	if !errors.Is(err, models.ErrNotListingOwner) {
		t.Fatalf("expected ErrNotListingOwner, got %v", err)
	}
	if len(listings.updated) != 0 {
		t.Fatalf("no update may happen for a non-owner")
	}
}

func TestMeasureDistanceRounding(t *testing.T) {
	svc := &SubmitService{
		Geocoder: &fakeGeocoder{point: geo.Point{Lat: 29.7, Lon: -95.38}},
		Router:   &fakeRouter{meters: 2500},
	}
	// 2500m = 1.5534 miles, rounds to 1.6.
	miles, err := svc.measureDistance(context.Background(), "somewhere")
	if err != nil {
		t.Fatalf("measureDistance: %v", err)
	}
	if miles != 1.6 {
		t.Fatalf("expected 1.6 miles, got %v", miles)
	}
}
