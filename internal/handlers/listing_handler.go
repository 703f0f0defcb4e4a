package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
	"bunkmate/internal/services"
)

type ListingHandler struct {
	Service *services.ListingService
	Submit  *services.SubmitService
}

// CreateListing turns the caller's draft into a published listing. Validation
// problems come back per section so the wizard can jump to the broken step.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listing, err := h.Submit.CreateFromDraft(r.Context(), userID)
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(listing); err != nil {
		log.Printf("Failed to encode listing: %v", err)
	}
}

// SaveListing republishes a listing from a draft loaded for editing.
func (h *ListingHandler) SaveListing(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listing, err := h.Submit.UpdateFromDraft(r.Context(), userID)
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(listing); err != nil {
		log.Printf("Failed to encode listing: %v", err)
	}
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		if encErr := json.NewEncoder(w).Encode(map[string]interface{}{"errors": verrs}); encErr != nil {
			log.Printf("Failed to encode validation errors: %v", encErr)
		}
	case errors.Is(err, models.ErrNotListingOwner):
		http.Error(w, "You do not own this listing", http.StatusForbidden)
	case errors.Is(err, repositories.ErrListingNotFound):
		http.Error(w, "Listing not found", http.StatusNotFound)
	case errors.Is(err, models.ErrPhotoUploadFailed):
		http.Error(w, "Photo upload failed, please try again", http.StatusBadGateway)
	case errors.Is(err, models.ErrGeocodeFailed):
		http.Error(w, "Could not locate that address", http.StatusBadRequest)
	case errors.Is(err, models.ErrRouteFailed):
		http.Error(w, "Could not measure distance to campus", http.StatusBadGateway)
	default:
		log.Printf("Submit failed: %v", err)
		http.Error(w, "Failed to publish listing", http.StatusInternalServerError)
	}
}

func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get(":id")
	if idStr == "" {
		http.Error(w, "Missing listing ID", http.StatusBadRequest)
		return
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	// userID may be zero for anonymous browsing; liked is simply false then.
	userID := contextUserID(r)

	listing, err := h.Service.GetListingByID(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to get listing %d: %v", id, err)
		http.Error(w, "Failed to get listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(listing); err != nil {
		log.Printf("Failed to encode listing: %v", err)
	}
}

// GetListings serves the browse feed with the filter bar's query params.
func (h *ListingHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)

	filter := models.ListingFilterRequest{
		PriceFrom:   parseFloatParam(r, "price_from"),
		PriceTo:     parseFloatParam(r, "price_to"),
		MaxMiles:    parseFloatParam(r, "max_miles"),
		StartAfter:  parseTimeParam(r, "start_after"),
		EndBefore:   parseTimeParam(r, "end_before"),
	}
	if v, ok := parseIntParam(r, "min_beds"); ok {
		filter.MinBeds = v
	}
	if v, ok := parseIntParam(r, "min_baths"); ok {
		filter.MinBaths = v
	}
	if v, ok := parseIntParam(r, "sort"); ok {
		filter.SortOption = v
	}
	if v, ok := parseIntParam(r, "page"); ok {
		filter.Page = v
	}
	if v, ok := parseIntParam(r, "limit"); ok {
		filter.Limit = v
	}

	resp, err := h.Service.GetFilteredListings(r.Context(), filter, userID)
	if err != nil {
		log.Printf("Failed to get listings: %v", err)
		http.Error(w, "Failed to get listings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode listings: %v", err)
	}
}

// GetMyListings returns the caller's own listings, archived ones included.
func (h *ListingHandler) GetMyListings(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listings, err := h.Service.GetListingsByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to get listings for user %d: %v", userID, err)
		http.Error(w, "Failed to get listings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(listings); err != nil {
		log.Printf("Failed to encode listings: %v", err)
	}
}

func (h *ListingHandler) ArchiveListing(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

func (h *ListingHandler) UnarchiveListing(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *ListingHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.ArchiveListing(r.Context(), userID, id, archived); err != nil {
		switch {
		case errors.Is(err, repositories.ErrListingNotFound):
			http.Error(w, "Listing not found", http.StatusNotFound)
		case errors.Is(err, models.ErrNotListingOwner):
			http.Error(w, "You do not own this listing", http.StatusForbidden)
		default:
			log.Printf("Failed to archive listing %d: %v", id, err)
			http.Error(w, "Failed to archive listing", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteListing(r.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrListingNotFound):
			http.Error(w, "Listing not found", http.StatusNotFound)
		case errors.Is(err, models.ErrNotListingOwner):
			http.Error(w, "You do not own this listing", http.StatusForbidden)
		default:
			log.Printf("Failed to delete listing %d: %v", id, err)
			http.Error(w, "Failed to delete listing", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
