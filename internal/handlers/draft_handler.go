package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
	"bunkmate/internal/services"
)

type DraftHandler struct {
	Service *services.DraftService
}

// draftView is the draft without its raw photo blobs; clients preview from
// their own copies and never need the bytes back.
type draftView struct {
	models.ListingDraft
	RawPhotos []string              `json:"raw_photos,omitempty"`
	Sections  models.SectionStates  `json:"sections"`
}

func (h *DraftHandler) writeDraft(w http.ResponseWriter, draft models.ListingDraft) {
	view := draftView{ListingDraft: draft, Sections: services.DraftSections(draft, draft.EditListingID != 0)}
	view.ListingDraft.RawPhotos = nil

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		log.Printf("Failed to encode draft: %v", err)
	}
}

func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.Service.GetDraft(r.Context(), contextUserID(r))
	if err != nil {
		http.Error(w, "Failed to read draft", http.StatusInternalServerError)
		return
	}
	h.writeDraft(w, draft)
}

func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var patch models.DraftUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	draft, err := h.Service.UpdateDraft(r.Context(), contextUserID(r), patch)
	if err != nil {
		http.Error(w, "Failed to update draft", http.StatusInternalServerError)
		return
	}
	h.writeDraft(w, draft)
}

func (h *DraftHandler) ResetDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ResetDraft(r.Context(), contextUserID(r)); err != nil {
		http.Error(w, "Failed to reset draft", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) GetSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.Service.Sections(r.Context(), contextUserID(r))
	if err != nil {
		http.Error(w, "Failed to read draft", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sections)
}

// AddPhotos appends uploaded photo blobs to the draft's photo step. Caption
// slots may arrive alongside as a JSON object in the "labels" field; slot
// keys at or above 100 address photos that were already persisted.
func (h *DraftHandler) AddPhotos(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(32 << 20) // 32MB
	if err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	userID := contextUserID(r)
	draft, err := h.Service.GetDraft(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to read draft", http.StatusInternalServerError)
		return
	}

	names := append([]string{}, draft.Photos...)
	raw := append([][]byte{}, draft.RawPhotos...)

	for _, fileHeader := range r.MultipartForm.File["photos"] {
		file, err := fileHeader.Open()
		if err != nil {
			http.Error(w, "Failed to open photo", http.StatusInternalServerError)
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			http.Error(w, "Failed to read photo", http.StatusInternalServerError)
			return
		}

		names = append(names, fileHeader.Filename)
		raw = append(raw, data)
	}

	labels := draft.PhotoLabels
	if rawLabels := r.FormValue("labels"); rawLabels != "" {
		var incoming map[string]string
		if err := json.Unmarshal([]byte(rawLabels), &incoming); err != nil {
			http.Error(w, "Invalid labels payload", http.StatusBadRequest)
			return
		}
		if labels == nil {
			labels = map[int]string{}
		}
		for key, caption := range incoming {
			slot, err := strconv.Atoi(key)
			if err != nil {
				http.Error(w, "Invalid label slot", http.StatusBadRequest)
				return
			}
			labels[slot] = caption
		}
	}

	updated, err := h.Service.UpdateDraft(r.Context(), userID, models.DraftUpdate{
		Photos:      names,
		RawPhotos:   raw,
		PhotoLabels: labels,
	})
	if err != nil {
		http.Error(w, "Failed to update draft", http.StatusInternalServerError)
		return
	}
	h.writeDraft(w, updated)
}

// RemovePhoto drops a photo from the draft by slot. New photos (slot < 100)
// are removed in place; persisted photos are marked for deletion on save.
func (h *DraftHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot int `json:"slot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	userID := contextUserID(r)
	draft, err := h.Service.GetDraft(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to read draft", http.StatusInternalServerError)
		return
	}

	patch := models.DraftUpdate{}
	if req.Slot >= models.EditSlotOffset {
		idx := req.Slot - models.EditSlotOffset
		if idx >= len(draft.ImagePaths) {
			http.Error(w, "No photo at slot", http.StatusBadRequest)
			return
		}
		patch.RemovedPaths = append(append([]string{}, draft.RemovedPaths...), draft.ImagePaths[idx])
	} else {
		if req.Slot < 0 || req.Slot >= len(draft.RawPhotos) {
			http.Error(w, "No photo at slot", http.StatusBadRequest)
			return
		}
		patch.Photos = append(append([]string{}, draft.Photos[:req.Slot]...), draft.Photos[req.Slot+1:]...)
		patch.RawPhotos = append(append([][]byte{}, draft.RawPhotos[:req.Slot]...), draft.RawPhotos[req.Slot+1:]...)

		labels := map[int]string{}
		for slot, caption := range draft.PhotoLabels {
			switch {
			case slot >= models.EditSlotOffset || slot < req.Slot:
				labels[slot] = caption
			case slot > req.Slot:
				labels[slot-1] = caption
			}
		}
		patch.PhotoLabels = labels
	}

	updated, err := h.Service.UpdateDraft(r.Context(), userID, patch)
	if err != nil {
		http.Error(w, "Failed to update draft", http.StatusInternalServerError)
		return
	}
	h.writeDraft(w, updated)
}

func (h *DraftHandler) LoadForEdit(w http.ResponseWriter, r *http.Request) {
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

	draft, err := h.Service.LoadForEdit(r.Context(), contextUserID(r), id)
	if err != nil {
		if errors.Is(err, models.ErrNotListingOwner) {
			http.Error(w, "Not your listing", http.StatusForbidden)
			return
		}
		if errors.Is(err, repositories.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		log.Printf("LoadForEdit error: %v", err)
		http.Error(w, "Failed to load listing into draft", http.StatusInternalServerError)
		return
	}
	h.writeDraft(w, draft)
}
