package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"bunkmate/internal/models"
	"bunkmate/internal/services"
)

type FavoriteHandler struct {
	Service *services.FavoriteService
}

func (h *FavoriteHandler) AddToFavorites(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listingID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	fav := models.Favorite{UserID: userID, ListingID: listingID}
	if err := h.Service.AddToFavorites(r.Context(), fav); err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		if isDuplicateKeyError(err) {
			// Already saved; treat a repeat tap as success.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Printf("Failed to add favorite: %v", err)
		http.Error(w, "Failed to add favorite", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *FavoriteHandler) RemoveFromFavorites(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listingID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveFromFavorites(r.Context(), userID, listingID); err != nil {
		log.Printf("Failed to remove favorite: %v", err)
		http.Error(w, "Failed to remove favorite", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID := contextUserID(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	favorites, err := h.Service.GetFavoritesByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to get favorites for user %d: %v", userID, err)
		http.Error(w, "Failed to get favorites", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(favorites); err != nil {
		log.Printf("Failed to encode favorites: %v", err)
	}
}
