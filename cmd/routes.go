package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddleware)

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.RefreshTokens))
	mux.Get("/user/me", authMiddleware.ThenFunc(app.userHandler.GetProfile))
	mux.Put("/user/me", authMiddleware.ThenFunc(app.userHandler.UpdateProfile))
	mux.Post("/user/fcm_token", authMiddleware.ThenFunc(app.userHandler.RegisterFCMToken))

	// Draft wizard
	mux.Get("/draft", authMiddleware.ThenFunc(app.draftHandler.GetDraft))
	mux.Put("/draft", authMiddleware.ThenFunc(app.draftHandler.UpdateDraft))
	mux.Del("/draft", authMiddleware.ThenFunc(app.draftHandler.ResetDraft))
	mux.Get("/draft/sections", authMiddleware.ThenFunc(app.draftHandler.GetSections))
	mux.Post("/draft/photos", authMiddleware.ThenFunc(app.draftHandler.AddPhotos))
	mux.Del("/draft/photos", authMiddleware.ThenFunc(app.draftHandler.RemovePhoto))
	mux.Post("/draft/edit/:id", authMiddleware.ThenFunc(app.draftHandler.LoadForEdit))

	// Listings
	mux.Post("/listing", authMiddleware.ThenFunc(app.listingHandler.CreateListing))
	mux.Put("/listing", authMiddleware.ThenFunc(app.listingHandler.SaveListing))
	mux.Get("/listing/get", standardMiddleware.ThenFunc(app.listingHandler.GetListings))
	mux.Get("/listing/mine", authMiddleware.ThenFunc(app.listingHandler.GetMyListings))
	mux.Get("/listing/:id", standardMiddleware.ThenFunc(app.listingHandler.GetListingByID))
	mux.Post("/listing/:id/archive", authMiddleware.ThenFunc(app.listingHandler.ArchiveListing))
	mux.Post("/listing/:id/unarchive", authMiddleware.ThenFunc(app.listingHandler.UnarchiveListing))
	mux.Del("/listing/:id", authMiddleware.ThenFunc(app.listingHandler.DeleteListing))

	// Favorites
	mux.Post("/favorites/:id", authMiddleware.ThenFunc(app.favoriteHandler.AddToFavorites))
	mux.Del("/favorites/:id", authMiddleware.ThenFunc(app.favoriteHandler.RemoveFromFavorites))
	mux.Get("/favorites", authMiddleware.ThenFunc(app.favoriteHandler.GetFavorites))

	return mux
}
