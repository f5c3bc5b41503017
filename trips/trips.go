// Package trips holds the HTTP handlers for trip documents: CRUD, the
// rendered transcript, and the PDF export.
package trips

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tripchat/apperr"
	"tripchat/db"
	"tripchat/middleware"
	"tripchat/models"
	"tripchat/tripstore"
	"tripchat/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetRequestingUserID reads the user id the auth middleware stored on the
// request context, falling back to the raw JWT for handlers mounted
// without it.
func GetRequestingUserID(r *http.Request) string {
	if id := utils.GetUserIDFromRequest(r); id != "" {
		return id
	}
	claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
	if err != nil {
		log.Printf("JWT validation error: %v", err)
		return ""
	}
	return claims.UserID
}

// POST /api/trips
func CreateTrip(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var trip models.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	userID := GetRequestingUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trip.OwnerID = userID
	trip.TripID = "trip" + utils.GenerateRandomString(13)
	if trip.Days == nil {
		trip.Days = []models.DayPlan{}
	}
	if trip.Nodes == nil {
		trip.Nodes = []models.ScheduleNode{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.TripsCollection.InsertOne(ctx, trip); err != nil {
		http.Error(w, "Error inserting trip", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, trip)
}

// GET /api/trips
func GetTrips(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := GetRequestingUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"owner_id": userID, "deleted": bson.M{"$ne": true}}
	trips, err := utils.FindAndDecode[models.Trip](ctx, db.TripsCollection, filter)
	if err != nil {
		http.Error(w, "Error fetching trips", http.StatusInternalServerError)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}

	utils.RespondWithJSON(w, http.StatusOK, trips)
}

// GET /api/trips/:tripid
// Soft-deleted trips stay visible to their owner, hence the optional auth
// on this route.
func GetTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tripID := ps.ByName("tripid")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var trip models.Trip
	err := db.TripsCollection.FindOne(ctx, bson.M{"trip_id": tripID}).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching trip", http.StatusInternalServerError)
		return
	}
	if trip.Deleted && trip.OwnerID != utils.GetUserIDFromRequest(r) {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, trip)
}

// PUT /api/trips/:tripid
func UpdateTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tripID := ps.ByName("tripid")
	userID := GetRequestingUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Title       *string `json:"title"`
		StartDate   *string `json:"start_date"`
		EndDate     *string `json:"end_date"`
		TotalBudget *int    `json:"total_budget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	set := bson.M{}
	if input.Title != nil {
		set["title"] = *input.Title
	}
	if input.StartDate != nil {
		set["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		set["end_date"] = *input.EndDate
	}
	if input.TotalBudget != nil {
		set["total_budget"] = *input.TotalBudget
	}
	if len(set) == 0 {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := db.TripsCollection.UpdateOne(ctx,
		bson.M{"trip_id": tripID, "owner_id": userID},
		bson.M{"$set": set})
	if err != nil {
		http.Error(w, "Error updating trip", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Trip updated", nil)
}

// DELETE /api/trips/:tripid
func DeleteTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tripID := ps.ByName("tripid")
	userID := GetRequestingUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := db.TripsCollection.UpdateOne(ctx,
		bson.M{"trip_id": tripID, "owner_id": userID},
		bson.M{"$set": bson.M{"deleted": true}})
	if err != nil {
		http.Error(w, "Error deleting trip", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Trip deleted", nil)
}

// GET /api/trips/:tripid/render
func RenderTrip(store *tripstore.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tripID := ps.ByName("tripid")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rendered, err := store.Render(ctx, tripID)
		if apperr.IsNotFound(err) {
			http.Error(w, "Trip not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Error rendering trip", http.StatusInternalServerError)
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, utils.M{"trip_id": tripID, "rendered": rendered})
	}
}
