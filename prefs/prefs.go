// Package prefs tracks per-user travel preferences for a trip. Preferences
// are harvested from ordinary chat messages by the completion oracle and
// merged into a per-(trip, user) document; the analysis pass later unions
// them across all members of the trip.
package prefs

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"tripchat/agi"
	"tripchat/apperr"
	"tripchat/jsonx"
	"tripchat/models"
	"tripchat/utils"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	coll *mongo.Collection
}

func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Update merges new prefer/avoid items into the user's preference document,
// creating it on first write. Items are deduplicated; order of first mention
// is kept.
func (s *Store) Update(ctx context.Context, tripID, userID string, prefer, avoid []string) error {
	var existing models.Preferences
	err := s.coll.FindOne(ctx, bson.M{"trip_id": tripID, "user_id": userID}).Decode(&existing)
	if err != nil && err != mongo.ErrNoDocuments {
		return apperr.Storef("load preferences: %v", err)
	}

	merged := models.Preferences{
		TripID:  tripID,
		UserID:  userID,
		Prefer:  lo.Uniq(append(existing.Prefer, prefer...)),
		Avoid:   lo.Uniq(append(existing.Avoid, avoid...)),
		Updated: time.Now().Unix(),
	}

	_, err = s.coll.UpdateOne(ctx,
		bson.M{"trip_id": tripID, "user_id": userID},
		bson.M{"$set": merged},
		options.Update().SetUpsert(true))
	if err != nil {
		return apperr.Storef("save preferences: %v", err)
	}
	return nil
}

// ForUser returns one user's preferences, empty when none are stored yet.
func (s *Store) ForUser(ctx context.Context, tripID, userID string) (models.Preferences, error) {
	var p models.Preferences
	err := s.coll.FindOne(ctx, bson.M{"trip_id": tripID, "user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Preferences{TripID: tripID, UserID: userID}, nil
	}
	if err != nil {
		return p, apperr.Storef("load preferences: %v", err)
	}
	return p, nil
}

// ForTrip unions the preferences of every member of the trip, sorted for
// stable prompt text.
func (s *Store) ForTrip(ctx context.Context, tripID string) (prefer, avoid []string, err error) {
	all, err := utils.FindAndDecode[models.Preferences](ctx, s.coll, bson.M{"trip_id": tripID})
	if err != nil {
		return nil, nil, apperr.Storef("load trip preferences: %v", err)
	}
	for _, p := range all {
		prefer = append(prefer, p.Prefer...)
		avoid = append(avoid, p.Avoid...)
	}
	prefer = lo.Uniq(prefer)
	avoid = lo.Uniq(avoid)
	sort.Strings(prefer)
	sort.Strings(avoid)
	return prefer, avoid, nil
}

const extractPrompt = `你是一位旅遊偏好分析助理。請從使用者的發言中擷取旅遊偏好。

只擷取**明確表達**的偏好，例如喜歡的活動類型、想避免的事物（人潮、排隊、某類食物等）。
沒有明確偏好時回傳空陣列。

**請務必只回傳 JSON，不要包含任何額外的文字。**
` + "```json" + `
{"prefer": [], "avoid": []}
` + "```" + `
使用者說：
「%s」
`

// Extracted is the oracle's read of one chat message.
type Extracted struct {
	Prefer []string `json:"prefer"`
	Avoid  []string `json:"avoid"`
}

// Extract asks the oracle for preferences expressed in a message. Failures
// and unparsable replies yield an empty result; a chat turn never fails on
// preference harvesting.
func Extract(ctx context.Context, c agi.Completer, text string) Extracted {
	raw, err := c.Complete(ctx, fmt.Sprintf(extractPrompt, text))
	if err != nil {
		log.Printf("preference extraction failed: %v", err)
		return Extracted{}
	}
	var out Extracted
	if !jsonx.ExtractInto(raw, &out) {
		return Extracted{}
	}
	return out
}
