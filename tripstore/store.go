package tripstore

import (
	"context"
	"errors"

	"tripchat/apperr"
	"tripchat/models"
	"tripchat/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// allowedFields enumerates the place fields Modify may touch. Anything else
// in the caller's patch is ignored; a patch with no recognized field fails
// validation.
var allowedFields = map[string]bool{
	"place_id": true, "name": true, "category": true, "stay_minutes": true,
	"rating": true, "reviews": true, "address": true, "map_url": true,
	"open_text": true, "types": true, "lat": true, "lng": true,
	"source": true, "raw_name": true, "_behavior_score": true,
}

type Store struct {
	coll *mongo.Collection
}

func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

func (s *Store) trip(ctx context.Context, tripID string) (*models.Trip, error) {
	var t models.Trip
	err := s.coll.FindOne(ctx, bson.M{"trip_id": tripID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFoundf("trip %s", tripID)
	}
	if err != nil {
		return nil, apperr.Storef("load trip %s: %v", tripID, err)
	}
	return &t, nil
}

// Get loads the full trip document.
func (s *Store) Get(ctx context.Context, tripID string) (*models.Trip, error) {
	return s.trip(ctx, tripID)
}

// Render loads the trip and produces its transcript.
func (s *Store) Render(ctx context.Context, tripID string) (string, error) {
	t, err := s.trip(ctx, tripID)
	if err != nil {
		return "", err
	}
	return RenderTrip(t), nil
}

// FindPlaceID resolves a place name within one day's chain to its place_id.
func (s *Store) FindPlaceID(ctx context.Context, tripID string, day int, name string) (string, error) {
	t, err := s.trip(ctx, tripID)
	if err != nil {
		return "", err
	}
	id, ok := findPlaceID(t, day, name)
	if !ok {
		return "", apperr.NotFoundf("place %q on day %d", name, day)
	}
	return id, nil
}

// Insert adds a place to a day's chain and returns the new node id. The node
// is pushed first and the predecessor's next_id patched second; both updates
// target the same document so readers between the two steps see the new node
// as unreachable rather than a broken chain.
func (s *Store) Insert(ctx context.Context, tripID string, day int, slot string, place models.PlaceEntry, action models.InsertAction, refNodeID string) (string, error) {
	t, err := s.trip(ctx, tripID)
	if err != nil {
		return "", err
	}

	node := models.ScheduleNode{
		NodeID: utils.NewID(),
		Day:    day,
		Slot:   slot,
		Start:  models.UnknownTime,
		End:    models.UnknownTime,
		Places: []models.PlaceEntry{place},
	}

	// New day: create the day plan with the node as its head.
	if t.DayPlanFor(day) == nil {
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"trip_id": tripID},
			bson.M{
				"$push": bson.M{
					"days":  models.DayPlan{Day: day, Date: t.StartDate, City: cityForNewDay(t), HeadID: node.NodeID},
					"nodes": node,
				},
			})
		if err != nil {
			return "", apperr.Storef("insert day %d: %v", day, err)
		}
		return node.NodeID, nil
	}

	// Empty day: the node becomes the head.
	if len(walkDay(t, day)) == 0 {
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"trip_id": tripID, "days.day": day},
			bson.M{
				"$set":  bson.M{"days.$.head_id": node.NodeID},
				"$push": bson.M{"nodes": node},
			})
		if err != nil {
			return "", apperr.Storef("insert into empty day %d: %v", day, err)
		}
		return node.NodeID, nil
	}

	sp, err := planInsert(t, day, action, refNodeID)
	if err != nil {
		return "", err
	}
	node.NextID = sp.nextID

	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"trip_id": tripID},
		bson.M{"$push": bson.M{"nodes": node}}); err != nil {
		return "", apperr.Storef("push node: %v", err)
	}

	if sp.newHead {
		if _, err := s.coll.UpdateOne(ctx,
			bson.M{"trip_id": tripID, "days.day": day},
			bson.M{"$set": bson.M{"days.$.head_id": node.NodeID}}); err != nil {
			return "", apperr.Storef("update head of day %d: %v", day, err)
		}
	} else if sp.prevID != "" {
		if _, err := s.coll.UpdateOne(ctx,
			bson.M{"trip_id": tripID, "nodes.node_id": sp.prevID},
			bson.M{"$set": bson.M{"nodes.$.next_id": node.NodeID}}); err != nil {
			return "", apperr.Storef("link node after %s: %v", sp.prevID, err)
		}
	}

	return node.NodeID, nil
}

// Remove deletes the first place matching name from the day's chain and
// returns the stored name of the removed entry. A node that still holds
// other places only loses the matched entry; a node left empty is unlinked
// and removed whole.
func (s *Store) Remove(ctx context.Context, tripID string, day int, name string) (string, error) {
	t, err := s.trip(ctx, tripID)
	if err != nil {
		return "", err
	}
	if t.DayPlanFor(day) == nil {
		return "", apperr.NotFoundf("day %d", day)
	}

	rp, err := planRemove(t, day, name)
	if err != nil {
		return "", err
	}

	if rp.pullOnly {
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"trip_id": tripID, "nodes.node_id": rp.node.NodeID},
			bson.M{"$pull": bson.M{"nodes.$.places": bson.M{"name": rp.matched}}})
		if err != nil {
			return "", apperr.Storef("pull place %q: %v", rp.matched, err)
		}
		return rp.matched, nil
	}

	// Sole place: unlink the node. Patch the head pointer or the predecessor
	// first so the chain never points at a node that is already gone.
	if rp.prevID == "" {
		if _, err := s.coll.UpdateOne(ctx,
			bson.M{"trip_id": tripID, "days.day": day},
			bson.M{"$set": bson.M{"days.$.head_id": rp.node.NextID}}); err != nil {
			return "", apperr.Storef("update head of day %d: %v", day, err)
		}
	} else {
		if _, err := s.coll.UpdateOne(ctx,
			bson.M{"trip_id": tripID, "nodes.node_id": rp.prevID},
			bson.M{"$set": bson.M{"nodes.$.next_id": rp.node.NextID}}); err != nil {
			return "", apperr.Storef("relink around node %s: %v", rp.node.NodeID, err)
		}
	}
	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"trip_id": tripID},
		bson.M{"$pull": bson.M{"nodes": bson.M{"node_id": rp.node.NodeID}}}); err != nil {
		return "", apperr.Storef("remove node %s: %v", rp.node.NodeID, err)
	}
	return rp.matched, nil
}

// Modify applies a partial update to the place identified by (day, placeID).
// Only allowed fields are written; a patch carrying none of them is a
// validation error and leaves the document untouched.
func (s *Store) Modify(ctx context.Context, tripID string, day int, placeID string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		if allowedFields[k] {
			set["nodes.$[node].places.$[p]."+k] = v
		}
	}
	if len(set) == 0 {
		return apperr.Validationf("no recognized place fields in update")
	}

	t, err := s.trip(ctx, tripID)
	if err != nil {
		return err
	}
	if !hasPlace(t, day, placeID) {
		return apperr.NotFoundf("place %s on day %d", placeID, day)
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"trip_id": tripID},
		bson.M{"$set": set},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"node.day": day},
				bson.M{"p.place_id": placeID},
			},
		}))
	if err != nil {
		return apperr.Storef("modify place %s: %v", placeID, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("trip %s", tripID)
	}
	// ModifiedCount of zero here means the patch equals the stored values;
	// an idempotent update is still a success.
	return nil
}

// EntryFields flattens a full place entry into a Modify patch.
func EntryFields(p models.PlaceEntry) map[string]any {
	f := map[string]any{
		"place_id": p.PlaceID,
		"name":     p.Name,
		"address":  p.Address,
		"map_url":  p.MapURL,
		"lat":      p.Lat,
		"lng":      p.Lng,
		"source":   p.Source,
	}
	if p.Category != "" {
		f["category"] = p.Category
	}
	if p.StayMinutes > 0 {
		f["stay_minutes"] = p.StayMinutes
	}
	if p.Rating > 0 {
		f["rating"] = p.Rating
	}
	if p.Reviews > 0 {
		f["reviews"] = p.Reviews
	}
	if p.OpenText != "" {
		f["open_text"] = p.OpenText
	}
	if len(p.Types) > 0 {
		f["types"] = p.Types
	}
	return f
}
