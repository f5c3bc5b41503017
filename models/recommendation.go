package models

// InsertAction selects where a new node is spliced into a day's chain.
type InsertAction string

const (
	InsertAppend InsertAction = "APPEND"
	InsertBefore InsertAction = "BEFORE"
	InsertAfter  InsertAction = "AFTER"
)

// Recommendation is a queued, not-yet-applied suggested edit. The concrete
// types below each carry only the fields their kind needs; downstream code
// switches on the type instead of probing optional fields.
type Recommendation interface {
	Kind() string
}

// ModifyRecommendation proposes replacing an existing place with one of the
// Candidates. PlaceID is resolved against the live itinerary at generation
// time, so a suggestion whose target cannot be found never reaches the queue.
type ModifyRecommendation struct {
	Day        int
	City       string
	Place      string // original place name as the user knows it
	PlaceID    string
	Candidates []PlaceEntry
	Reason     string
}

func (ModifyRecommendation) Kind() string { return "modify" }

// AddRecommendation proposes inserting exactly one candidate place. Target
// carries the placement the oracle decided (or the append-to-day default).
type AddRecommendation struct {
	Day       int
	City      string
	Candidate PlaceEntry
	Reason    string
	Target    InsertTarget
}

func (AddRecommendation) Kind() string { return "add" }

// InsertTarget is a resolved placement for an add: which day, which slot,
// and how to splice relative to RefNodeID (ignored for APPEND).
type InsertTarget struct {
	Day       int
	Slot      string
	Action    InsertAction
	RefNodeID string
}

// DeleteRecommendation proposes removing a named place from a day.
type DeleteRecommendation struct {
	Day    int
	City   string
	Place  string
	Reason string
}

func (DeleteRecommendation) Kind() string { return "delete" }

// PendingAdd is a user-initiated "add this place" awaiting day/slot
// confirmation in the workflow.
type PendingAdd struct {
	PlaceName string
	Candidate PlaceEntry
}
