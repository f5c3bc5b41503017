package models

// Trip is the aggregate itinerary document. Day schedules are singly-linked
// chains: every DayPlan points at its first ScheduleNode via HeadID, and the
// nodes themselves live in a flat Nodes array so the store can address any
// node with a single positional update instead of rewriting whole chains.
type Trip struct {
	TripID      string         `json:"trip_id" bson:"trip_id"`
	Title       string         `json:"title" bson:"title"`
	OwnerID     string         `json:"owner_id" bson:"owner_id"`
	StartDate   string         `json:"start_date" bson:"start_date"`
	EndDate     string         `json:"end_date" bson:"end_date"`
	TotalBudget int            `json:"total_budget" bson:"total_budget"`
	Days        []DayPlan      `json:"days" bson:"days"`
	Nodes       []ScheduleNode `json:"nodes" bson:"nodes"`
	Deleted     bool           `json:"-" bson:"deleted,omitempty"`
}

// DayPlan is one calendar day inside a Trip. Day numbers are unique and
// contiguous from 1. An empty HeadID means the day has no schedule yet.
type DayPlan struct {
	Day    int    `json:"day" bson:"day"`
	Date   string `json:"date" bson:"date"`
	City   string `json:"city" bson:"city"`
	HeadID string `json:"head_id" bson:"head_id"`
}

// ScheduleNode is one slot in a day's chain. NextID is empty for the tail.
// Start/End of "??:??" mean the time window is not decided yet.
type ScheduleNode struct {
	NodeID string       `json:"node_id" bson:"node_id"`
	Day    int          `json:"day" bson:"day"`
	Slot   string       `json:"slot,omitempty" bson:"slot,omitempty"`
	Start  string       `json:"start" bson:"start"`
	End    string       `json:"end" bson:"end"`
	Places []PlaceEntry `json:"places" bson:"places"`
	NextID string       `json:"next_id" bson:"next_id"`
}

// UnknownTime marks a schedule slot whose window has not been decided.
const UnknownTime = "??:??"

// PlaceEntry is one concrete location occupying a ScheduleNode. Several
// entries may share a node (parallel options for the same time slot).
type PlaceEntry struct {
	PlaceID     string   `json:"place_id" bson:"place_id"`
	Name        string   `json:"name" bson:"name"`
	Category    string   `json:"category,omitempty" bson:"category,omitempty"`
	StayMinutes int      `json:"stay_minutes,omitempty" bson:"stay_minutes,omitempty"`
	Rating      float64  `json:"rating,omitempty" bson:"rating,omitempty"`
	Reviews     int      `json:"reviews,omitempty" bson:"reviews,omitempty"`
	Address     string   `json:"address,omitempty" bson:"address,omitempty"`
	MapURL      string   `json:"map_url,omitempty" bson:"map_url,omitempty"`
	OpenText    string   `json:"open_text,omitempty" bson:"open_text,omitempty"`
	Types       []string `json:"types,omitempty" bson:"types,omitempty"`
	Lat         float64  `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng         float64  `json:"lng,omitempty" bson:"lng,omitempty"`
	Source      string   `json:"source,omitempty" bson:"source,omitempty"`
	Score       float64  `json:"-" bson:"_behavior_score,omitempty"`
}

// DayCityMap returns day number → city name for every planned day.
func (t *Trip) DayCityMap() map[int]string {
	m := make(map[int]string, len(t.Days))
	for _, d := range t.Days {
		m[d.Day] = d.City
	}
	return m
}

// DayPlanFor returns the DayPlan for the given day number, or nil.
func (t *Trip) DayPlanFor(day int) *DayPlan {
	for i := range t.Days {
		if t.Days[i].Day == day {
			return &t.Days[i]
		}
	}
	return nil
}

// NodeByID returns the ScheduleNode with the given id, or nil.
func (t *Trip) NodeByID(id string) *ScheduleNode {
	if id == "" {
		return nil
	}
	for i := range t.Nodes {
		if t.Nodes[i].NodeID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}
