// Package tripstore owns the itinerary ordered-list store. Each trip
// document holds a flat nodes array plus per-day head pointers; a day's
// schedule is the singly linked chain obtained by following next_id from
// the day's head. Mutations are single-document Mongo updates so concurrent
// editors interleave at operation granularity.
package tripstore

import (
	"strings"

	"tripchat/apperr"
	"tripchat/models"
)

// walkDay returns the day's nodes in chain order. The walk is bounded by the
// total node count and a seen set, so a corrupted chain (cycle or dangling
// next_id) terminates instead of looping.
func walkDay(t *models.Trip, day int) []*models.ScheduleNode {
	plan := t.DayPlanFor(day)
	if plan == nil || plan.HeadID == "" {
		return nil
	}

	byID := make(map[string]*models.ScheduleNode, len(t.Nodes))
	for i := range t.Nodes {
		byID[t.Nodes[i].NodeID] = &t.Nodes[i]
	}

	seen := make(map[string]bool, len(t.Nodes))
	var chain []*models.ScheduleNode
	for id := plan.HeadID; id != "" && !seen[id]; {
		n, ok := byID[id]
		if !ok {
			break
		}
		seen[id] = true
		chain = append(chain, n)
		id = n.NextID
	}
	return chain
}

// predecessor returns the node whose next_id is nodeID, or nil when nodeID
// is the head or not on the chain.
func predecessor(chain []*models.ScheduleNode, nodeID string) *models.ScheduleNode {
	for _, n := range chain {
		if n.NextID == nodeID {
			return n
		}
	}
	return nil
}

func tail(chain []*models.ScheduleNode) *models.ScheduleNode {
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// insertPlan is the splice decision for adding a node to a non-empty chain:
// either the node becomes the new head, or prevID's next_id points at it.
// nextID is the value the new node's next_id takes.
type insertPlan struct {
	prevID  string
	nextID  string
	newHead bool
}

func planInsert(t *models.Trip, day int, action models.InsertAction, refNodeID string) (insertPlan, error) {
	plan := t.DayPlanFor(day)
	chain := walkDay(t, day)

	switch {
	case action == models.InsertBefore && refNodeID != "":
		if refNodeID == plan.HeadID {
			return insertPlan{nextID: plan.HeadID, newHead: true}, nil
		}
		prev := predecessor(chain, refNodeID)
		if prev == nil {
			return insertPlan{}, apperr.NotFoundf("reference node %s on day %d", refNodeID, day)
		}
		return insertPlan{prevID: prev.NodeID, nextID: refNodeID}, nil
	case action == models.InsertAfter && refNodeID != "":
		ref := t.NodeByID(refNodeID)
		if ref == nil || ref.Day != day {
			return insertPlan{}, apperr.NotFoundf("reference node %s on day %d", refNodeID, day)
		}
		return insertPlan{prevID: ref.NodeID, nextID: ref.NextID}, nil
	}
	// APPEND, or a positional action without a usable reference.
	return insertPlan{prevID: tail(chain).NodeID}, nil
}

// removePlan is the unsplice decision for deleting a place: the node holding
// the match, the stored name of the matched entry, and how the chain relinks.
// pullOnly means the node keeps other places and only the entry is pulled.
type removePlan struct {
	node     *models.ScheduleNode
	prevID   string // empty when the node is the day's head
	matched  string
	pullOnly bool
}

func planRemove(t *models.Trip, day int, name string) (removePlan, error) {
	var prevID string
	for _, n := range walkDay(t, day) {
		if got, ok := matchPlace(n, name); ok {
			return removePlan{
				node:     n,
				prevID:   prevID,
				matched:  got,
				pullOnly: len(n.Places) > 1,
			}, nil
		}
		prevID = n.NodeID
	}
	return removePlan{}, apperr.NotFoundf("place %q on day %d", name, day)
}

// hasPlace reports whether the day's chain holds an entry with this place_id.
func hasPlace(t *models.Trip, day int, placeID string) bool {
	for _, n := range walkDay(t, day) {
		for _, p := range n.Places {
			if p.PlaceID == placeID {
				return true
			}
		}
	}
	return false
}

// cityForNewDay picks the city label for a day created on the fly: the last
// planned day with a city is the best guess, and a trip with no cities yet
// gets the unknown marker the renderer and search prompts already understand.
func cityForNewDay(t *models.Trip) string {
	for i := len(t.Days) - 1; i >= 0; i-- {
		if t.Days[i].City != "" {
			return t.Days[i].City
		}
	}
	return "未知城市"
}

// matchPlace scans one node's places for the supplied name, preferring an
// exact match, then case-insensitive, then substring either direction.
// Returns the stored name of the winning entry.
func matchPlace(n *models.ScheduleNode, name string) (string, bool) {
	for _, p := range n.Places {
		if p.Name == name {
			return p.Name, true
		}
	}
	lower := strings.ToLower(name)
	for _, p := range n.Places {
		if strings.ToLower(p.Name) == lower {
			return p.Name, true
		}
	}
	for _, p := range n.Places {
		stored := strings.ToLower(p.Name)
		if stored == "" {
			continue
		}
		if strings.Contains(stored, lower) || strings.Contains(lower, stored) {
			return p.Name, true
		}
	}
	return "", false
}

// findPlaceID resolves a human-issued place name to a place_id within one
// day's chain. Exact matches win over substring matches; within a tier the
// first hit in chain-traversal order is taken.
func findPlaceID(t *models.Trip, day int, name string) (string, bool) {
	chain := walkDay(t, day)
	for _, n := range chain {
		for _, p := range n.Places {
			if p.Name == name {
				return p.PlaceID, true
			}
		}
	}
	for _, n := range chain {
		for _, p := range n.Places {
			if p.Name == "" {
				continue
			}
			if strings.Contains(p.Name, name) || strings.Contains(name, p.Name) {
				return p.PlaceID, true
			}
		}
	}
	return "", false
}
