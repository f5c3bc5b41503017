package tripstore

import (
	"context"
	"testing"

	"tripchat/apperr"
	"tripchat/models"
)

func TestPlanInsertAppendLandsLast(t *testing.T) {
	tr := testTrip()

	sp, err := planInsert(tr, 1, models.InsertAppend, "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if sp.prevID != "n3" || sp.nextID != "" || sp.newHead {
		t.Errorf("append plan = %+v, want prev n3 at tail", sp)
	}

	// A positional action without a reference degrades to append.
	sp, err = planInsert(tr, 1, models.InsertBefore, "")
	if err != nil {
		t.Fatalf("before without ref: %v", err)
	}
	if sp.prevID != "n3" || sp.nextID != "" {
		t.Errorf("referenceless before plan = %+v, want append", sp)
	}
}

func TestPlanInsertBeforeHead(t *testing.T) {
	sp, err := planInsert(testTrip(), 1, models.InsertBefore, "n1")
	if err != nil {
		t.Fatalf("before head: %v", err)
	}
	if !sp.newHead || sp.nextID != "n1" || sp.prevID != "" {
		t.Errorf("before-head plan = %+v, want new head pointing at n1", sp)
	}
}

func TestPlanInsertBeforeMiddle(t *testing.T) {
	sp, err := planInsert(testTrip(), 1, models.InsertBefore, "n3")
	if err != nil {
		t.Fatalf("before middle: %v", err)
	}
	if sp.newHead || sp.prevID != "n2" || sp.nextID != "n3" {
		t.Errorf("before-n3 plan = %+v, want splice between n2 and n3", sp)
	}
}

func TestPlanInsertAfter(t *testing.T) {
	sp, err := planInsert(testTrip(), 1, models.InsertAfter, "n1")
	if err != nil {
		t.Fatalf("after head: %v", err)
	}
	if sp.prevID != "n1" || sp.nextID != "n2" {
		t.Errorf("after-n1 plan = %+v, want splice between n1 and n2", sp)
	}

	sp, err = planInsert(testTrip(), 1, models.InsertAfter, "n3")
	if err != nil {
		t.Fatalf("after tail: %v", err)
	}
	if sp.prevID != "n3" || sp.nextID != "" {
		t.Errorf("after-tail plan = %+v, want new tail", sp)
	}
}

func TestPlanInsertUnknownReference(t *testing.T) {
	if _, err := planInsert(testTrip(), 1, models.InsertBefore, "nX"); !apperr.IsNotFound(err) {
		t.Errorf("before unknown ref err = %v", err)
	}
	if _, err := planInsert(testTrip(), 1, models.InsertAfter, "nX"); !apperr.IsNotFound(err) {
		t.Errorf("after unknown ref err = %v", err)
	}
}

func TestPlanRemoveHeadRelinks(t *testing.T) {
	rp, err := planRemove(testTrip(), 1, "故宮博物院")
	if err != nil {
		t.Fatalf("remove head: %v", err)
	}
	if rp.node.NodeID != "n1" || rp.prevID != "" || rp.pullOnly {
		t.Errorf("head plan = %+v, want unlink of n1 via head pointer", rp)
	}
	if rp.node.NextID != "n2" {
		t.Errorf("head successor = %q, want n2", rp.node.NextID)
	}
}

func TestPlanRemoveTailRelinks(t *testing.T) {
	rp, err := planRemove(testTrip(), 1, "Taipei 101")
	if err != nil {
		t.Fatalf("remove tail: %v", err)
	}
	if rp.node.NodeID != "n3" || rp.prevID != "n2" || rp.pullOnly {
		t.Errorf("tail plan = %+v, want n2 relinked to nothing", rp)
	}
	if rp.node.NextID != "" {
		t.Errorf("tail successor = %q, want empty", rp.node.NextID)
	}
}

func TestPlanRemoveSharedNodePullsEntryOnly(t *testing.T) {
	rp, err := planRemove(testTrip(), 1, "士林夜市")
	if err != nil {
		t.Fatalf("remove shared: %v", err)
	}
	if !rp.pullOnly || rp.node.NodeID != "n2" || rp.matched != "士林夜市" {
		t.Errorf("shared-node plan = %+v, want entry pull on n2", rp)
	}
}

func TestPlanRemoveMissing(t *testing.T) {
	if _, err := planRemove(testTrip(), 1, "墾丁"); !apperr.IsNotFound(err) {
		t.Errorf("missing place err = %v", err)
	}
	if _, err := planRemove(testTrip(), 2, "故宮博物院"); !apperr.IsNotFound(err) {
		t.Errorf("empty day err = %v", err)
	}
}

func TestModifyRejectsUnrecognizedFields(t *testing.T) {
	// The field check fires before any collection access, so no database
	// is needed to exercise it.
	err := New(nil).Modify(context.Background(), "t1", 1, "p1",
		map[string]any{"nickname": "小張", "note": "x"})
	if !apperr.IsValidation(err) {
		t.Errorf("unrecognized-fields err = %v, want validation", err)
	}
}

func TestHasPlaceFollowsChain(t *testing.T) {
	tr := testTrip()
	if !hasPlace(tr, 1, "p1") {
		t.Error("p1 on day 1 not found")
	}
	if hasPlace(tr, 2, "p1") {
		t.Error("p1 reported on the wrong day")
	}

	// An orphan node off the chain does not count.
	tr.Nodes = append(tr.Nodes, models.ScheduleNode{
		NodeID: "n9", Day: 1,
		Places: []models.PlaceEntry{{PlaceID: "p9", Name: "孤兒節點"}},
	})
	if hasPlace(tr, 1, "p9") {
		t.Error("unreachable node's place reported present")
	}
}

func TestCityForNewDay(t *testing.T) {
	tr := testTrip()
	if got := cityForNewDay(tr); got != "台北" {
		t.Errorf("city = %q, want 台北", got)
	}

	tr.Days = []models.DayPlan{{Day: 1, City: "台北"}, {Day: 2, City: "台中"}, {Day: 3}}
	if got := cityForNewDay(tr); got != "台中" {
		t.Errorf("city = %q, want last planned 台中", got)
	}

	tr.Days = nil
	if got := cityForNewDay(tr); got != "未知城市" {
		t.Errorf("city = %q, want fallback", got)
	}
}
