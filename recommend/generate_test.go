package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"tripchat/apperr"
	"tripchat/models"
)

type fakeCompleter struct {
	analysis  string
	placement string
	err       error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if strings.Contains(prompt, "哪一天、哪個時段") {
		return f.placement, nil
	}
	return f.analysis, nil
}

type fakeSearcher struct {
	results map[string][]models.PlaceEntry
}

func (f *fakeSearcher) Search(_ context.Context, query, city string) ([]models.PlaceEntry, error) {
	return f.results[query], nil
}

type fakeResolver struct {
	ids map[string]string
}

func (f *fakeResolver) FindPlaceID(_ context.Context, _ string, day int, name string) (string, error) {
	if id, ok := f.ids[fmt.Sprintf("%d/%s", day, name)]; ok {
		return id, nil
	}
	return "", apperr.NotFoundf("place %q on day %d", name, day)
}

func genTrip() *models.Trip {
	return &models.Trip{
		TripID: "t1",
		Title:  "環島",
		Days: []models.DayPlan{
			{Day: 1, City: "台北", HeadID: "n1"},
			{Day: 2, City: "台中", HeadID: ""},
		},
		Nodes: []models.ScheduleNode{
			{NodeID: "n1", Day: 1, Slot: "上午",
				Places: []models.PlaceEntry{{PlaceID: "p1", Name: "西門町", Address: "台北市萬華區"}}},
		},
	}
}

func place(id, name, addr string) models.PlaceEntry {
	return models.PlaceEntry{PlaceID: id, Name: name, Address: addr}
}

func TestGenerateModifyResolved(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{
			analysis: "```json\n[{\"type\": \"modify\", \"day\": 1, \"place\": \"西門町\", \"search_keywords\": [\"文青咖啡\"], \"reason\": \"人潮\"}]\n```",
		},
		Searcher: &fakeSearcher{results: map[string][]models.PlaceEntry{
			"文青咖啡": {place("c1", "咖啡A", "台北市大安區1號"), place("c2", "咖啡B", "台北市大安區2號")},
		}},
		Resolver: &fakeResolver{ids: map[string]string{"1/西門町": "p1"}},
	}

	recs := g.Generate(context.Background(), genTrip(), []string{"文青"}, []string{"人潮"}, "")
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations", len(recs))
	}
	m, ok := recs[0].(*models.ModifyRecommendation)
	if !ok {
		t.Fatalf("got %T", recs[0])
	}
	if m.PlaceID != "p1" || len(m.Candidates) != 2 || m.City != "台北" {
		t.Errorf("modify = %+v", m)
	}
}

func TestGenerateModifyUnresolvedDropped(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{
			analysis: "[{\"type\": \"modify\", \"day\": 1, \"place\": \"不存在\", \"search_keywords\": [\"咖啡\"]}]",
		},
		Searcher: &fakeSearcher{},
		Resolver: &fakeResolver{},
	}
	if recs := g.Generate(context.Background(), genTrip(), nil, nil, ""); len(recs) != 0 {
		t.Errorf("got %d recommendations, want 0", len(recs))
	}
}

func TestGenerateAddSingleCandidateAndPlacement(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{
			analysis:  "[{\"type\": \"add\", \"day\": 2, \"search_keywords\": [\"美術館\"], \"reason\": \"藝文\"}]",
			placement: "{\"day\": 2, \"period\": \"下午\"}",
		},
		Searcher: &fakeSearcher{results: map[string][]models.PlaceEntry{
			"美術館": {place("a1", "國美館", "台中市西區"), place("a2", "歌劇院", "台中市西屯區")},
		}},
		Resolver: &fakeResolver{},
	}

	recs := g.Generate(context.Background(), genTrip(), nil, nil, "")
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations", len(recs))
	}
	a, ok := recs[0].(*models.AddRecommendation)
	if !ok {
		t.Fatalf("got %T", recs[0])
	}
	if a.Candidate.PlaceID != "a1" {
		t.Errorf("candidate = %+v, want first result only", a.Candidate)
	}
	if a.Target.Day != 2 || a.Target.Slot != "下午" || a.Target.Action != models.InsertAppend {
		t.Errorf("target = %+v", a.Target)
	}
}

func TestGenerateAddUnknownDayDropped(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{
			analysis: "[{\"type\": \"add\", \"day\": 9, \"search_keywords\": [\"美術館\"]}]",
		},
		Searcher: &fakeSearcher{results: map[string][]models.PlaceEntry{
			"美術館": {place("a1", "國美館", "台中市西區")},
		}},
		Resolver: &fakeResolver{},
	}
	if recs := g.Generate(context.Background(), genTrip(), nil, nil, ""); len(recs) != 0 {
		t.Errorf("got %d recommendations, want 0", len(recs))
	}
}

func TestGenerateAddPlacementUndecidedDefaults(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{
			analysis:  "[{\"type\": \"add\", \"day\": 2, \"search_keywords\": [\"美術館\"]}]",
			placement: "{\"day\": null, \"period\": null}",
		},
		Searcher: &fakeSearcher{results: map[string][]models.PlaceEntry{
			"美術館": {place("a1", "國美館", "台中市西區")},
		}},
		Resolver: &fakeResolver{},
	}
	recs := g.Generate(context.Background(), genTrip(), nil, nil, "")
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations", len(recs))
	}
	a := recs[0].(*models.AddRecommendation)
	if a.Target.Day != 2 || a.Target.Slot != defaultSlot {
		t.Errorf("target = %+v, want suggested day with default slot", a.Target)
	}
}

func TestGenerateDedupAgainstItinerary(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{
			analysis: "[{\"type\": \"add\", \"day\": 1, \"search_keywords\": [\"逛街\"]}]",
		},
		Searcher: &fakeSearcher{results: map[string][]models.PlaceEntry{
			// same normalized address as the itinerary's 西門町 entry
			"逛街": {place("x1", "西門町商圈", "台北市 萬華區")},
		}},
		Resolver: &fakeResolver{},
	}
	if recs := g.Generate(context.Background(), genTrip(), nil, nil, ""); len(recs) != 0 {
		t.Errorf("got %d recommendations, want duplicate dropped", len(recs))
	}
}

func TestGenerateDeletePassthrough(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{
			analysis: "[{\"type\": \"delete\", \"day\": 1, \"place\": \"西門町\", \"reason\": \"人潮\"}]",
		},
		Searcher: &fakeSearcher{},
		Resolver: &fakeResolver{},
	}
	recs := g.Generate(context.Background(), genTrip(), nil, []string{"人潮"}, "")
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations", len(recs))
	}
	d := recs[0].(*models.DeleteRecommendation)
	if d.Place != "西門町" || d.City != "台北" {
		t.Errorf("delete = %+v", d)
	}
}

func TestGenerateOracleFailureIsEmpty(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{err: errors.New("down")},
		Searcher:  &fakeSearcher{},
		Resolver:  &fakeResolver{},
	}
	if recs := g.Generate(context.Background(), genTrip(), nil, nil, ""); recs != nil {
		t.Errorf("got %v, want nil", recs)
	}
}

func TestGenerateGarbageReplyIsEmpty(t *testing.T) {
	g := &Generator{
		Completer: &fakeCompleter{analysis: "目前行程看起來很棒！"},
		Searcher:  &fakeSearcher{},
		Resolver:  &fakeResolver{},
	}
	if recs := g.Generate(context.Background(), genTrip(), nil, nil, ""); recs != nil {
		t.Errorf("got %v, want nil", recs)
	}
}
