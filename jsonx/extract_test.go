package jsonx

import (
	"encoding/json"
	"testing"
)

func TestExtractFencedBlock(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"day\": 1, \"period\": \"morning\"}\n```\nHope that helps."
	raw, ok := Extract(text)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["period"] != "morning" {
		t.Fatalf("expected period=morning, got %v", got["period"])
	}
}

func TestExtractWholeString(t *testing.T) {
	var got []int
	if !ExtractInto("[1,2,3]", &got) {
		t.Fatal("expected extraction to succeed")
	}
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestExtractBalancedSpanInProse(t *testing.T) {
	text := `Sure! The answer is {"add_location": true, "place_name": "Tower"} as requested.`
	var got struct {
		AddLocation bool   `json:"add_location"`
		PlaceName   string `json:"place_name"`
	}
	if !ExtractInto(text, &got) {
		t.Fatal("expected extraction to succeed")
	}
	if !got.AddLocation || got.PlaceName != "Tower" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestExtractBracesInsideStrings(t *testing.T) {
	text := `prefix {"note": "odd } brace", "n": 2} suffix`
	var got map[string]any
	if !ExtractInto(text, &got) {
		t.Fatal("expected extraction to succeed")
	}
	if got["n"] != float64(2) {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestExtractUnfencedBlockFallback(t *testing.T) {
	// A fence with garbage inside should fall through to the balanced scan.
	text := "```json\nnot json at all\n```\ntrailing [\"a\", \"b\"]"
	var got []string
	if !ExtractInto(text, &got) {
		t.Fatal("expected extraction to succeed")
	}
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestExtractFailures(t *testing.T) {
	for _, text := range []string{"", "no json here", "{broken", "just text } {"} {
		if _, ok := Extract(text); ok {
			t.Fatalf("expected failure for %q", text)
		}
	}
}

func TestExtractIgnoresBareScalars(t *testing.T) {
	if _, ok := Extract(`"just a string"`); ok {
		t.Fatal("bare string should not extract")
	}
}
