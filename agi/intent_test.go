package agi

import (
	"context"
	"errors"
	"testing"
)

type cannedCompleter struct {
	reply string
	err   error
}

func (c cannedCompleter) Complete(_ context.Context, _ string) (string, error) {
	return c.reply, c.err
}

func TestDetectAddIntentParsesFencedJSON(t *testing.T) {
	c := cannedCompleter{reply: "```json\n{\"add_location\": true, \"place_name\": \" 九份老街 \"}\n```"}
	got := DetectAddIntent(context.Background(), c, "我想加九份老街")
	if !got.AddLocation || got.PlaceName != "九份老街" {
		t.Errorf("got %+v", got)
	}
}

func TestDetectAddIntentOracleFailure(t *testing.T) {
	c := cannedCompleter{err: errors.New("boom")}
	if got := DetectAddIntent(context.Background(), c, "hello"); got.AddLocation {
		t.Errorf("expected no intent, got %+v", got)
	}
}

func TestDetectAddIntentGarbageReply(t *testing.T) {
	c := cannedCompleter{reply: "sure, sounds great!"}
	if got := DetectAddIntent(context.Background(), c, "hello"); got.AddLocation {
		t.Errorf("expected no intent, got %+v", got)
	}
}

func TestDecidePlacement(t *testing.T) {
	c := cannedCompleter{reply: "{\"day\": 2, \"period\": \"下午\"}"}
	got := DecidePlacement(context.Background(), c, "故宮", "Day1: ...", nil, nil)
	if got.Day != 2 || got.Period != "下午" {
		t.Errorf("got %+v", got)
	}
}

func TestDecidePlacementNulls(t *testing.T) {
	c := cannedCompleter{reply: "```json\n{\"day\": null, \"period\": null}\n```"}
	if got := DecidePlacement(context.Background(), c, "故宮", "", nil, nil); got.Day != 0 {
		t.Errorf("expected undecided, got %+v", got)
	}
}
