package workflow

import (
	"testing"

	"tripchat/models"
)

func TestAcceptRejectWords(t *testing.T) {
	for _, w := range []string{"是", "好", "接受", "確認", "加入", "同意", "yes", "OK", "Accept"} {
		if !isAccept(w) {
			t.Errorf("isAccept(%q) = false", w)
		}
	}
	for _, w := range []string{"否", "略過", "不要", "取消", "no", "Skip", "cancel"} {
		if !isReject(w) {
			t.Errorf("isReject(%q) = false", w)
		}
	}
	if isAccept("也許") || isReject("也許") {
		t.Error("也許 should be neither accept nor reject")
	}
}

func TestParseDayDirective(t *testing.T) {
	cases := []struct {
		in  string
		day int
		ok  bool
	}{
		{"Day3", 3, true},
		{"day1", 1, true},
		{"Day 12", 12, true},
		{"Day0", 0, false},
		{"Monday", 0, false},
		{"Day", 0, false},
		{"第3天", 0, false},
	}
	for _, c := range cases {
		day, ok := parseDayDirective(c.in)
		if ok != c.ok || day != c.day {
			t.Errorf("parseDayDirective(%q) = %d, %v; want %d, %v", c.in, day, ok, c.day, c.ok)
		}
	}
}

func TestChooseCandidate(t *testing.T) {
	cands := []models.PlaceEntry{
		{PlaceID: "a", Name: "陽明山國家公園"},
		{PlaceID: "b", Name: "貓空纜車"},
	}

	if got, ok := chooseCandidate("2", cands); !ok || got.PlaceID != "b" {
		t.Errorf("index choice = %+v, %v", got, ok)
	}
	if _, ok := chooseCandidate("3", cands); ok {
		t.Error("out-of-range index accepted")
	}
	if got, ok := chooseCandidate("貓空纜車", cands); !ok || got.PlaceID != "b" {
		t.Errorf("exact name choice = %+v, %v", got, ok)
	}
	if got, ok := chooseCandidate("貓空", cands); !ok || got.PlaceID != "b" {
		t.Errorf("substring choice = %+v, %v", got, ok)
	}
	if _, ok := chooseCandidate("不存在的地方喔", cands); ok {
		t.Error("unrelated text accepted")
	}
}
