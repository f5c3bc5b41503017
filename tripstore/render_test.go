package tripstore

import (
	"strings"
	"testing"

	"tripchat/models"
)

func TestRenderTripIdempotent(t *testing.T) {
	tr := testTrip()
	a := RenderTrip(tr)
	b := RenderTrip(tr)
	if a != b {
		t.Error("renders of an unmodified trip differ")
	}
}

func TestRenderTripContent(t *testing.T) {
	out := RenderTrip(testTrip())

	for _, want := range []string{
		"📌 行程名稱：台北三日遊",
		"=== Day 1 (2026-09-01) - 台北 ===",
		"09:00~11:00 (上午)",
		"• 故宮博物院 (museum)",
		"⏱️ 120分鐘",
		"=== Day 2 (2026-09-02) - 台北 ===",
		"無排程",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q\n%s", want, out)
		}
	}

	// chain order, not nodes-array order
	i101 := strings.Index(out, "Taipei 101")
	imkt := strings.Index(out, "士林夜市")
	if imkt < 0 || i101 < 0 || imkt > i101 {
		t.Errorf("places out of chain order: 夜市@%d, 101@%d", imkt, i101)
	}
}

func TestRenderTripEdgeCases(t *testing.T) {
	if got := RenderTrip(nil); got != "❌ 查無行程" {
		t.Errorf("nil trip render = %q", got)
	}
	if got := RenderTrip(&models.Trip{TripID: "x"}); !strings.Contains(got, "無任何天數") {
		t.Errorf("dayless trip render = %q", got)
	}
}

func TestRenderTripUnknownTimes(t *testing.T) {
	tr := testTrip()
	tr.Nodes[0].Start = ""
	tr.Nodes[0].End = ""
	if !strings.Contains(RenderTrip(tr), "??:??~??:??") {
		t.Error("missing unknown-time placeholder")
	}
}
