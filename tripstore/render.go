package tripstore

import (
	"fmt"
	"strings"

	"tripchat/models"
)

// RenderTrip turns a trip document into the plain-text transcript shown in
// chat and fed to the analysis oracle. Pure function of the document: the
// same trip always renders to the same bytes.
func RenderTrip(t *models.Trip) string {
	if t == nil {
		return "❌ 查無行程"
	}
	if len(t.Days) == 0 {
		return "❌ 查無行程 (無任何天數安排)"
	}

	var b strings.Builder
	title := t.Title
	if title == "" {
		title = "未命名"
	}
	budget := "N/A"
	if t.TotalBudget > 0 {
		budget = fmt.Sprintf("%d", t.TotalBudget)
	}
	fmt.Fprintf(&b, "📌 行程名稱：%s\n", title)
	fmt.Fprintf(&b, "📅 日期：%s 至 %s\n", t.StartDate, t.EndDate)
	fmt.Fprintf(&b, "💰 預算：%s 元\n", budget)
	b.WriteString("📍 每日行程安排：\n")

	for _, d := range t.Days {
		fmt.Fprintf(&b, "\n=== Day %d (%s) - %s ===\n", d.Day, d.Date, d.City)

		chain := walkDay(t, d.Day)
		if len(chain) == 0 {
			b.WriteString("無排程\n")
			continue
		}

		for _, n := range chain {
			start := n.Start
			if start == "" {
				start = models.UnknownTime
			}
			end := n.End
			if end == "" {
				end = models.UnknownTime
			}
			fmt.Fprintf(&b, "%s~%s (%s)\n", start, end, n.Slot)

			for _, p := range n.Places {
				name := p.Name
				if name == "" {
					name = "未填活動"
				}
				fmt.Fprintf(&b, "  • %s (%s)\n", name, p.Category)
				fmt.Fprintf(&b, " ⏱️ %d分鐘\n", p.StayMinutes)
			}
		}
	}

	return strings.TrimSpace(b.String())
}
