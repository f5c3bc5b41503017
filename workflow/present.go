package workflow

import (
	"fmt"
	"strings"

	"tripchat/models"
)

const maxShownCandidates = 5

func formatPlace(p models.PlaceEntry) string {
	parts := []string{p.Name}
	if p.OpenText != "" {
		parts = append(parts, "🕐 "+p.OpenText)
	}
	if p.Address != "" {
		parts = append(parts, "📌 "+p.Address)
	}
	if p.MapURL != "" {
		parts = append(parts, "🔗 "+p.MapURL)
	}
	return strings.Join(parts, "｜")
}

// present builds the chat message shown when a recommendation becomes the
// queue head.
func present(rec models.Recommendation) string {
	switch r := rec.(type) {
	case *models.DeleteRecommendation:
		return fmt.Sprintf(
			"🤔 **建議刪除景點**\n\n"+
				"📍 地點：Day%d 的「%s」\n"+
				"❌ 建議原因：%s\n\n"+
				"您是否接受這個建議？請回覆「是」或「否」。",
			r.Day, r.Place, reasonOr(r.Reason))

	case *models.AddRecommendation:
		slot := r.Target.Slot
		if slot == "" {
			slot = "合適時段"
		}
		return fmt.Sprintf(
			"🌟 **建議新增景點：%s**\n\n"+
				"📍 建議新增至：Day%d 的 %s\n"+
				"✅ 建議原因：%s\n"+
				"ℹ️ 詳細資訊：%s\n\n"+
				"您是否接受這個建議？請回覆「是」或「否」。",
			r.Candidate.Name, r.Target.Day, slot, reasonOr(r.Reason), formatPlace(r.Candidate))

	case *models.ModifyRecommendation:
		if len(r.Candidates) == 0 {
			return fmt.Sprintf(
				"🔄 **建議修改景點**\n\n"+
					"📍 地點：Day%d 的「%s」\n"+
					"🔍 建議原因：%s\n\n"+
					"目前沒有找到合適的替代選項，您可以告訴我偏好，我再精調搜尋。",
				r.Day, r.Place, reasonOr(r.Reason))
		}
		var lines []string
		for i, c := range r.Candidates {
			if i == maxShownCandidates {
				break
			}
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatPlace(c)))
		}
		return fmt.Sprintf(
			"🔄 **建議替換景點**\n\n"+
				"📍 原景點：Day%d 的「%s」\n"+
				"🔍 替換原因：%s\n\n"+
				"🎯 **推薦替代選項：**\n%s\n\n"+
				"請回覆想選擇的編號（例如：1），或回覆「略過」。",
			r.Day, r.Place, reasonOr(r.Reason), strings.Join(lines, "\n"))
	}
	return ""
}

func reasonOr(reason string) string {
	if reason == "" {
		return "（無法取得原因摘要）"
	}
	return reason
}

func foundPlaceMessage(p models.PlaceEntry) string {
	addr := p.Address
	if addr == "" {
		addr = fmt.Sprintf("%v,%v", p.Lat, p.Lng)
	}
	return fmt.Sprintf(
		"📍 找到「%s」\n"+
			"   📌 地址：%s\n"+
			"   🔗 地圖：%s\n"+
			"要把它加入行程嗎？請回覆「加入」或「略過」。",
		p.Name, addr, p.MapURL)
}
