// Package recommend runs the analysis pass: the rendered trip and the
// members' preferences go to the completion oracle, whose typed suggestions
// are resolved against the itinerary store and the place-search oracle into
// presentable recommendations. The whole pass is fail-soft; any oracle or
// parse failure yields an empty list.
package recommend

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"tripchat/agi"
	"tripchat/jsonx"
	"tripchat/models"
	"tripchat/places"
	"tripchat/tripstore"
	"tripchat/utils"

	"github.com/samber/lo"
)

const (
	resultsPerKeyword = 3
	maxCandidates     = 5
	historyTail       = 1000
	defaultSlot       = "上午"
)

// PlaceResolver resolves a place name on a day to its stable identifier.
type PlaceResolver interface {
	FindPlaceID(ctx context.Context, tripID string, day int, name string) (string, error)
}

type Generator struct {
	Completer agi.Completer
	Searcher  places.Searcher
	Resolver  PlaceResolver
}

type rawSuggestion struct {
	Type           string   `json:"type"`
	Day            int      `json:"day"`
	Place          string   `json:"place"`
	SearchKeywords []string `json:"search_keywords"`
	Reason         string   `json:"reason"`
}

// Generate analyzes the trip against the members' preferences and returns
// the resolved recommendation queue, in the order the oracle produced them.
func (g *Generator) Generate(ctx context.Context, trip *models.Trip, prefer, avoid []string, chatHistory string) []models.Recommendation {
	dayCity := trip.DayCityMap()
	rendered := tripstore.RenderTrip(trip)

	raw, err := g.Completer.Complete(ctx, analysisPrompt(rendered, dayCity, prefer, avoid, chatHistory))
	if err != nil {
		log.Printf("analysis oracle failed: %v", err)
		return nil
	}

	var suggestions []rawSuggestion
	if !jsonx.ExtractInto(raw, &suggestions) {
		log.Printf("analysis reply not parsable as a suggestion array")
		return nil
	}

	seen := presentAddresses(trip)
	var out []models.Recommendation
	for _, s := range suggestions {
		city, known := dayCity[s.Day]
		switch s.Type {
		case "modify":
			if rec := g.resolveModify(ctx, trip, s, city, seen); rec != nil {
				out = append(out, rec)
			}
		case "add":
			if s.Day <= 0 || !known {
				log.Printf("add suggestion targets unknown day %d, dropped", s.Day)
				continue
			}
			if rec := g.resolveAdd(ctx, rendered, s, city, prefer, avoid, seen); rec != nil {
				out = append(out, rec)
			}
		case "delete":
			if s.Place == "" {
				continue
			}
			out = append(out, &models.DeleteRecommendation{
				Day: s.Day, City: city, Place: s.Place, Reason: s.Reason,
			})
		}
	}
	return out
}

func (g *Generator) resolveModify(ctx context.Context, trip *models.Trip, s rawSuggestion, city string, seen map[string]bool) models.Recommendation {
	placeID, err := g.Resolver.FindPlaceID(ctx, trip.TripID, s.Day, s.Place)
	if err != nil {
		log.Printf("modify suggestion for %q dropped: %v", s.Place, err)
		return nil
	}

	var candidates []models.PlaceEntry
	for _, kw := range s.SearchKeywords {
		if len(candidates) >= maxCandidates {
			break
		}
		found, err := g.Searcher.Search(ctx, kw, city)
		if err != nil {
			log.Printf("search %q failed: %v", kw, err)
			continue
		}
		for _, p := range found[:min(len(found), resultsPerKeyword)] {
			if len(candidates) >= maxCandidates {
				break
			}
			key := dedupKey(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		log.Printf("modify suggestion for %q has no candidates, dropped", s.Place)
		return nil
	}
	return &models.ModifyRecommendation{
		Day: s.Day, City: city, Place: s.Place, PlaceID: placeID,
		Candidates: candidates, Reason: s.Reason,
	}
}

func (g *Generator) resolveAdd(ctx context.Context, rendered string, s rawSuggestion, city string, prefer, avoid []string, seen map[string]bool) models.Recommendation {
	var found []models.PlaceEntry
	for _, kw := range s.SearchKeywords {
		res, err := g.Searcher.Search(ctx, kw, city)
		if err != nil {
			log.Printf("search %q failed: %v", kw, err)
			continue
		}
		found = append(found, res[:min(len(res), resultsPerKeyword)]...)
	}
	found = lo.UniqBy(found, func(p models.PlaceEntry) string { return p.PlaceID })

	var candidate *models.PlaceEntry
	for i := range found {
		key := dedupKey(found[i])
		if seen[key] {
			continue
		}
		seen[key] = true
		candidate = &found[i]
		break
	}
	if candidate == nil {
		log.Printf("add suggestion for day %d has no candidates, dropped", s.Day)
		return nil
	}

	target := models.InsertTarget{Day: s.Day, Slot: defaultSlot, Action: models.InsertAppend}
	placement := agi.DecidePlacement(ctx, g.Completer, candidate.Name, rendered, prefer, avoid)
	if placement.Day > 0 && placement.Period != "" {
		target.Day = placement.Day
		target.Slot = placement.Period
	}

	return &models.AddRecommendation{
		Day: s.Day, City: city, Candidate: *candidate, Reason: s.Reason, Target: target,
	}
}

// presentAddresses collects the normalized addresses of every place already
// on the itinerary, falling back to the name when the address is empty.
func presentAddresses(trip *models.Trip) map[string]bool {
	seen := make(map[string]bool)
	for _, n := range trip.Nodes {
		for _, p := range n.Places {
			seen[dedupKey(p)] = true
		}
	}
	return seen
}

func dedupKey(p models.PlaceEntry) string {
	if k := utils.NormalizeAddress(p.Address); k != "" {
		return k
	}
	return utils.NormalizeAddress(p.Name)
}

func analysisPrompt(rendered string, dayCity map[int]string, prefer, avoid []string, chatHistory string) string {
	days := lo.Keys(dayCity)
	sort.Ints(days)
	var cities strings.Builder
	cities.WriteString("📍 行程城市分布：\n")
	for _, day := range days {
		fmt.Fprintf(&cities, "- Day %d: %s\n", day, dayCity[day])
	}

	preferList := bulletList(prefer, "- 無特定偏好")
	avoidList := bulletList(avoid, "- 無特定避免項目")

	history := chatHistory
	if r := []rune(history); len(r) > historyTail {
		history = string(r[:historyTail])
	}
	if history == "" {
		history = "無聊天紀錄"
	}

	return fmt.Sprintf(`你是一位智慧旅遊顧問。請用兩階段分析使用者的行程：

%s
🧠 **使用者偏好：**
✅ 喜歡：%s
❌ 避免：%s

=== 階段一：檢查衝突 ===
1. 仔細檢查「行程內容」中的每個景點
2. 判斷是否與「避免」偏好衝突
3. 找出需要修改或刪除的景點

=== 階段二：生成建議 ===
1. 對於衝突的景點，提供「修改」建議（用 search_keywords）
2. 根據「喜歡」偏好，提供「新增」建議（用 search_keywords）
3. 對於明顯不適合的景點，提供「刪除」建議

⚠️ **重要規則：**
- 優先處理「避免」偏好的衝突
- 你只需提供「搜尋關鍵字」，不需要具體景點名稱
- 系統會用關鍵字在對應城市搜尋
- search_keywords 應該反映使用者的「喜歡」偏好

**建議格式：**
`+"```json"+`
[
    {"type": "modify", "day": 1, "place": "原景點名稱", "search_keywords": ["關鍵字1", "關鍵字2"], "reason": "衝突原因與替換方向"},
    {"type": "delete", "day": 2, "place": "景點名稱", "reason": "刪除原因"},
    {"type": "add", "day": 3, "search_keywords": ["關鍵字"], "reason": "新增原因"}
]
`+"```"+`

=== 使用者偏好詳情 ===
🧠 整體喜好：
%s

⚠️ 整體避免（請優先處理這些衝突）：
%s

=== 目前行程內容 ===
%s

=== 聊天記錄參考 ===
%s
`, cities.String(), joinOr(prefer), joinOr(avoid), preferList, avoidList, rendered, history)
}

func bulletList(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	lines := lo.Map(items, func(s string, _ int) string { return "- " + s })
	return strings.Join(lines, "\n")
}

func joinOr(items []string) string {
	if len(items) == 0 {
		return "無"
	}
	return strings.Join(items, "、")
}
