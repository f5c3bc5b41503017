package agi

import (
	"context"
	"fmt"
	"strings"

	"tripchat/jsonx"
)

const intentPrompt = `你是一位專門處理旅遊行程的助理。

請根據使用者的發言判斷：使用者是否**表達了明確想新增一個景點到旅遊行程中**的意圖？

**請務必只回傳一個符合 JSON Schema 的 JSON 程式碼區塊，不要包含任何額外的文字或說明。**
JSON 必須包含在 ` + "```json 和 ```" + ` 之間。

JSON 格式如下：
` + "```json" + `
{
    "add_location": true,
    "place_name": ""
}
` + "```" + `
使用者說：
「%s」
`

// AddIntent is the parsed outcome of intent detection on a chat message.
type AddIntent struct {
	AddLocation bool   `json:"add_location"`
	PlaceName   string `json:"place_name"`
}

// DetectAddIntent asks the oracle whether a free-form message expresses a
// wish to add a place to the itinerary. Unparsable answers mean no intent.
func DetectAddIntent(ctx context.Context, c Completer, text string) AddIntent {
	raw := complete(ctx, c, fmt.Sprintf(intentPrompt, text))
	var out AddIntent
	if raw == "" || !jsonx.ExtractInto(raw, &out) {
		return AddIntent{}
	}
	out.PlaceName = strings.TrimSpace(out.PlaceName)
	return out
}

const placementPrompt = `你是一位智慧行程規劃助理。請判斷最適合將「%s」安排在哪一天、哪個時段。

使用者個人偏好：
🧠 喜歡：%s
⚠️ 避免：%s

目前行程內容：
%s

請回傳 JSON：
` + "```json" + `
{"day": 1, "period": "上午"}
` + "```" + `
或無法判斷時回傳：
` + "```json" + `
{"day": null, "period": null}
` + "```" + `
`

// Placement is the oracle's choice of day and period for a new place.
// Day 0 means the oracle could not decide.
type Placement struct {
	Day    int    `json:"day"`
	Period string `json:"period"`
}

// DecidePlacement picks a day and period for a place to be added, given the
// current rendered itinerary and the requesting user's preferences.
func DecidePlacement(ctx context.Context, c Completer, place, itinerary string, prefer, avoid []string) Placement {
	preferStr := joinOr(prefer, "無特定偏好")
	avoidStr := joinOr(avoid, "無特定避免項目")
	raw := complete(ctx, c, fmt.Sprintf(placementPrompt, place, preferStr, avoidStr, itinerary))
	if raw == "" {
		return Placement{}
	}
	var out struct {
		Day    *int    `json:"day"`
		Period *string `json:"period"`
	}
	if !jsonx.ExtractInto(raw, &out) || out.Day == nil || out.Period == nil {
		return Placement{}
	}
	return Placement{Day: *out.Day, Period: strings.TrimSpace(*out.Period)}
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "、")
}
