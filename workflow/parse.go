// Package workflow drives the per-user recommendation state machine. A user
// is either idle, confirming a pending place addition, or stepping through a
// queue of recommendations; inbound chat text moves them between those
// states. Parsing is pure; all effects go through the narrow interfaces on
// Engine.
package workflow

import (
	"regexp"
	"strconv"
	"strings"

	"tripchat/models"
)

var acceptWords = map[string]bool{
	"是": true, "好": true, "接受": true, "確認": true, "加入": true, "同意": true,
	"yes": true, "ok": true, "accept": true, "add": true,
}

var rejectWords = map[string]bool{
	"否": true, "略過": true, "不要": true, "取消": true,
	"no": true, "skip": true, "cancel": true,
}

var skipWords = map[string]bool{
	"略過": true, "skip": true, "pass": true,
}

var showCommands = map[string]bool{
	"行程": true, "我的行程": true, "查看行程": true,
}

var analyzeCommands = map[string]bool{
	"分析": true, "更換": true,
}

var dayDirective = regexp.MustCompile(`^[Dd]ay\s*(\d+)$`)

func isAccept(t string) bool { return acceptWords[strings.ToLower(t)] }
func isReject(t string) bool { return rejectWords[strings.ToLower(t)] }
func isSkip(t string) bool   { return skipWords[strings.ToLower(t)] }

func isShowCommand(t string) bool    { return showCommands[t] }
func isAnalyzeCommand(t string) bool { return analyzeCommands[t] }

// parseDayDirective recognizes replies like "Day3" or "day 2".
func parseDayDirective(t string) (int, bool) {
	m := dayDirective.FindStringSubmatch(t)
	if m == nil {
		return 0, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day <= 0 {
		return 0, false
	}
	return day, true
}

// chooseCandidate resolves a reply against a candidate list, first as a
// 1-based index, then by name equality or substring either direction.
func chooseCandidate(t string, candidates []models.PlaceEntry) (models.PlaceEntry, bool) {
	if idx, err := strconv.Atoi(t); err == nil {
		if idx >= 1 && idx <= len(candidates) {
			return candidates[idx-1], true
		}
		return models.PlaceEntry{}, false
	}

	lower := strings.ToLower(t)
	for _, c := range candidates {
		name := strings.ToLower(c.Name)
		if name == "" {
			continue
		}
		if lower == name || strings.Contains(name, lower) || strings.Contains(lower, name) {
			return c, true
		}
	}
	return models.PlaceEntry{}, false
}
