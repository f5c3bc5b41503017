package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tripchat/agi"
	"tripchat/models"
	"tripchat/mq"
	"tripchat/places"
	"tripchat/prefs"
	"tripchat/tripstore"
)

// Store is the slice of the itinerary store the workflow mutates through.
type Store interface {
	Get(ctx context.Context, tripID string) (*models.Trip, error)
	Render(ctx context.Context, tripID string) (string, error)
	Insert(ctx context.Context, tripID string, day int, slot string, place models.PlaceEntry, action models.InsertAction, refNodeID string) (string, error)
	Remove(ctx context.Context, tripID string, day int, name string) (string, error)
	Modify(ctx context.Context, tripID string, day int, placeID string, fields map[string]any) error
}

// Analyzer produces the recommendation queue for a trip.
type Analyzer interface {
	Generate(ctx context.Context, trip *models.Trip, prefer, avoid []string, chatHistory string) []models.Recommendation
}

// PrefStore reads and accumulates member preferences.
type PrefStore interface {
	Update(ctx context.Context, tripID, userID string, prefer, avoid []string) error
	ForUser(ctx context.Context, tripID, userID string) (models.Preferences, error)
	ForTrip(ctx context.Context, tripID string) (prefer, avoid []string, err error)
}

// Engine runs the recommendation workflow. HandleMessage returns the
// assistant replies for the room; a nil slice means the message was ordinary
// conversation and the caller should just broadcast it.
type Engine struct {
	Store     Store
	Completer agi.Completer
	Searcher  places.Searcher
	Analyzer  Analyzer
	Prefs     PrefStore

	// Emit publishes workflow events; nil disables publishing (tests).
	Emit func(ctx context.Context, ev mq.Event)

	// History supplies recent room transcript for oracle prompts; optional.
	History func(ctx context.Context, tripID string) string

	sessions *registry
}

func NewEngine(store Store, completer agi.Completer, searcher places.Searcher, analyzer Analyzer, pref PrefStore) *Engine {
	return &Engine{
		Store:     store,
		Completer: completer,
		Searcher:  searcher,
		Analyzer:  analyzer,
		Prefs:     pref,
		Emit:      mq.Emit,
		sessions:  newRegistry(),
	}
}

func (e *Engine) emit(ctx context.Context, name, tripID, userID, detail string) {
	if e.Emit == nil {
		return
	}
	e.Emit(ctx, mq.Event{Name: name, TripID: tripID, UserID: userID, Detail: detail})
}

func (e *Engine) history(ctx context.Context, tripID string) string {
	if e.History == nil {
		return ""
	}
	return e.History(ctx, tripID)
}

// EndSession discards a user's workflow state, called when they leave the room.
func (e *Engine) EndSession(tripID, userID string) {
	e.sessions.drop(tripID, userID)
}

// HandleMessage feeds one inbound chat message through the state machine.
func (e *Engine) HandleMessage(ctx context.Context, tripID, userID, text string) []string {
	text = strings.TrimSpace(text)
	sess := e.sessions.get(tripID, userID)

	if isShowCommand(text) {
		return e.showItinerary(ctx, tripID, userID)
	}
	if sess.PendingAdd != nil {
		return e.handlePendingAdd(ctx, tripID, userID, sess, text)
	}
	if len(sess.Queue) > 0 {
		return e.handlePresenting(ctx, tripID, userID, sess, text)
	}
	if isAnalyzeCommand(text) {
		return e.analyze(ctx, tripID, userID, sess)
	}
	return e.handleIdle(ctx, tripID, userID, sess, text)
}

func (e *Engine) showItinerary(ctx context.Context, tripID, userID string) []string {
	rendered, err := e.Store.Render(ctx, tripID)
	if err != nil {
		return []string{"❗ 找不到此行程（trip_id 不存在或已被刪除）。"}
	}
	e.emit(ctx, mq.EventTripRendered, tripID, userID, "")
	return []string{rendered, "🧭 已送出目前行程資訊到畫面。"}
}

func (e *Engine) handlePendingAdd(ctx context.Context, tripID, userID string, sess *session, text string) []string {
	pending := sess.PendingAdd

	switch {
	case isAccept(text):
		rendered, _ := e.Store.Render(ctx, tripID)
		p, err := e.Prefs.ForUser(ctx, tripID, userID)
		if err != nil {
			log.Printf("load preferences for placement: %v", err)
		}
		placement := agi.DecidePlacement(ctx, e.Completer, pending.PlaceName, rendered, p.Prefer, p.Avoid)
		if placement.Day <= 0 || placement.Period == "" {
			return []string{fmt.Sprintf("🤔 請問您希望將「%s」安排在哪一天呢？請回覆如「Day1」、「Day2」等。", pending.PlaceName)}
		}
		sess.PendingAdd = nil
		return []string{e.insertPending(ctx, tripID, userID, pending, placement.Day, placement.Period)}

	case isReject(text):
		sess.PendingAdd = nil
		return []string{"👌 好的，已取消新增景點。"}
	}

	if day, ok := parseDayDirective(text); ok {
		sess.PendingAdd = nil
		return []string{e.insertPending(ctx, tripID, userID, pending, day, "")}
	}

	return []string{fmt.Sprintf("🤔 請回覆「加入」、「略過」，或指定天數如「Day1」來新增「%s」。", pending.PlaceName)}
}

func (e *Engine) insertPending(ctx context.Context, tripID, userID string, pending *models.PendingAdd, day int, slot string) string {
	if slot == "" {
		slot = "上午"
	}
	_, err := e.Store.Insert(ctx, tripID, day, slot, pending.Candidate, models.InsertAppend, "")
	if err != nil {
		e.emit(ctx, mq.EventMutationFailed, tripID, userID, err.Error())
		return fmt.Sprintf("❗ 新增「%s」時發生錯誤，請再試一次。", pending.PlaceName)
	}
	e.emit(ctx, mq.EventMutationApplied, tripID, userID, "insert "+pending.PlaceName)
	return fmt.Sprintf("✅ 已將「%s」新增到 Day%d 的%s！", pending.PlaceName, day, slot)
}

func (e *Engine) handlePresenting(ctx context.Context, tripID, userID string, sess *session, text string) []string {
	switch rec := sess.Queue[0].(type) {
	case *models.ModifyRecommendation:
		return e.handleModifyReply(ctx, tripID, userID, sess, rec, text)
	case *models.AddRecommendation, *models.DeleteRecommendation:
		return e.handleAcceptReject(ctx, tripID, userID, sess, text)
	}
	// unknown head, drop it
	return e.advance(ctx, tripID, userID, sess, nil)
}

func (e *Engine) handleModifyReply(ctx context.Context, tripID, userID string, sess *session, rec *models.ModifyRecommendation, text string) []string {
	if isSkip(text) {
		msg := fmt.Sprintf("✅ 已略過 Day%d 對「%s」的修改建議。", rec.Day, rec.Place)
		return e.advance(ctx, tripID, userID, sess, []string{msg})
	}

	choice, ok := chooseCandidate(text, rec.Candidates)
	if !ok {
		return []string{
			"⚠️ 無效的選擇，請回覆數字編號 (如: 1) 或 略過。",
			present(rec),
		}
	}

	err := e.Store.Modify(ctx, tripID, rec.Day, rec.PlaceID, tripstore.EntryFields(choice))
	var msg string
	if err != nil {
		e.emit(ctx, mq.EventMutationFailed, tripID, userID, err.Error())
		msg = fmt.Sprintf("❗ 修改「%s」為「%s」時發生錯誤，請再試一次。", rec.Place, choice.Name)
	} else {
		e.emit(ctx, mq.EventMutationApplied, tripID, userID, "modify "+rec.Place)
		msg = fmt.Sprintf("✅ 已將 Day%d 的「%s」修改為「%s」。", rec.Day, rec.Place, choice.Name)
	}
	return e.advance(ctx, tripID, userID, sess, []string{msg})
}

func (e *Engine) handleAcceptReject(ctx context.Context, tripID, userID string, sess *session, text string) []string {
	if isReject(text) {
		return e.advance(ctx, tripID, userID, sess, []string{"👌 已略過此建議。"})
	}
	if !isAccept(text) {
		return []string{present(sess.Queue[0])}
	}

	var msg string
	switch rec := sess.Queue[0].(type) {
	case *models.DeleteRecommendation:
		removed, err := e.Store.Remove(ctx, tripID, rec.Day, rec.Place)
		if err != nil {
			e.emit(ctx, mq.EventMutationFailed, tripID, userID, err.Error())
			msg = fmt.Sprintf("❗ 刪除「%s」時發生錯誤。", rec.Place)
		} else {
			e.emit(ctx, mq.EventMutationApplied, tripID, userID, "remove "+removed)
			msg = fmt.Sprintf("✅ 已從 Day%d 刪除「%s」。", rec.Day, removed)
		}
	case *models.AddRecommendation:
		_, err := e.Store.Insert(ctx, tripID, rec.Target.Day, rec.Target.Slot, rec.Candidate, rec.Target.Action, rec.Target.RefNodeID)
		if err != nil {
			e.emit(ctx, mq.EventMutationFailed, tripID, userID, err.Error())
			msg = fmt.Sprintf("❗ 新增「%s」時發生錯誤：%v。", rec.Candidate.Name, err)
		} else {
			e.emit(ctx, mq.EventMutationApplied, tripID, userID, "insert "+rec.Candidate.Name)
			msg = fmt.Sprintf("✅ 已將「%s」新增到 Day%d。", rec.Candidate.Name, rec.Target.Day)
		}
	}
	// accepted items are consumed whether or not the mutation stuck
	return e.advance(ctx, tripID, userID, sess, []string{msg})
}

// advance pops the queue head and presents the next item, or closes out the
// queue when it is empty.
func (e *Engine) advance(ctx context.Context, tripID, userID string, sess *session, replies []string) []string {
	sess.Queue = sess.Queue[1:]
	if len(sess.Queue) == 0 {
		return append(replies, "✅ 所有建議已處理完畢。")
	}
	e.emit(ctx, mq.EventRecommendationPresented, tripID, userID, sess.Queue[0].Kind())
	return append(replies, present(sess.Queue[0]))
}

func (e *Engine) analyze(ctx context.Context, tripID, userID string, sess *session) []string {
	sess.Queue = nil
	sess.PendingAdd = nil

	trip, err := e.Store.Get(ctx, tripID)
	if err != nil {
		return []string{fmt.Sprintf("❗ 分析與優化失敗：%v", err)}
	}
	prefer, avoid, err := e.Prefs.ForTrip(ctx, tripID)
	if err != nil {
		log.Printf("load trip preferences: %v", err)
	}

	recs := e.Analyzer.Generate(ctx, trip, prefer, avoid, e.history(ctx, tripID))
	if len(recs) == 0 {
		return []string{"👌 我已仔細評估過您的行程，目前看來規劃得非常符合您的偏好，沒有需要修改的地方！"}
	}

	sess.Queue = recs
	e.emit(ctx, mq.EventRecommendationPresented, tripID, userID, recs[0].Kind())
	return []string{present(recs[0])}
}

func (e *Engine) handleIdle(ctx context.Context, tripID, userID string, sess *session, text string) []string {
	intent := agi.DetectAddIntent(ctx, e.Completer, text)
	if intent.AddLocation && intent.PlaceName != "" {
		candidates, err := e.Searcher.Search(ctx, intent.PlaceName, "")
		if err != nil {
			log.Printf("search for %q failed: %v", intent.PlaceName, err)
		}
		if len(candidates) == 0 {
			return []string{fmt.Sprintf("❗ 很抱歉，在行程範圍內找不到「%s」，請再確認名稱或提供更明確的位置。", intent.PlaceName)}
		}
		top := candidates[0]
		name := top.Name
		if name == "" {
			name = intent.PlaceName
		}
		sess.Queue = nil
		sess.PendingAdd = &models.PendingAdd{PlaceName: name, Candidate: top}
		return []string{foundPlaceMessage(top)}
	}

	// not a workflow message; harvest preferences and let it flow as chat
	if ex := prefs.Extract(ctx, e.Completer, text); len(ex.Prefer) > 0 || len(ex.Avoid) > 0 {
		if err := e.Prefs.Update(ctx, tripID, userID, ex.Prefer, ex.Avoid); err != nil {
			log.Printf("update preferences: %v", err)
		}
	}
	return nil
}
