package workflow

import (
	"sync"

	"tripchat/models"
)

// session is one user's workflow state on one trip. Message handling for a
// single user is sequential (one websocket read loop), so the session itself
// needs no lock; only the registry map does. Sessions live in process memory
// and do not survive a restart.
type session struct {
	Queue      []models.Recommendation
	PendingAdd *models.PendingAdd
}

type registry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*session)}
}

func sessionKey(tripID, userID string) string {
	return tripID + "/" + userID
}

func (r *registry) get(tripID, userID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey(tripID, userID)
	s, ok := r.sessions[key]
	if !ok {
		s = &session{}
		r.sessions[key] = s
	}
	return s
}

func (r *registry) drop(tripID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey(tripID, userID))
}
