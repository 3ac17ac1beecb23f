package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Jep4/diabete-random-generate/internal/adgate"
	"github.com/Jep4/diabete-random-generate/internal/exchange"
	"github.com/Jep4/diabete-random-generate/internal/nutrition"
)

/* ─── Per-session page state ─────────────────────────────────────────── */

// session is everything one visitor's page shows: the form as typed, the last
// calorie result, the current meal and the ad gate. Nothing here outlives the
// session.
type session struct {
	id   string
	gate *adgate.Gate

	mu       sync.Mutex
	form     nutrition.Input
	profile  *nutrition.Profile
	result   *nutrition.Result
	notice   string // one-shot validation message, cleared once rendered
	meal     *exchange.Meal
	lastSeen time.Time
}

// sessionView is a consistent copy of a session for rendering and JSON.
type sessionView struct {
	Form    nutrition.Input    `json:"form"`
	Profile *nutrition.Profile `json:"profile,omitempty"`
	Result  *nutrition.Result  `json:"result,omitempty"`
	Notice  string             `json:"notice,omitempty"`
	Gate    adgate.Snapshot    `json:"ad_gate"`
	Meal    *exchange.Meal     `json:"meal,omitempty"`
}

// ShowMeal reports whether the meal may be revealed: the ad is never skipped.
func (v sessionView) ShowMeal() bool {
	return v.Meal != nil && v.Gate.State != adgate.Counting
}

// view copies the session. takeNotice clears the notice so it shows once.
func (s *session) view(takeNotice bool) sessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := sessionView{
		Form:    s.form,
		Profile: s.profile,
		Result:  s.result,
		Notice:  s.notice,
		Gate:    s.gate.Snapshot(),
	}
	if s.meal != nil {
		m := *s.meal
		v.Meal = &m
	}
	if takeNotice {
		s.notice = ""
	}
	return v
}

// calculate runs the calculator on in. On failure the previous result stays
// and the notice is set; nothing is partially updated.
func (s *session) calculate(in nutrition.Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calculateLocked(in)
}

func (s *session) calculateLocked(in nutrition.Input) error {
	s.form = in
	p, r, err := nutrition.CalculateInput(in)
	if err != nil {
		s.notice = nutrition.NoticeFor(err)
		return err
	}
	s.profile = &p
	s.result = &r
	s.notice = ""
	return nil
}

// generate starts (or restarts) the ad countdown. The calculator runs first
// when no result exists yet; a validation failure there only raises the
// notice. The old meal is cleared so it cannot show behind the ad.
func (s *session) generate(in *nutrition.Input, countdown int, sample func() exchange.Meal) (calcErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in != nil {
		s.form = *in
	}
	if s.result == nil {
		calcErr = s.calculateLocked(s.form)
	}
	s.meal = nil
	s.gate.Start(countdown, func() {
		m := sample()
		s.mu.Lock()
		s.meal = &m
		s.mu.Unlock()
	})
	return calcErr
}

// close cancels any pending countdown. Safe to call more than once.
func (s *session) close() {
	s.gate.Stop()
}

/* ─── Session store ──────────────────────────────────────────────────── */

// sessionStore keeps live sessions in memory and evicts idle ones.
type sessionStore struct {
	ttl     time.Duration
	now     func() time.Time
	newGate func() *adgate.Gate

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(ttl time.Duration, newGate func() *adgate.Gate) *sessionStore {
	if newGate == nil {
		newGate = func() *adgate.Gate { return adgate.New() }
	}
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		newGate:  newGate,
		sessions: make(map[string]*session),
	}
}

// get returns the live session for id, or a new one when id is unknown or
// expired. The bool is true when a new session was created.
func (st *sessionStore) get(id string) (*session, bool) {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		s.mu.Lock()
		expired := now.Sub(s.lastSeen) > st.ttl
		if !expired {
			s.lastSeen = now
		}
		s.mu.Unlock()
		if !expired {
			return s, false
		}
		delete(st.sessions, id)
		s.close()
	}

	s := &session{
		id:       uuid.New().String(),
		gate:     st.newGate(),
		lastSeen: now,
	}
	st.sessions[s.id] = s
	return s, true
}

// remove tears a session down. Unknown IDs are ignored.
func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.close()
	}
	return ok
}

// sweep evicts sessions idle for longer than the TTL and returns how many.
func (st *sessionStore) sweep() int {
	now := st.now()
	var expired []*session

	st.mu.Lock()
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle > st.ttl {
			delete(st.sessions, id)
			expired = append(expired, s)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

// closeAll tears down every session; used on shutdown.
func (st *sessionStore) closeAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*session)
	st.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// runJanitor sweeps every interval until ctx is done.
func (st *sessionStore) runJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.sweep(); n > 0 {
				log.Printf("[sessionJanitor] evicted %d idle session(s), %d live", n, st.len())
			}
		}
	}
}
