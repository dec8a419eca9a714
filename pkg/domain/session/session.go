package session

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
)

// Session is the escalation state of one logical conversation.
//
// Two locks guard it. The turn lock serialises whole routing calls so that the
// alert check and the final Record of one call never interleave with another
// call on the same session. The state lock only protects the counters, which
// lets Stats be served while a slow Tier-2 call holds the turn.
type Session struct {
	ID string

	policy Policy
	turn   sync.Mutex
	busy   atomic.Int32

	mu               sync.RWMutex
	totalProcessed   int
	totalBlocked     int
	window           *Window
	attackTypeCounts map[string]int
	createdAt        time.Time
	updatedAt        time.Time
}

// Stats is the read-only view exposed at the service boundary.
type Stats struct {
	SessionID          string         `json:"session_id"`
	TotalProcessed     int            `json:"total_processed"`
	TotalBlocked       int            `json:"total_blocked"`
	BlockedLast5       []bool         `json:"blocked_last_5"`
	BlockedRecentCount int            `json:"blocked_recent_count"`
	SessionAlert       bool           `json:"session_alert"`
	AttackTypeCounts   map[string]int `json:"attack_type_counts"`
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	ID               string         `json:"id"`
	TotalProcessed   int            `json:"total_processed"`
	TotalBlocked     int            `json:"total_blocked"`
	Recent           []Entry        `json:"recent"`
	AttackTypeCounts map[string]int `json:"attack_type_counts"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func New(id string, policy Policy) *Session {
	now := time.Now()
	return &Session{
		ID:               id,
		policy:           policy,
		window:           NewWindow(policy.WindowSize),
		attackTypeCounts: make(map[string]int),
		createdAt:        now,
		updatedAt:        now,
	}
}

// Restore rebuilds a session from a snapshot. Only the newest WindowSize
// entries survive if the policy shrank since the snapshot was taken.
func Restore(snap Snapshot, policy Policy) *Session {
	s := New(snap.ID, policy)
	s.totalProcessed = snap.TotalProcessed
	s.totalBlocked = snap.TotalBlocked
	for _, e := range snap.Recent {
		s.window.Push(e)
	}
	for k, v := range snap.AttackTypeCounts {
		s.attackTypeCounts[k] = v
	}
	if !snap.CreatedAt.IsZero() {
		s.createdAt = snap.CreatedAt
	}
	if !snap.UpdatedAt.IsZero() {
		s.updatedAt = snap.UpdatedAt
	}
	return s
}

// Begin enters the session's critical section. Every Begin must be paired
// with End.
func (s *Session) Begin() {
	s.busy.Add(1)
	s.turn.Lock()
}

func (s *Session) End() {
	s.turn.Unlock()
	s.busy.Add(-1)
}

// Acquire pins the session against eviction without taking the turn.
// Repositories call it while the session is still registered, so no eviction
// can slip in between lookup and Begin. Every Acquire is paired with Release.
func (s *Session) Acquire() {
	s.busy.Add(1)
}

func (s *Session) Release() {
	s.busy.Add(-1)
}

// Busy reports whether a routing call holds, waits for or has acquired the
// session.
func (s *Session) Busy() bool {
	return s.busy.Load() > 0
}

func (s *Session) Policy() Policy {
	return s.policy
}

// Record applies one finalized verdict. It is the only mutation of session
// state.
func (s *Session) Record(v verdict.Verdict, attackType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalProcessed++
	if v.IsBlock() {
		s.totalBlocked++
	}
	attackType = strings.TrimSpace(attackType)
	s.window.Push(Entry{Verdict: v, AttackType: attackType})
	if attackType != "" && !strings.EqualFold(attackType, "none") {
		s.attackTypeCounts[attackType]++
	}
	s.updatedAt = time.Now()
}

func (s *Session) BlockedRecentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window.BlockedCount()
}

// Alert is true while at least AlertThreshold of the windowed verdicts were BLOCK.
func (s *Session) Alert() bool {
	return s.BlockedRecentCount() >= s.policy.AlertThreshold
}

func (s *Session) TotalProcessed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalProcessed
}

func (s *Session) AttackTypeCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCounts(s.attackTypeCounts)
}

func (s *Session) Recent() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window.Entries()
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blocked := s.window.BlockedCount()
	return Stats{
		SessionID:          s.ID,
		TotalProcessed:     s.totalProcessed,
		TotalBlocked:       s.totalBlocked,
		BlockedLast5:       s.window.Blocked(),
		BlockedRecentCount: blocked,
		SessionAlert:       blocked >= s.policy.AlertThreshold,
		AttackTypeCounts:   copyCounts(s.attackTypeCounts),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:               s.ID,
		TotalProcessed:   s.totalProcessed,
		TotalBlocked:     s.totalBlocked,
		Recent:           s.window.Entries(),
		AttackTypeCounts: copyCounts(s.attackTypeCounts),
		CreatedAt:        s.createdAt,
		UpdatedAt:        s.updatedAt,
	}
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
