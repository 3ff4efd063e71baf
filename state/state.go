package state

import (
	"sync"

	"github.com/yukti-app/walletd/core"
)

// Store holds the process-wide connection state. The session manager is the
// only writer of connection fields; transport code updates the balance field
// through the same store so readers always see one coherent snapshot.
type Store struct {
	mu     sync.RWMutex
	cur    core.ConnectionState
	subs   map[int]func(core.ConnectionState)
	nextID int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(core.ConnectionState))}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() core.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Subscribe registers fn to be called with every new snapshot. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func(core.ConnectionState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetConnecting marks a lifecycle operation as in flight and clears any
// previous error.
func (s *Store) SetConnecting() {
	s.update(func(cs *core.ConnectionState) {
		cs.Connecting = true
		cs.LastError = ""
	})
}

// SetConnected records a live session for address. The cached balance is kept
// so a silent reauthorization does not blank the UI.
func (s *Store) SetConnected(address string) {
	s.update(func(cs *core.ConnectionState) {
		cs.Connected = true
		cs.Address = address
		cs.Connecting = false
		cs.LastError = ""
	})
}

// SetDisconnected resets to the empty, disconnected state.
func (s *Store) SetDisconnected() {
	s.update(func(cs *core.ConnectionState) {
		*cs = core.ConnectionState{}
	})
}

// SetError records a failure message for passive observers and clears the
// in-flight flags.
func (s *Store) SetError(msg string) {
	s.update(func(cs *core.ConnectionState) {
		cs.LastError = msg
		cs.Connecting = false
		cs.Loading = false
	})
}

// ClearConnecting drops the in-flight flag without touching anything else.
func (s *Store) ClearConnecting() {
	s.update(func(cs *core.ConnectionState) {
		cs.Connecting = false
	})
}

func (s *Store) SetLoading(loading bool) {
	s.update(func(cs *core.ConnectionState) {
		cs.Loading = loading
	})
}

func (s *Store) SetBalance(sol float64) {
	s.update(func(cs *core.ConnectionState) {
		cs.SolBalance = sol
	})
}

func (s *Store) update(mutate func(*core.ConnectionState)) {
	s.mu.Lock()
	mutate(&s.cur)
	snapshot := s.cur
	subs := make([]func(core.ConnectionState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	// Notify outside the lock so a subscriber can read the store.
	for _, fn := range subs {
		fn(snapshot)
	}
}
