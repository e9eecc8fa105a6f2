// Package shopping holds the shopping state: the current list, the archived
// history and the waste reports. All changes go through Store, which applies
// each operation as a reduction over the previous state and then notifies its
// listeners.
package shopping

import (
	"sync"
	"time"

	"github.com/dukerupert/compras/internal/model"
	"github.com/google/uuid"
)

const (
	// DefaultListName names a list created implicitly by AddItem.
	DefaultListName = "Lista de Compras"
	// NewListName names a list started without an explicit name.
	NewListName = "Nova Lista"
)

// Op names a store operation.
type Op string

const (
	OpAddItem           Op = "add_item"
	OpToggleItem        Op = "toggle_item"
	OpRemoveItem        Op = "remove_item"
	OpCompleteList      Op = "complete_list"
	OpStartNewList      Op = "start_new_list"
	OpAddWasteReport    Op = "add_waste_report"
	OpClearHistory      Op = "clear_history"
	OpClearWasteReports Op = "clear_waste_reports"
	OpLoadData          Op = "load_data"
)

// Event describes a completed store operation.
type Event struct {
	Op Op
	At time.Time
}

// Listener receives every event together with the resulting state.
// Listeners run while the store is locked: they must not block and must not
// call back into the Store. The state is a private copy.
type Listener func(Event, model.State)

// Partial is a partial snapshot handed to LoadData. Only the fields whose Set
// flag is true overwrite the live state.
type Partial struct {
	CurrentList     *model.ShoppingList
	SetCurrentList  bool
	ShoppingHistory []model.ShoppingList
	SetHistory      bool
	WasteReports    []model.WasteReport
	SetWasteReports bool
}

// Store is the single source of truth for shopping state.
type Store struct {
	mu        sync.Mutex
	state     model.State
	listeners []Listener
	now       func() time.Time
	newID     func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for createdAt, completedAt and
// report dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New returns a Store with empty state.
func New(opts ...Option) *Store {
	s := &Store{
		state: model.State{
			ShoppingHistory: []model.ShoppingList{},
			WasteReports:    []model.WasteReport{},
		},
		now:   func() time.Time { return time.Now().UTC() },
		newID: newTimeOrderedID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Subscribe registers a listener for state changes.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// State returns a deep copy of the current state.
func (s *Store) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// CurrentList returns a copy of the current list, or nil when there is none.
func (s *Store) CurrentList() *model.ShoppingList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentList == nil {
		return nil
	}
	l := s.state.CurrentList.Clone()
	return &l
}

func (s *Store) History() []model.ShoppingList {
	return s.State().ShoppingHistory
}

func (s *Store) WasteReports() []model.WasteReport {
	return s.State().WasteReports
}

// dispatch applies a reduction and notifies listeners. Every operation
// notifies, including no-ops.
func (s *Store) dispatch(op Op, reduce func(st model.State, now time.Time) model.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.state = reduce(s.state, now)

	if len(s.listeners) == 0 {
		return
	}
	ev := Event{Op: op, At: now}
	for _, l := range s.listeners {
		l(ev, s.state.Clone())
	}
}

// AddItem appends a new item to the current list. When there is no current
// list one is created first. Blank names are the caller's responsibility.
func (s *Store) AddItem(draft model.ItemDraft) {
	s.dispatch(OpAddItem, func(st model.State, now time.Time) model.State {
		var listID string
		if st.CurrentList == nil {
			listID = s.newID()
		}
		return addItem(st, draft, listID, s.newID(), now)
	})
}

// ToggleItem flips the completed flag of an item in the current list.
func (s *Store) ToggleItem(itemID string) {
	s.dispatch(OpToggleItem, func(st model.State, now time.Time) model.State {
		return toggleItem(st, itemID, now)
	})
}

// RemoveItem deletes an item from the current list.
func (s *Store) RemoveItem(itemID string) {
	s.dispatch(OpRemoveItem, func(st model.State, _ time.Time) model.State {
		return removeItem(st, itemID)
	})
}

// CompleteList archives the current list at the head of the history.
func (s *Store) CompleteList() {
	s.dispatch(OpCompleteList, func(st model.State, now time.Time) model.State {
		return completeList(st, now)
	})
}

// StartNewList replaces the current list with an empty one. An unarchived
// current list is discarded.
func (s *Store) StartNewList(name string) {
	s.dispatch(OpStartNewList, func(st model.State, now time.Time) model.State {
		return startNewList(st, name, s.newID(), now)
	})
}

// AddWasteReport records a waste report at the head of the report sequence.
func (s *Store) AddWasteReport(draft model.WasteDraft) {
	s.dispatch(OpAddWasteReport, func(st model.State, now time.Time) model.State {
		return addWasteReport(st, draft, s.newID(), now)
	})
}

func (s *Store) ClearHistory() {
	s.dispatch(OpClearHistory, func(st model.State, _ time.Time) model.State {
		st.ShoppingHistory = []model.ShoppingList{}
		return st
	})
}

func (s *Store) ClearWasteReports() {
	s.dispatch(OpClearWasteReports, func(st model.State, _ time.Time) model.State {
		st.WasteReports = []model.WasteReport{}
		return st
	})
}

// LoadData overwrites the fields present in p.
func (s *Store) LoadData(p Partial) {
	s.dispatch(OpLoadData, func(st model.State, _ time.Time) model.State {
		return loadData(st, p)
	})
}
