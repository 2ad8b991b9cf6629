// Package store implements the record store: the single owner of the
// employee collection. Every mutation is written to local storage before
// it returns, and listeners are told about it afterwards.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/events"
	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/gartstein/staffdir/internal/directory/storage"
	"go.uber.org/zap"
)

// Clock provides the current time used to derive identifiers.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Listener is called after a successful mutation. Listeners run on the
// goroutine that performed the mutation, after the store lock is released.
type Listener func(events.Event)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for new identifiers.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// Store owns the employee collection and keeps local storage in step with it.
type Store struct {
	storage storage.Storage
	logger  *zap.Logger
	clock   Clock

	mu        sync.RWMutex
	employees []models.Employee
	lastID    int64

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// New constructs a Store over s and loads the persisted collection.
func New(ctx context.Context, s storage.Storage, logger *zap.Logger, opts ...Option) (*Store, error) {
	st := &Store{
		storage:   s,
		logger:    logger.Named("employee_store"),
		clock:     realClock{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(st)
	}
	if err := st.Load(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// DefaultEmployees is the demo collection written when storage holds no
// usable data.
func DefaultEmployees() []models.Employee {
	return []models.Employee{
		{
			ID:               1,
			FirstName:        "Ali",
			LastName:         "Balta",
			Email:            "alibalta@company.com",
			Phone:            "1234567890",
			Department:       models.Tech,
			Position:         models.Senior,
			DateOfBirth:      "1990-01-01",
			DateOfEmployment: "2020-05-15",
		},
		{
			ID:               2,
			FirstName:        "Aysun",
			LastName:         "Kayalar",
			Email:            "aysunkayalar@company.com",
			Phone:            "0987654321",
			Department:       models.Analytics,
			Position:         models.Junior,
			DateOfBirth:      "1995-07-10",
			DateOfEmployment: "2022-01-20",
		},
	}
}

// Load reads the persisted collection. Missing, empty or malformed data is
// replaced by DefaultEmployees, which is then persisted.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.storage.GetItem(ctx, storage.EmployeesKey)
	if err != nil {
		return wrapStorage(err)
	}

	var saved []models.Employee
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			s.logger.Warn("Stored employees are malformed, reseeding", zap.Error(err))
			saved = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(saved) > 0 {
		s.employees = saved
		s.lastID = maxID(saved)
		return nil
	}

	seed := DefaultEmployees()
	if err := s.persist(ctx, seed); err != nil {
		return err
	}
	s.employees = seed
	s.logger.Info("Seeded employee store", zap.Int("count", len(seed)))
	return nil
}

// List returns a snapshot of the collection.
func (s *Store) List() []models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Employee(nil), s.employees...)
}

// GetByID returns the employee with the given identifier.
func (s *Store) GetByID(id int64) (models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Employee{}, notFound(id)
	}
	return s.employees[idx], nil
}

// Add assigns a new identifier to employee, appends it and persists.
func (s *Store) Add(ctx context.Context, employee models.Employee) (models.Employee, error) {
	s.mu.Lock()
	employee.ID = s.nextID()
	next := append(append(make([]models.Employee, 0, len(s.employees)+1), s.employees...), employee)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Employee{}, err
	}
	s.employees = next
	s.lastID = employee.ID
	s.mu.Unlock()

	created := employee
	s.notify(events.New(events.EmployeeCreated, &created))
	return employee, nil
}

// Update merges update over the stored employee and persists. Unknown
// identifiers yield ErrNotFound.
func (s *Store) Update(ctx context.Context, id int64, update models.EmployeeUpdate) (models.Employee, error) {
	return s.Modify(ctx, id, func(current models.Employee) (models.Employee, error) {
		return update.Apply(current), nil
	})
}

// Modify replaces the stored employee with the result of fn and persists.
// fn runs while the store is locked, so it sees the current record and no
// other mutation can interleave; an error from fn is returned unchanged and
// leaves the collection untouched. The identifier cannot be changed.
func (s *Store) Modify(ctx context.Context, id int64, fn func(models.Employee) (models.Employee, error)) (models.Employee, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Employee{}, notFound(id)
	}
	changed, err := fn(s.employees[idx])
	if err != nil {
		s.mu.Unlock()
		return models.Employee{}, err
	}
	changed.ID = id

	next := append([]models.Employee(nil), s.employees...)
	next[idx] = changed
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Employee{}, err
	}
	s.employees = next
	s.mu.Unlock()

	event := changed
	s.notify(events.New(events.EmployeeUpdated, &event))
	return changed, nil
}

// Delete removes the employee and persists. Unknown identifiers yield
// ErrNotFound and leave the collection untouched.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return notFound(id)
	}
	removed := s.employees[idx]
	next := make([]models.Employee, 0, len(s.employees)-1)
	next = append(next, s.employees[:idx]...)
	next = append(next, s.employees[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.employees = next
	s.mu.Unlock()

	s.notify(events.New(events.EmployeeDeleted, &removed))
	return nil
}

// ReplaceAll overwrites the collection. Records without an identifier get
// a fresh one; duplicate identifiers are rejected.
func (s *Store) ReplaceAll(ctx context.Context, employees []models.Employee) ([]models.Employee, error) {
	s.mu.Lock()
	next := append(make([]models.Employee, 0, len(employees)), employees...)
	seen := make(map[int64]bool, len(next))
	for _, emp := range next {
		if emp.ID == 0 {
			continue
		}
		if seen[emp.ID] {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: duplicate employee id %d", e.ErrInvalidInput, emp.ID)
		}
		seen[emp.ID] = true
	}

	lastID := s.lastID
	if imported := maxID(next); imported > lastID {
		lastID = imported
	}
	for i := range next {
		if next[i].ID != 0 {
			continue
		}
		id := s.clock.Now().UnixMilli()
		if id <= lastID {
			id = lastID + 1
		}
		next[i].ID = id
		lastID = id
	}

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.employees = next
	s.lastID = lastID
	s.mu.Unlock()

	ids := make([]int64, len(next))
	for i, emp := range next {
		ids[i] = emp.ID
	}
	s.notify(events.New(events.EmployeesReplaced, nil, ids...))
	return append([]models.Employee(nil), next...), nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// ParseID coerces a textual identifier. Text that is not a number can never
// match a record, so it is reported as not found.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("employee %q: %w", raw, e.ErrNotFound)
	}
	return id, nil
}

func (s *Store) notify(event events.Event) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// nextID must be called with mu held. Identifiers come from the clock in
// milliseconds and are bumped past anything already handed out.
func (s *Store) nextID() int64 {
	id := s.clock.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	if existing := maxID(s.employees); id <= existing {
		id = existing + 1
	}
	return id
}

func (s *Store) indexOf(id int64) int {
	for i, emp := range s.employees {
		if emp.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context, employees []models.Employee) error {
	payload, err := json.Marshal(employees)
	if err != nil {
		return fmt.Errorf("%w: encode employees: %v", e.ErrStorage, err)
	}
	if err := s.storage.SetItem(ctx, storage.EmployeesKey, string(payload)); err != nil {
		s.logger.Error("Failed to persist employees", zap.Error(err))
		return wrapStorage(err)
	}
	return nil
}

func maxID(employees []models.Employee) int64 {
	var max int64
	for _, emp := range employees {
		if emp.ID > max {
			max = emp.ID
		}
	}
	return max
}

func notFound(id int64) error {
	return fmt.Errorf("employee %d: %w", id, e.ErrNotFound)
}

func wrapStorage(err error) error {
	if errors.Is(err, e.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %v", e.ErrStorage, err)
}
