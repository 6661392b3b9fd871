// Package memory is an in-process Repository used by tests and by
// DB_DRIVER=memory deployments without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type state struct {
	users         map[string]models.User
	preRegistered map[string]models.PreRegisteredEmail
	movies        map[string]models.Movie
	schedule      map[string]models.ScheduleEntry
	suggestions   map[string]models.Suggestion
	classes       map[string]models.Class
	attendance    map[string]models.AttendanceRecord
	grades        map[string]models.GradeReport
}

func newState() *state {
	return &state{
		users:         make(map[string]models.User),
		preRegistered: make(map[string]models.PreRegisteredEmail),
		movies:        make(map[string]models.Movie),
		schedule:      make(map[string]models.ScheduleEntry),
		suggestions:   make(map[string]models.Suggestion),
		classes:       make(map[string]models.Class),
		attendance:    make(map[string]models.AttendanceRecord),
		grades:        make(map[string]models.GradeReport),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.preRegistered {
		c.preRegistered[k] = v
	}
	for k, v := range s.movies {
		c.movies[k] = copyMovie(v)
	}
	for k, v := range s.schedule {
		c.schedule[k] = copyScheduleEntry(v)
	}
	for k, v := range s.suggestions {
		c.suggestions[k] = v
	}
	for k, v := range s.classes {
		c.classes[k] = v
	}
	for k, v := range s.attendance {
		c.attendance[k] = copyAttendance(v)
	}
	for k, v := range s.grades {
		c.grades[k] = copyGrade(v)
	}
	return c
}

// Store owns the data shared by every repository view.
type Store struct {
	mu     sync.RWMutex
	st     *state
	closed bool
	now    func() time.Time
	last   time.Time
}

// Repository is a view on a Store. Views created by WithTransaction work
// on a private copy of the state that replaces the shared one on commit.
type Repository struct {
	store *Store
	tx    *state
}

// NewRepository returns an empty in-memory repository.
func NewRepository() *Repository {
	store := &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
	return &Repository{store: store}
}

// read locks the store for reading unless the view is inside a transaction,
// whose caller already holds the write lock.
func (r *Repository) read() (*state, func()) {
	if r.tx != nil {
		return r.tx, func() {}
	}
	r.store.mu.RLock()
	return r.store.st, r.store.mu.RUnlock
}

func (r *Repository) write() (*state, func()) {
	if r.tx != nil {
		return r.tx, func() {}
	}
	r.store.mu.Lock()
	return r.store.st, r.store.mu.Unlock
}

// now returns strictly increasing timestamps so creation order is stable.
// Callers hold the write lock.
func (r *Repository) now() time.Time {
	t := r.store.now()
	if !t.After(r.store.last) {
		t = r.store.last.Add(time.Microsecond)
	}
	r.store.last = t
	return t
}

func (r *Repository) User() repositories.UserRepository { return userRepo{r} }

func (r *Repository) PreRegistered() repositories.PreRegisteredEmailRepository {
	return preRegisteredRepo{r}
}

func (r *Repository) Movie() repositories.MovieRepository { return movieRepo{r} }

func (r *Repository) Schedule() repositories.ScheduleRepository { return scheduleRepo{r} }

func (r *Repository) Suggestion() repositories.SuggestionRepository { return suggestionRepo{r} }

func (r *Repository) Class() repositories.ClassRepository { return classRepo{r} }

func (r *Repository) Attendance() repositories.AttendanceRepository { return attendanceRepo{r} }

func (r *Repository) Grade() repositories.GradeRepository { return gradeRepo{r} }

// WithTransaction serializes fn against every other writer. fn must only use
// the repository it is given; calling the outer repository deadlocks.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	working := r.store.st.clone()
	if err := fn(&Repository{store: r.store, tx: working}); err != nil {
		return err
	}
	r.store.st = working
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.closed {
		return fmt.Errorf("memory store is closed")
	}
	return nil
}

func (r *Repository) Close() error {
	r.store.mu.Lock()
	r.store.closed = true
	r.store.mu.Unlock()
	return nil
}

// Manager adapts Repository to the RepositoryManager lifecycle.
type Manager struct {
	repo *Repository
}

func NewManager() repositories.RepositoryManager {
	return &Manager{}
}

func (m *Manager) Initialize() error {
	m.repo = NewRepository()
	return nil
}

func (m *Manager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *Manager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}

// ===== HELPERS =====

func assignID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func notFound(op string) error {
	return fmt.Errorf("%s failed: %w", op, repositories.ErrNotFound)
}

func duplicate(op string) error {
	return fmt.Errorf("%s failed: %w", op, repositories.ErrDuplicate)
}

// sortItems orders items by compare, reversed when desc, with id as the tie breaker.
func sortItems[T any](items []*T, compare func(a, b *T) int, desc bool, id func(*T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return id(items[i]) < id(items[j])
	})
}

func page[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func isDesc(order string) bool {
	return !strings.EqualFold(order, "asc")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func copyMovie(m models.Movie) models.Movie {
	if m.TMDBID != nil {
		id := *m.TMDBID
		m.TMDBID = &id
	}
	if m.GenreIDs != nil {
		m.GenreIDs = append([]int(nil), m.GenreIDs...)
	}
	return m
}

func copyScheduleEntry(e models.ScheduleEntry) models.ScheduleEntry {
	if e.Classes != nil {
		e.Classes = append([]string(nil), e.Classes...)
	}
	return e
}

func copyAttendance(a models.AttendanceRecord) models.AttendanceRecord {
	records := make(map[string]bool, len(a.Records.Data()))
	for k, v := range a.Records.Data() {
		records[k] = v
	}
	a.Records = datatypes.NewJSONType(records)
	return a
}

func copyGrade(g models.GradeReport) models.GradeReport {
	scores := make(map[string]float64, len(g.Scores.Data()))
	for k, v := range g.Scores.Data() {
		scores[k] = v
	}
	g.Scores = datatypes.NewJSONType(scores)
	return g
}
