package postgres

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

// sqlRecorder is a gorm logger that keeps every statement it traces.
type sqlRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.mu.Lock()
	r.statements = append(r.statements, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}

// newDryRunDB returns a postgres gorm handle that builds SQL without a server.
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=cinema dbname=cinema sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db, rec
}

func TestAttendanceUpsertReloadsByNaturalKey(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewAttendancePostgreSQL(db)

	record := &models.AttendanceRecord{
		Date:      "2024-05-06",
		TeacherID: "t1",
		Records:   datatypes.NewJSONType(map[string]bool{"s1": true}),
	}
	if err := repo.Upsert(context.Background(), record); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	stmts := rec.all()
	if len(stmts) != 2 {
		t.Fatalf("expected insert and reload, got %d statements: %v", len(stmts), stmts)
	}
	insert, reload := stmts[0], stmts[1]

	if !strings.Contains(insert, `ON CONFLICT ("date","teacher_id") DO UPDATE SET "records"="excluded"."records"`) {
		t.Errorf("insert is not an upsert on (date, teacher_id): %s", insert)
	}
	if !strings.Contains(reload, `FROM "attendance"`) || !strings.Contains(reload, "teacher_id = 't1'") {
		t.Errorf("unexpected reload: %s", reload)
	}
	// The row kept after a conflict has its original id, so the reload must
	// not filter by the id generated for this insert.
	if strings.Contains(reload, `"attendance"."id" =`) {
		t.Errorf("reload filters by the freshly generated id: %s", reload)
	}
}

func TestScheduleRemoveClassMatchesJSONB(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewSchedulePostgreSQL(db)

	if _, err := repo.RemoveClass(context.Background(), "c1"); err != nil {
		t.Fatalf("RemoveClass() error = %v", err)
	}

	stmts := rec.all()
	if len(stmts) == 0 {
		t.Fatal("expected a lookup statement")
	}
	if want := `classes @> '["c1"]'::jsonb`; !strings.Contains(stmts[0], want) {
		t.Errorf("lookup = %s, want it to contain %s", stmts[0], want)
	}
}

func TestCountQuery(t *testing.T) {
	db, _ := newDryRunDB(t)

	tests := []struct {
		name   string
		model  interface{}
		column string
		want   []string
	}{
		{name: "users by role", model: &models.User{}, column: "role",
			want: []string{"SELECT role AS key, COUNT(*) AS count", `FROM "users"`, `GROUP BY "role"`}},
		{name: "schedule by day", model: &models.ScheduleEntry{}, column: "day",
			want: []string{"SELECT day AS key, COUNT(*) AS count", `FROM "schedule"`, `GROUP BY "day"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var rows []groupCount
				return countQuery(tx.Model(tt.model), tt.column).Find(&rows)
			})
			for _, part := range tt.want {
				if !strings.Contains(sql, part) {
					t.Errorf("sql = %s, missing %s", sql, part)
				}
			}
		})
	}
}

func TestApplyPaginationAndSort(t *testing.T) {
	db, _ := newDryRunDB(t)

	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      string
	}{
		{name: "whitelisted key", sortBy: "title", sortOrder: "asc", want: "ORDER BY title_key ASC,id ASC"},
		{name: "default order is descending", sortBy: "rating", sortOrder: "", want: "ORDER BY rating DESC,id ASC"},
		{name: "unknown key falls back", sortBy: "overview", sortOrder: "desc", want: "ORDER BY created_at DESC,id ASC"},
		{name: "injection is ignored", sortBy: "title; DROP TABLE movies", sortOrder: "asc; --", want: "ORDER BY created_at DESC,id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var movies []*models.Movie
				return applyPaginationAndSort(tx.Model(&models.Movie{}), movieSortColumns, tt.sortBy, tt.sortOrder, 20, 40).Find(&movies)
			})
			if !strings.Contains(sql, tt.want) {
				t.Errorf("sql = %s, want %s", sql, tt.want)
			}
			if !strings.Contains(sql, "LIMIT 20 OFFSET 40") {
				t.Errorf("sql = %s, missing pagination", sql)
			}
			if strings.Contains(sql, "DROP") {
				t.Errorf("sort input leaked into sql: %s", sql)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "up", want: "%up%"},
		{in: "100%", want: `%100\%%`},
		{in: "a_b", want: `%a\_b%`},
		{in: `c:\dir`, want: `%c:\\dir%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHandleDBError(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "not found", err: gorm.ErrRecordNotFound, want: repositories.ErrNotFound},
		{name: "duplicate", err: gorm.ErrDuplicatedKey, want: repositories.ErrDuplicate},
		{name: "other", err: boom, want: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleDBError(tt.err, "do thing")
			if !errors.Is(got, tt.want) || !strings.HasPrefix(got.Error(), "do thing failed: ") {
				t.Errorf("handleDBError() = %v, want wrapped %v", got, tt.want)
			}
		})
	}
	if handleDBError(nil, "noop") != nil {
		t.Error("nil error should stay nil")
	}
}

func TestUserIdentityIndexesArePartialUnique(t *testing.T) {
	sch, err := schema.Parse(&models.User{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	want := map[string]string{
		"idx_users_email_unique":    "email <> ''",
		"idx_users_login_id_unique": "login_id <> ''",
	}
	found := 0
	for _, idx := range sch.ParseIndexes() {
		where, ok := want[idx.Name]
		if !ok {
			continue
		}
		found++
		if idx.Class != "UNIQUE" || idx.Where != where {
			t.Errorf("index %s = class %q where %q, want UNIQUE where %q", idx.Name, idx.Class, idx.Where, where)
		}
	}
	if found != len(want) {
		t.Errorf("found %d of %d identity indexes", found, len(want))
	}
}
