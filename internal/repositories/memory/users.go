package memory

import (
	"cmp"
	"context"
	"sort"
	"strings"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type userRepo struct{ r *Repository }

// takenByOther mirrors the partial unique indexes on email and login_id.
func takenByOther(st *state, user *models.User) bool {
	for id, other := range st.users {
		if id == user.ID {
			continue
		}
		if user.Email != "" && other.Email == user.Email {
			return true
		}
		if user.LoginID != "" && other.LoginID == user.LoginID {
			return true
		}
	}
	return false
}

func (u userRepo) Create(ctx context.Context, user *models.User) error {
	st, unlock := u.r.write()
	defer unlock()

	user.ID = assignID(user.ID)
	if _, exists := st.users[user.ID]; exists || takenByOther(st, user) {
		return duplicate("create user")
	}
	now := u.r.now()
	user.CreatedAt, user.UpdatedAt = now, now
	st.users[user.ID] = *user
	return nil
}

func (u userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	st, unlock := u.r.read()
	defer unlock()
	if user, ok := st.users[id]; ok {
		return &user, nil
	}
	return nil, notFound("get user by id")
}

func (u userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.find("get user by email", func(x *models.User) bool { return x.Email == email })
}

func (u userRepo) GetByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	return u.find("get user by login id", func(x *models.User) bool { return x.LoginID == loginID })
}

func (u userRepo) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return u.find("get user by google id", func(x *models.User) bool { return x.GoogleID == googleID })
}

func (u userRepo) GetByCasdoorID(ctx context.Context, casdoorID string) (*models.User, error) {
	return u.find("get user by casdoor id", func(x *models.User) bool { return x.CasdoorID == casdoorID })
}

func (u userRepo) find(op string, match func(*models.User) bool) (*models.User, error) {
	st, unlock := u.r.read()
	defer unlock()

	var found *models.User
	for _, user := range st.users {
		user := user
		if !match(&user) {
			continue
		}
		// oldest wins, matching the first row a database scan would return
		if found == nil || user.CreatedAt.Before(found.CreatedAt) {
			found = &user
		}
	}
	if found == nil {
		return nil, notFound(op)
	}
	return found, nil
}

func (u userRepo) Update(ctx context.Context, user *models.User) error {
	st, unlock := u.r.write()
	defer unlock()

	if _, ok := st.users[user.ID]; !ok {
		return notFound("update user")
	}
	if takenByOther(st, user) {
		return duplicate("update user")
	}
	user.UpdatedAt = u.r.now()
	st.users[user.ID] = *user
	return nil
}

func (u userRepo) Delete(ctx context.Context, id string) error {
	st, unlock := u.r.write()
	defer unlock()

	if _, ok := st.users[id]; !ok {
		return notFound("delete user")
	}
	delete(st.users, id)
	return nil
}

var userSortKeys = map[string]func(a, b *models.User) int{
	"created_at":   func(a, b *models.User) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"email":        func(a, b *models.User) int { return strings.Compare(a.Email, b.Email) },
	"display_name": func(a, b *models.User) int { return strings.Compare(a.DisplayName, b.DisplayName) },
	"role":         func(a, b *models.User) int { return cmp.Compare(a.Role, b.Role) },
	"status":       func(a, b *models.User) int { return cmp.Compare(a.Status, b.Status) },
}

func (u userRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	st, unlock := u.r.read()
	defer unlock()

	var out []*models.User
	for _, user := range st.users {
		user := user
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.Status != nil && user.Status != *filters.Status {
			continue
		}
		if filters.ClassID != nil && user.StudentClass != *filters.ClassID {
			continue
		}
		if q := filters.Query; q != "" &&
			!containsFold(user.Email, q) && !containsFold(user.DisplayName, q) && !containsFold(user.LoginID, q) {
			continue
		}
		out = append(out, &user)
	}

	compare, ok := userSortKeys[filters.SortBy]
	if !ok {
		compare = userSortKeys["created_at"]
	}
	sortItems(out, compare, isDesc(filters.SortOrder), func(x *models.User) string { return x.ID })
	return page(out, filters.Limit, filters.Offset), int64(len(out)), nil
}

func (u userRepo) ListByClass(ctx context.Context, classID string) ([]*models.User, error) {
	st, unlock := u.r.read()
	defer unlock()

	out := []*models.User{}
	for _, user := range st.users {
		user := user
		if user.StudentClass == classID {
			out = append(out, &user)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].LoginID < out[j].LoginID
	})
	return out, nil
}

func (u userRepo) ClearClass(ctx context.Context, classID string) (int64, error) {
	st, unlock := u.r.write()
	defer unlock()

	var n int64
	for id, user := range st.users {
		if user.StudentClass == classID {
			user.StudentClass = ""
			user.UpdatedAt = u.r.now()
			st.users[id] = user
			n++
		}
	}
	return n, nil
}

func (u userRepo) CountByRole(ctx context.Context) (map[string]int64, error) {
	return u.countBy(func(x models.User) string { return string(x.Role) }), nil
}

func (u userRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return u.countBy(func(x models.User) string { return string(x.Status) }), nil
}

func (u userRepo) CountByClass(ctx context.Context) (map[string]int64, error) {
	counts := u.countBy(func(x models.User) string { return x.StudentClass })
	delete(counts, "")
	return counts, nil
}

func (u userRepo) countBy(key func(models.User) string) map[string]int64 {
	st, unlock := u.r.read()
	defer unlock()

	counts := make(map[string]int64)
	for _, user := range st.users {
		counts[key(user)]++
	}
	return counts
}

// ===== PRE-REGISTERED EMAILS =====

type preRegisteredRepo struct{ r *Repository }

func (p preRegisteredRepo) Create(ctx context.Context, entry *models.PreRegisteredEmail) error {
	st, unlock := p.r.write()
	defer unlock()

	for _, existing := range st.preRegistered {
		if existing.Email == entry.Email {
			return duplicate("create pre-registered email")
		}
	}
	entry.ID = assignID(entry.ID)
	entry.CreatedAt = p.r.now()
	st.preRegistered[entry.ID] = *entry
	return nil
}

func (p preRegisteredRepo) GetByID(ctx context.Context, id string) (*models.PreRegisteredEmail, error) {
	st, unlock := p.r.read()
	defer unlock()
	if entry, ok := st.preRegistered[id]; ok {
		return &entry, nil
	}
	return nil, notFound("get pre-registered email")
}

func (p preRegisteredRepo) GetByEmail(ctx context.Context, email string) (*models.PreRegisteredEmail, error) {
	st, unlock := p.r.read()
	defer unlock()
	for _, entry := range st.preRegistered {
		if entry.Email == email {
			return &entry, nil
		}
	}
	return nil, notFound("get pre-registered email by email")
}

func (p preRegisteredRepo) MarkUsed(ctx context.Context, id string) error {
	st, unlock := p.r.write()
	defer unlock()

	entry, ok := st.preRegistered[id]
	if !ok || entry.Used {
		return notFound("mark pre-registered email used")
	}
	entry.Used = true
	st.preRegistered[id] = entry
	return nil
}

func (p preRegisteredRepo) List(ctx context.Context) ([]*models.PreRegisteredEmail, error) {
	st, unlock := p.r.read()
	defer unlock()

	out := make([]*models.PreRegisteredEmail, 0, len(st.preRegistered))
	for _, entry := range st.preRegistered {
		entry := entry
		out = append(out, &entry)
	}
	sortItems(out, func(a, b *models.PreRegisteredEmail) int {
		return compareTime(a.CreatedAt, b.CreatedAt)
	}, true, func(x *models.PreRegisteredEmail) string { return x.ID })
	return out, nil
}

func (p preRegisteredRepo) Delete(ctx context.Context, id string) error {
	st, unlock := p.r.write()
	defer unlock()

	if _, ok := st.preRegistered[id]; !ok {
		return notFound("delete pre-registered email")
	}
	delete(st.preRegistered, id)
	return nil
}
