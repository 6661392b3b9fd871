package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
)

type movieRepo struct{ r *Repository }

func titleTaken(st *state, titleKey, exceptID string) bool {
	for id, m := range st.movies {
		if id != exceptID && m.TitleKey == titleKey {
			return true
		}
	}
	return false
}

func (m movieRepo) Create(ctx context.Context, movie *models.Movie) error {
	st, unlock := m.r.write()
	defer unlock()

	movie.ID = assignID(movie.ID)
	if _, exists := st.movies[movie.ID]; exists || titleTaken(st, movie.TitleKey, "") {
		return duplicate("create movie")
	}
	if movie.Status == "" {
		movie.Status = models.MovieStatusWishlist
	}
	now := m.r.now()
	movie.CreatedAt, movie.UpdatedAt = now, now
	st.movies[movie.ID] = copyMovie(*movie)
	return nil
}

func (m movieRepo) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	st, unlock := m.r.read()
	defer unlock()
	if movie, ok := st.movies[id]; ok {
		movie = copyMovie(movie)
		return &movie, nil
	}
	return nil, notFound("get movie by id")
}

func (m movieRepo) GetByTitleKey(ctx context.Context, titleKey string) (*models.Movie, error) {
	st, unlock := m.r.read()
	defer unlock()
	for _, movie := range st.movies {
		if movie.TitleKey == titleKey {
			movie = copyMovie(movie)
			return &movie, nil
		}
	}
	return nil, notFound("get movie by title")
}

func (m movieRepo) Update(ctx context.Context, movie *models.Movie) error {
	st, unlock := m.r.write()
	defer unlock()

	if _, ok := st.movies[movie.ID]; !ok {
		return notFound("update movie")
	}
	if titleTaken(st, movie.TitleKey, movie.ID) {
		return duplicate("update movie")
	}
	movie.UpdatedAt = m.r.now()
	st.movies[movie.ID] = copyMovie(*movie)
	return nil
}

func (m movieRepo) Delete(ctx context.Context, id string) error {
	st, unlock := m.r.write()
	defer unlock()

	if _, ok := st.movies[id]; !ok {
		return notFound("delete movie")
	}
	delete(st.movies, id)
	return nil
}

var movieSortKeys = map[string]func(a, b *models.Movie) int{
	"created_at":   func(a, b *models.Movie) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"title":        func(a, b *models.Movie) int { return strings.Compare(a.TitleKey, b.TitleKey) },
	"rating":       func(a, b *models.Movie) int { return cmp.Compare(a.Rating, b.Rating) },
	"release_date": func(a, b *models.Movie) int { return strings.Compare(a.ReleaseDate, b.ReleaseDate) },
}

func (m movieRepo) List(ctx context.Context, filters repositories.MovieFilters) ([]*models.Movie, int64, error) {
	st, unlock := m.r.read()
	defer unlock()

	var out []*models.Movie
	for _, movie := range st.movies {
		if filters.Status != nil && movie.Status != *filters.Status {
			continue
		}
		if filters.KidsLiked != nil && movie.KidsLiked != *filters.KidsLiked {
			continue
		}
		if q := filters.Query; q != "" && !containsFold(movie.Title, q) && !containsFold(movie.Overview, q) {
			continue
		}
		movie = copyMovie(movie)
		out = append(out, &movie)
	}

	compare, ok := movieSortKeys[filters.SortBy]
	if !ok {
		compare = movieSortKeys["created_at"]
	}
	sortItems(out, compare, isDesc(filters.SortOrder), func(x *models.Movie) string { return x.ID })
	return page(out, filters.Limit, filters.Offset), int64(len(out)), nil
}

func (m movieRepo) ListWithTMDBID(ctx context.Context) ([]*models.Movie, error) {
	st, unlock := m.r.read()
	defer unlock()

	out := []*models.Movie{}
	for _, movie := range st.movies {
		if movie.TMDBID == nil {
			continue
		}
		movie = copyMovie(movie)
		out = append(out, &movie)
	}
	sortItems(out, movieSortKeys["created_at"], false, func(x *models.Movie) string { return x.ID })
	return out, nil
}

func (m movieRepo) Summary(ctx context.Context) (*repositories.MovieSummary, error) {
	st, unlock := m.r.read()
	defer unlock()

	summary := &repositories.MovieSummary{ByStatus: make(map[string]int64)}
	var ratingSum float64
	var rated int
	for _, movie := range st.movies {
		summary.Total++
		summary.ByStatus[string(movie.Status)]++
		if movie.KidsLiked {
			summary.KidsLiked++
		}
		if movie.Rating > 0 {
			ratingSum += movie.Rating
			rated++
		}
	}
	if rated > 0 {
		summary.AverageRating = ratingSum / float64(rated)
	}
	return summary, nil
}

// ===== SCHEDULE =====

type scheduleRepo struct{ r *Repository }

func (s scheduleRepo) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	st, unlock := s.r.write()
	defer unlock()

	entry.ID = assignID(entry.ID)
	if _, exists := st.schedule[entry.ID]; exists {
		return duplicate("create schedule entry")
	}
	st.schedule[entry.ID] = copyScheduleEntry(*entry)
	return nil
}

func (s scheduleRepo) GetByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	st, unlock := s.r.read()
	defer unlock()
	if entry, ok := st.schedule[id]; ok {
		entry = copyScheduleEntry(entry)
		return &entry, nil
	}
	return nil, notFound("get schedule entry")
}

func (s scheduleRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	st, unlock := s.r.write()
	defer unlock()

	if _, ok := st.schedule[entry.ID]; !ok {
		return notFound("update schedule entry")
	}
	st.schedule[entry.ID] = copyScheduleEntry(*entry)
	return nil
}

func (s scheduleRepo) Delete(ctx context.Context, id string) error {
	st, unlock := s.r.write()
	defer unlock()

	if _, ok := st.schedule[id]; !ok {
		return notFound("delete schedule entry")
	}
	delete(st.schedule, id)
	return nil
}

func compareSchedule(a, b *models.ScheduleEntry) int {
	if c := cmp.Compare(a.Day.Index(), b.Day.Index()); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

func (s scheduleRepo) collect(match func(models.ScheduleEntry) bool) []*models.ScheduleEntry {
	st, unlock := s.r.read()
	defer unlock()

	out := []*models.ScheduleEntry{}
	for _, entry := range st.schedule {
		if !match(entry) {
			continue
		}
		entry = copyScheduleEntry(entry)
		out = append(out, &entry)
	}
	sortItems(out, compareSchedule, false, func(x *models.ScheduleEntry) string { return x.ID })
	return out
}

func (s scheduleRepo) List(ctx context.Context) ([]*models.ScheduleEntry, error) {
	return s.collect(func(models.ScheduleEntry) bool { return true }), nil
}

func (s scheduleRepo) ListByDay(ctx context.Context, day models.Weekday) ([]*models.ScheduleEntry, error) {
	return s.collect(func(e models.ScheduleEntry) bool { return e.Day == day }), nil
}

func (s scheduleRepo) deleteWhere(match func(models.ScheduleEntry) bool) int64 {
	st, unlock := s.r.write()
	defer unlock()

	var n int64
	for id, entry := range st.schedule {
		if match(entry) {
			delete(st.schedule, id)
			n++
		}
	}
	return n
}

func (s scheduleRepo) DeleteByDay(ctx context.Context, day models.Weekday) (int64, error) {
	return s.deleteWhere(func(e models.ScheduleEntry) bool { return e.Day == day }), nil
}

func (s scheduleRepo) DeleteByMovie(ctx context.Context, movieID string) (int64, error) {
	return s.deleteWhere(func(e models.ScheduleEntry) bool { return e.MovieID == movieID }), nil
}

func (s scheduleRepo) SyncMovie(ctx context.Context, movieID, title, posterPath string) error {
	st, unlock := s.r.write()
	defer unlock()

	for id, entry := range st.schedule {
		if entry.MovieID == movieID {
			entry.Title = title
			entry.PosterPath = posterPath
			st.schedule[id] = entry
		}
	}
	return nil
}

func (s scheduleRepo) RemoveClass(ctx context.Context, classID string) (int64, error) {
	st, unlock := s.r.write()
	defer unlock()

	var n int64
	for id, entry := range st.schedule {
		kept := make([]string, 0, len(entry.Classes))
		for _, c := range entry.Classes {
			if c != classID {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(entry.Classes) {
			continue
		}
		n++
		if len(kept) == 0 {
			delete(st.schedule, id)
			continue
		}
		entry.Classes = kept
		st.schedule[id] = entry
	}
	return n, nil
}

func (s scheduleRepo) CountByDay(ctx context.Context) (map[models.Weekday]int64, error) {
	st, unlock := s.r.read()
	defer unlock()

	counts := make(map[models.Weekday]int64)
	for _, entry := range st.schedule {
		counts[entry.Day]++
	}
	return counts, nil
}

// ===== SUGGESTIONS =====

type suggestionRepo struct{ r *Repository }

func (s suggestionRepo) Create(ctx context.Context, suggestion *models.Suggestion) error {
	st, unlock := s.r.write()
	defer unlock()

	suggestion.ID = assignID(suggestion.ID)
	if _, exists := st.suggestions[suggestion.ID]; exists {
		return duplicate("create suggestion")
	}
	if suggestion.Status == "" {
		suggestion.Status = models.SuggestionPending
	}
	suggestion.CreatedAt = s.r.now()
	st.suggestions[suggestion.ID] = *suggestion
	return nil
}

func (s suggestionRepo) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	st, unlock := s.r.read()
	defer unlock()
	if suggestion, ok := st.suggestions[id]; ok {
		return &suggestion, nil
	}
	return nil, notFound("get suggestion")
}

func (s suggestionRepo) UpdateStatus(ctx context.Context, id string, status models.SuggestionStatus) error {
	st, unlock := s.r.write()
	defer unlock()

	suggestion, ok := st.suggestions[id]
	if !ok {
		return notFound("update suggestion status")
	}
	suggestion.Status = status
	st.suggestions[id] = suggestion
	return nil
}

func (s suggestionRepo) Delete(ctx context.Context, id string) error {
	st, unlock := s.r.write()
	defer unlock()

	if _, ok := st.suggestions[id]; !ok {
		return notFound("delete suggestion")
	}
	delete(st.suggestions, id)
	return nil
}

func (s suggestionRepo) List(ctx context.Context, filters repositories.SuggestionFilters) ([]*models.Suggestion, int64, error) {
	st, unlock := s.r.read()
	defer unlock()

	var out []*models.Suggestion
	for _, suggestion := range st.suggestions {
		suggestion := suggestion
		if filters.Status != nil && suggestion.Status != *filters.Status {
			continue
		}
		if filters.UserID != nil && suggestion.UserID != *filters.UserID {
			continue
		}
		out = append(out, &suggestion)
	}
	sortItems(out, func(a, b *models.Suggestion) int {
		return compareTime(a.CreatedAt, b.CreatedAt)
	}, true, func(x *models.Suggestion) string { return x.ID })
	return page(out, filters.Limit, filters.Offset), int64(len(out)), nil
}

func (s suggestionRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	st, unlock := s.r.read()
	defer unlock()

	counts := make(map[string]int64)
	for _, suggestion := range st.suggestions {
		counts[string(suggestion.Status)]++
	}
	return counts, nil
}
