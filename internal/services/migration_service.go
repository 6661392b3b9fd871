package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/models"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

type migrationService struct {
	changeNotifier
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMigrationService(repo repositories.Repository, notifier changeNotifier, logger *slog.Logger, validator *validator.Validator) MigrationService {
	return &migrationService{
		changeNotifier: notifier,
		repo:           repo,
		logger:         logger,
		validator:      validator,
	}
}

// ImportLegacy copies the old browser-stored movies and schedule into the shared store.
// Each account may import once; titles that already exist are skipped.
func (s *migrationService) ImportLegacy(ctx context.Context, actor Actor, req *LegacyImportRequest) (*models.LegacyImportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationFailed(err)
	}

	result := &models.LegacyImportResult{}
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		user, err := tx.User().GetByID(ctx, actor.UserID)
		if err != nil {
			return repoError(err, ErrUserNotFound, "get user")
		}
		if user.LegacyMigrated {
			return ErrAlreadyMigrated
		}

		imp := &legacyImporter{tx: tx, byTMDB: map[int64]*models.Movie{}, byTitle: map[string]*models.Movie{}}
		for i := range req.Movies {
			ok, err := imp.importMovie(ctx, &req.Movies[i])
			if err != nil {
				return err
			}
			if ok {
				result.MoviesImported++
			} else {
				result.MoviesSkipped++
			}
		}

		for day, items := range req.Schedule {
			for i := range items {
				ok, err := imp.importScheduleItem(ctx, day, &items[i])
				if err != nil {
					return err
				}
				if ok {
					result.ScheduleImported++
				} else {
					result.ScheduleSkipped++
				}
			}
		}

		user.LegacyMigrated = true
		if err := tx.User().Update(ctx, user); err != nil {
			return repoError(err, ErrUserNotFound, "mark user migrated")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Legacy data imported",
		"user_id", actor.UserID,
		"movies_imported", result.MoviesImported,
		"movies_skipped", result.MoviesSkipped,
		"schedule_imported", result.ScheduleImported,
		"schedule_skipped", result.ScheduleSkipped)

	if result.MoviesImported > 0 {
		s.notify(ctx, events.CollectionMovies, events.OpCreated, "")
	}
	if result.ScheduleImported > 0 {
		s.notify(ctx, events.CollectionSchedule, events.OpCreated, "")
	}
	s.notify(ctx, events.CollectionUsers, events.OpUpdated, actor.UserID)
	return result, nil
}

// legacyImporter resolves legacy references within one import transaction.
type legacyImporter struct {
	tx      repositories.Repository
	byTMDB  map[int64]*models.Movie
	byTitle map[string]*models.Movie
}

func (imp *legacyImporter) remember(m *models.Movie) {
	imp.byTitle[m.TitleKey] = m
	if m.TMDBID != nil {
		imp.byTMDB[*m.TMDBID] = m
	}
}

func (imp *legacyImporter) importMovie(ctx context.Context, lm *LegacyMovie) (bool, error) {
	title := strings.TrimSpace(lm.Title)
	if title == "" {
		return false, nil
	}

	rating := lm.Rating
	if rating <= 0 {
		rating = lm.VoteAverage
	}
	rating = min(max(rating, 0), 10)

	status := models.MovieStatus(strings.ToLower(lm.Status))
	if !status.IsValid() {
		status = models.MovieStatusWishlist
	}

	movie := &models.Movie{
		Title:       title,
		Status:      status,
		Rating:      rating,
		Overview:    lm.Overview,
		PosterPath:  lm.PosterPath,
		ReleaseDate: lm.ReleaseDate,
		TMDBID:      lm.ID,
		GenreIDs:    datatypes.JSONSlice[int](lm.GenreIDs),
		KidsLiked:   lm.KidsLiked,
	}
	err := createMovie(ctx, imp.tx, movie)
	if errors.Is(err, ErrDuplicateTitle) {
		existing, err := imp.tx.Movie().GetByTitleKey(ctx, utils.TitleKey(title))
		if err != nil {
			return false, fmt.Errorf("failed to load existing movie: %w", err)
		}
		imp.remember(existing)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	imp.remember(movie)
	return true, nil
}

func (imp *legacyImporter) importScheduleItem(ctx context.Context, day models.Weekday, item *LegacyScheduleItem) (bool, error) {
	if !day.IsValid() {
		return false, nil
	}
	movie, err := imp.resolveMovie(ctx, item)
	if err != nil || movie == nil {
		return false, err
	}
	classes, err := imp.resolveClasses(ctx, item.Classes)
	if err != nil {
		return false, err
	}

	entry := &models.ScheduleEntry{
		Day:        day,
		MovieID:    movie.ID,
		Title:      movie.Title,
		PosterPath: movie.PosterPath,
		Classes:    datatypes.JSONSlice[string](classes),
	}
	if err := imp.tx.Schedule().Create(ctx, entry); err != nil {
		return false, fmt.Errorf("failed to create schedule entry: %w", err)
	}
	return true, nil
}

// resolveMovie finds the movie an item points at, by TMDB id first and title second.
func (imp *legacyImporter) resolveMovie(ctx context.Context, item *LegacyScheduleItem) (*models.Movie, error) {
	if item.ID != nil {
		if m, ok := imp.byTMDB[*item.ID]; ok {
			return m, nil
		}
	}
	key := utils.TitleKey(item.Title)
	if key == "" {
		return nil, nil
	}
	if m, ok := imp.byTitle[key]; ok {
		return m, nil
	}
	m, err := imp.tx.Movie().GetByTitleKey(ctx, key)
	if repositories.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve movie: %w", err)
	}
	imp.remember(m)
	return m, nil
}

// resolveClasses maps legacy class ids or names to class ids; unknown classes are dropped.
func (imp *legacyImporter) resolveClasses(ctx context.Context, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range dedupe(refs) {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		c, err := imp.tx.Class().GetByID(ctx, ref)
		if repositories.IsNotFoundError(err) {
			c, err = imp.tx.Class().GetByNameKey(ctx, utils.TitleKey(ref))
		}
		if repositories.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve class: %w", err)
		}
		out = append(out, c.ID)
	}
	return dedupe(out), nil
}
