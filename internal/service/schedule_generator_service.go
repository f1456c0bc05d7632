package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/pkg/config"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type generatorTemplateLister interface {
	ListAll(ctx context.Context) ([]models.LessonTemplate, error)
}

type generatorAudienceLister interface {
	ListAll(ctx context.Context) ([]models.Audience, error)
}

type generatorLessonWriter interface {
	DeleteAll(ctx context.Context) error
	Create(ctx context.Context, lesson *models.Lesson) error
}

type generationRunRecorder interface {
	Create(ctx context.Context, run *models.ScheduleGenerationRun) error
	FindByID(ctx context.Context, id string) (*models.ScheduleGenerationRun, error)
	List(ctx context.Context, page, pageSize int) ([]models.ScheduleGenerationRun, int, error)
}

type scheduleCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationObserver interface {
	ObserveGeneration(status string, duration time.Duration)
	RecordPlacementStats(placed, unplaced int)
}

// ScheduleGeneratorService owns the automatic weekly timetable build: it
// expands lesson templates into demand, places each lesson greedily into the
// first conflict-free slot and room, replaces the stored week and records an
// audit entry for the run. At most one generation runs at a time.
type ScheduleGeneratorService struct {
	templates generatorTemplateLister
	audiences generatorAudienceLister
	lessons   generatorLessonWriter
	runs      generationRunRecorder
	cache     scheduleCacheInvalidator
	metrics   generationObserver
	cfg       config.GeneratorConfig
	logger    *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewScheduleGeneratorService wires generator dependencies.
func NewScheduleGeneratorService(
	templates generatorTemplateLister,
	audiences generatorAudienceLister,
	lessons generatorLessonWriter,
	runs generationRunRecorder,
	cache scheduleCacheInvalidator,
	metrics generationObserver,
	cfg config.GeneratorConfig,
	logger *zap.Logger,
) *ScheduleGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LessonDuration <= 0 {
		cfg.LessonDuration = 85 * time.Minute
	}
	if cfg.DayEnd <= cfg.DayStart {
		cfg.DayStart = 8 * time.Hour
		cfg.DayEnd = 20 * time.Hour
	}
	if cfg.GapPenaltyAfter <= 0 {
		cfg.GapPenaltyAfter = 2 * time.Hour
	}
	if cfg.GapPenaltyPoints <= 0 {
		cfg.GapPenaltyPoints = 10
	}
	return &ScheduleGeneratorService{
		templates: templates,
		audiences: audiences,
		lessons:   lessons,
		runs:      runs,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate runs one full generation pass on behalf of userID. Concurrent
// calls are rejected with GENERATION_IN_PROGRESS rather than queued, so two
// passes can never interleave their delete-and-rewrite of the lessons table.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, userID string) (*dto.GenerationResult, error) {
	if !s.mu.TryLock() {
		return nil, appErrors.ErrGenerationBusy
	}
	defer s.mu.Unlock()

	started := s.now()
	result, err := s.generate(ctx, userID, started)
	if err != nil {
		s.recordFailure(ctx, userID, started, err)
		if s.metrics != nil {
			s.metrics.ObserveGeneration(string(models.GenerationStatusFailed), s.now().Sub(started))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(string(models.GenerationStatusSuccess), s.now().Sub(started))
		s.metrics.RecordPlacementStats(result.PlacedLessons, result.UnplacedLessons)
	}
	return result, nil
}

func (s *ScheduleGeneratorService) generate(ctx context.Context, userID string, started time.Time) (*dto.GenerationResult, error) {
	templates, err := s.templates.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson templates")
	}

	// An empty template set is reported to the caller directly, without an
	// audit record and without touching the existing schedule.
	if len(templates) == 0 {
		return &dto.GenerationResult{
			Success:   false,
			Conflicts: []string{},
			Error:     "no lesson templates to generate a schedule from",
		}, nil
	}

	audiences, err := s.audiences.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audiences")
	}

	// Expand weekly frequencies into individual lessons to place. Templates
	// are consumed in listing order; each template's repetitions are placed
	// back to back before the next template is considered.
	var toPlace []placement
	for _, tpl := range templates {
		for i := 0; i < tpl.WeeklyFrequency; i++ {
			toPlace = append(toPlace, placement{
				TemplateID: tpl.ID,
				SubjectID:  tpl.SubjectID,
				GroupID:    tpl.GroupID,
				TeacherID:  tpl.TeacherID,
			})
		}
	}

	slots := buildWeekSlots(s.cfg)

	// Greedy first fit: earliest slot first, rooms in listing order. A
	// placed lesson is never revisited, so a lesson that fits nowhere is
	// reported as a conflict rather than triggering a re-shuffle.
	placed := make([]placement, 0, len(toPlace))
	conflicts := []string{}
	for _, lesson := range toPlace {
		found := false
		for _, slot := range slots {
			for _, audience := range audiences {
				candidate := lesson
				candidate.AudienceID = audience.ID
				candidate.Slot = slot
				if !hasConflict(placed, candidate) {
					placed = append(placed, candidate)
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			conflicts = append(conflicts, fmt.Sprintf("failed to place lesson: template %s, group %s", lesson.TemplateID, lesson.GroupID))
		}
	}

	// Replace the stored week. The wipe and the inserts are deliberately
	// separate statements; a crash in between loses the old week but the
	// next successful run rebuilds everything from templates.
	if err := s.lessons.DeleteAll(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing schedule")
	}

	monday := mondayOfWeek(s.now())
	for _, p := range placed {
		day := monday.AddDate(0, 0, p.Slot.Day-firstTeachingDay)
		startAt := day.Add(time.Duration(p.Slot.StartMinute) * time.Minute)
		endAt := day.Add(time.Duration(p.Slot.EndMinute) * time.Minute)
		lesson := &models.Lesson{
			SubjectID:  p.SubjectID,
			GroupID:    p.GroupID,
			TeacherID:  p.TeacherID,
			AudienceID: p.AudienceID,
			StartAt:    startAt,
			EndAt:      endAt,
			CreatedBy:  &userID,
		}
		if err := s.lessons.Create(ctx, lesson); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store generated lesson")
		}
	}

	quality := scheduleQuality(placed, s.cfg)
	durationMs := s.now().Sub(started).Milliseconds()

	summary, err := json.Marshal(models.RunSummary{
		TotalTemplates:      len(templates),
		TotalLessonsToPlace: len(toPlace),
		PlacedLessons:       len(placed),
		UnplacedLessons:     len(toPlace) - len(placed),
		Conflicts:           conflicts,
		DurationMs:          durationMs,
		Quality:             quality,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode run summary")
	}

	run := &models.ScheduleGenerationRun{
		Status:        models.GenerationStatusSuccess,
		Summary:       summary,
		ConflictCount: len(conflicts),
		CreatedBy:     &userID,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record generation run")
	}

	s.invalidateScheduleCache(ctx)

	s.logger.Info("schedule generated",
		zap.String("run_id", run.ID),
		zap.Int("templates", len(templates)),
		zap.Int("placed", len(placed)),
		zap.Int("unplaced", len(toPlace)-len(placed)),
		zap.Int("quality", quality),
		zap.Int64("duration_ms", durationMs))

	return &dto.GenerationResult{
		Success:         true,
		RunID:           run.ID,
		TotalLessons:    len(toPlace),
		PlacedLessons:   len(placed),
		UnplacedLessons: len(toPlace) - len(placed),
		Conflicts:       conflicts,
		DurationSeconds: fmt.Sprintf("%.2f", float64(durationMs)/1000),
	}, nil
}

// recordFailure writes a FAILED audit entry before the error is re-raised to
// the caller. A failure to record is logged and swallowed so the original
// error is what surfaces.
func (s *ScheduleGeneratorService) recordFailure(ctx context.Context, userID string, started time.Time, cause error) {
	summary, err := json.Marshal(models.RunSummary{
		Error:      cause.Error(),
		DurationMs: s.now().Sub(started).Milliseconds(),
	})
	if err != nil {
		s.logger.Error("encode failure summary", zap.Error(err))
		return
	}
	run := &models.ScheduleGenerationRun{
		Status:    models.GenerationStatusFailed,
		Summary:   summary,
		CreatedBy: &userID,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Error("record failed generation run", zap.Error(err))
	}
}

func (s *ScheduleGeneratorService) invalidateScheduleCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, scheduleCacheKeyPattern); err != nil {
		s.logger.Warn("invalidate schedule cache", zap.Error(err))
	}
}

// GetRun returns a single generation run by ID.
func (s *ScheduleGeneratorService) GetRun(ctx context.Context, id string) (*models.ScheduleGenerationRun, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation run")
	}
	return run, nil
}

// ListRuns returns the run history newest first.
func (s *ScheduleGeneratorService) ListRuns(ctx context.Context, page, pageSize int) ([]models.ScheduleGenerationRun, *models.Pagination, error) {
	runs, total, err := s.runs.List(ctx, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list generation runs")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return runs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// mondayOfWeek returns midnight of the Monday of the week containing t,
// treating Sunday as the tail of the previous week.
func mondayOfWeek(t time.Time) time.Time {
	offset := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		offset = -6
	}
	monday := t.AddDate(0, 0, offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}
