package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/pkg/config"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

const (
	scheduleCacheKeyPrefix  = "schedule:"
	scheduleCacheKeyPattern = scheduleCacheKeyPrefix + "*"
)

type detailedLessonLister interface {
	ListDetailed(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ScheduleService serves the composed weekly schedule, with a redis
// read-through cache keyed by filter combination.
type ScheduleService struct {
	lessons   detailedLessonLister
	cache     scheduleCache
	cacheCfg  config.CacheConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService wires schedule read dependencies.
func NewScheduleService(lessons detailedLessonLister, cache scheduleCache, cacheCfg config.CacheConfig, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{lessons: lessons, cache: cache, cacheCfg: cacheCfg, validator: validate, logger: logger}
}

// List returns lessons matching the query. The second return value reports
// whether the payload was served from cache.
func (s *ScheduleService) List(ctx context.Context, query dto.ScheduleQuery) ([]models.LessonDetail, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}

	filter, err := buildLessonFilter(query)
	if err != nil {
		return nil, false, err
	}

	key := scheduleCacheKey(query)
	if s.cacheEnabled() {
		var cached []models.LessonDetail
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("schedule cache read", zap.Error(err))
		}
	}

	lessons, err := s.lessons.ListDetailed(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if lessons == nil {
		lessons = []models.LessonDetail{}
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, lessons, s.cacheCfg.ScheduleTTL); err != nil {
			s.logger.Warn("schedule cache write", zap.Error(err))
		}
	}

	return lessons, false, nil
}

func (s *ScheduleService) cacheEnabled() bool {
	return s.cache != nil && s.cacheCfg.Enabled
}

func buildLessonFilter(query dto.ScheduleQuery) (models.LessonFilter, error) {
	filter := models.LessonFilter{GroupID: query.GroupID, TeacherID: query.TeacherID}
	if query.StartDate != "" {
		start, err := time.Parse("2006-01-02", query.StartDate)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "startDate must be formatted YYYY-MM-DD")
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := time.Parse("2006-01-02", query.EndDate)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "endDate must be formatted YYYY-MM-DD")
		}
		// Make the end date inclusive by filtering before the next day.
		end = end.AddDate(0, 0, 1)
		filter.EndDate = &end
	}
	return filter, nil
}

func scheduleCacheKey(query dto.ScheduleQuery) string {
	return fmt.Sprintf("%sgroup=%s:teacher=%s:from=%s:to=%s", scheduleCacheKeyPrefix, query.GroupID, query.TeacherID, query.StartDate, query.EndDate)
}
