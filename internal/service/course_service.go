package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edunexia/portal-api/internal/models"
	appErrors "github.com/edunexia/portal-api/pkg/errors"
)

const courseCacheTTL = 10 * time.Minute

type courseRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
}

type courseCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CourseService exposes the course catalogue read surface.
type CourseService struct {
	repo   courseRepository
	cache  courseCache
	logger *zap.Logger
}

// NewCourseService constructs CourseService. The cache may be nil.
func NewCourseService(repo courseRepository, cache courseCache, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, logger: logger}
}

func courseCacheKey(id int64) string {
	return fmt.Sprintf("course:%d", id)
}

// Get returns a course by id, served from cache when warm.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	if s.cache != nil {
		var cached models.Course
		if err := s.cache.Get(ctx, courseCacheKey(id), &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("course cache read failed", zap.Int64("course_id", id), zap.Error(err))
		}
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, courseCacheKey(id), course, courseCacheTTL); err != nil {
			s.logger.Warn("course cache write failed", zap.Int64("course_id", id), zap.Error(err))
		}
	}
	return course, nil
}

// List returns courses matching the filter.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
