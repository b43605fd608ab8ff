// Package app is the shell around the catalog: it owns the in-memory
// catalog for one session, mirrors every change to the durable store and
// runs publishes on request.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"academy/internal/catalog"
	"academy/internal/domain"
	"academy/internal/publish"
	"academy/internal/store"
)

var (
	ErrNotAdmin        = errors.New("app: admin login required")
	ErrPublishInFlight = errors.New("app: a publish is already running")
	ErrCourseNotFound  = errors.New("app: course not found")
	ErrLessonNotFound  = errors.New("app: lesson not found")
)

// PublishDefaults fill the parts of publish.Settings that are not stored
// with the target.
type PublishDefaults struct {
	Branch  string
	Message string
	Format  publish.Format
}

type Deps struct {
	Catalog   CatalogStore
	Settings  SettingsStore
	Publisher Publisher
	Sinks     []Sink
	Session   *Session
	Defaults  PublishDefaults
	Log       logrus.FieldLogger
}

type Controller struct {
	deps Deps
	log  logrus.FieldLogger
	now  func() time.Time

	mu       sync.Mutex
	cat      domain.Catalog
	selected string

	publishing atomic.Bool
}

// New starts a session: the catalog is loaded from the store, or the
// built-in default when nothing usable is stored.
func New(ctx context.Context, deps Deps) *Controller {
	if deps.Session == nil {
		deps.Session = NewSession("", "")
	}
	return &Controller{
		deps: deps,
		log:  deps.Log,
		now:  time.Now,
		cat:  deps.Catalog.Load(ctx),
	}
}

// Close ends the session and releases the sinks.
func (c *Controller) Close() error {
	c.deps.Session.Logout()
	var errs []error
	for _, s := range c.deps.Sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) Session() *Session { return c.deps.Session }

// Catalog returns a copy of the current catalog.
func (c *Controller) Catalog() domain.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cat.Clone()
}

// apply swaps in the result of fn and mirrors it to the store. A store
// failure is logged and does not undo the change.
func (c *Controller) apply(ctx context.Context, fn func(domain.Catalog) (domain.Catalog, error)) error {
	c.mu.Lock()
	next, err := fn(c.cat)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.cat = next
	snapshot := next.Clone()
	c.mu.Unlock()

	if err := c.deps.Catalog.Save(ctx, snapshot); err != nil {
		c.log.WithError(err).Warn("could not save catalog locally")
	}
	return nil
}

func (c *Controller) requireAdmin() error {
	if !c.deps.Session.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

// SelectCourse opens a course and returns it with its active lesson.
func (c *Controller) SelectCourse(id string) (domain.Course, domain.Lesson, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	course, ok := c.cat.FindCourse(id)
	if !ok {
		return domain.Course{}, domain.Lesson{}, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
	}
	c.selected = id
	active, _ := course.ActiveLesson()
	return course.Clone(), active, nil
}

func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SetLessonCompleted records learner progress. No admin needed.
func (c *Controller) SetLessonCompleted(ctx context.Context, courseID, lessonID string, done bool) error {
	return c.apply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		course, ok := cat.FindCourse(courseID)
		if !ok {
			return cat, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
		}
		if _, ok := course.FindLesson(lessonID); !ok {
			return cat, fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
		}
		return catalog.SetLessonCompleted(cat, courseID, lessonID, done), nil
	})
}

func (c *Controller) adminApply(ctx context.Context, fn func(domain.Catalog) (domain.Catalog, error)) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	return c.apply(ctx, fn)
}

func (c *Controller) UpdateCourseField(ctx context.Context, courseID, field, value string) error {
	return c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		return catalog.UpdateCourseField(cat, courseID, field, value)
	})
}

func (c *Controller) UpdateLessonField(ctx context.Context, courseID, lessonID, field, value string) error {
	return c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		return catalog.UpdateLessonField(cat, courseID, lessonID, field, value)
	})
}

func (c *Controller) UpdatePreviewField(ctx context.Context, previewID, field, value string) error {
	return c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		return catalog.UpdatePreviewField(cat, previewID, field, value)
	})
}

func (c *Controller) AddCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	var added domain.Course
	err := c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		var out domain.Catalog
		out, added = catalog.AddCourse(cat, course)
		return out, nil
	})
	return added, err
}

func (c *Controller) RemoveCourse(ctx context.Context, courseID string) error {
	return c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		return catalog.RemoveCourse(cat, courseID), nil
	})
}

func (c *Controller) AddLesson(ctx context.Context, courseID string, lesson domain.Lesson) (domain.Lesson, error) {
	var added domain.Lesson
	err := c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		var (
			out domain.Catalog
			err error
		)
		out, added, err = catalog.AddLesson(cat, courseID, lesson)
		return out, err
	})
	return added, err
}

func (c *Controller) RemoveLesson(ctx context.Context, courseID, lessonID string) error {
	return c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		return catalog.RemoveLesson(cat, courseID, lessonID), nil
	})
}

func (c *Controller) AddPreview(ctx context.Context, p domain.PreviewVideo) (domain.PreviewVideo, error) {
	var added domain.PreviewVideo
	err := c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		var out domain.Catalog
		out, added = catalog.AddPreview(cat, p)
		return out, nil
	})
	return added, err
}

func (c *Controller) RemovePreview(ctx context.Context, previewID string) error {
	return c.adminApply(ctx, func(cat domain.Catalog) (domain.Catalog, error) {
		return catalog.RemovePreview(cat, previewID), nil
	})
}

// PublishTarget returns the stored publish target.
func (c *Controller) PublishTarget(ctx context.Context) (store.PublishTarget, error) {
	if err := c.requireAdmin(); err != nil {
		return store.PublishTarget{}, err
	}
	return c.deps.Settings.Load(ctx)
}

func (c *Controller) SavePublishTarget(ctx context.Context, t store.PublishTarget) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	return c.deps.Settings.Save(ctx, t)
}
