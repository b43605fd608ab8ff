// Package catalog holds the pure mutation helpers for domain.Catalog.
// Every function returns a new Catalog and leaves its input untouched.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"academy/internal/domain"
)

var (
	ErrUnknownField   = errors.New("catalog: unknown field")
	ErrInvalidValue   = errors.New("catalog: invalid value")
	ErrCourseNotFound = errors.New("catalog: course not found")
)

//go:embed default_catalog.json
var defaultCatalogJSON []byte

var defaultCatalog = mustParse(defaultCatalogJSON)

func mustParse(b []byte) domain.Catalog {
	var c domain.Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		panic(fmt.Sprintf("catalog: embedded default catalog: %v", err))
	}
	return c.Normalize()
}

// Default returns the built-in catalog used when nothing is stored yet.
func Default() domain.Catalog {
	return defaultCatalog.Clone()
}

// NewID returns an identifier that is unique for the lifetime of any catalog.
func NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// UpdateCourseField sets one course field, addressed by its JSON name.
// An unknown courseID yields an unchanged copy.
func UpdateCourseField(c domain.Catalog, courseID, field, value string) (domain.Catalog, error) {
	out := c.Clone()
	for i := range out.Courses {
		if out.Courses[i].ID != courseID {
			continue
		}
		if err := setCourseField(&out.Courses[i], field, value); err != nil {
			return c, err
		}
	}
	return out, nil
}

func setCourseField(course *domain.Course, field, value string) error {
	switch field {
	case "title":
		course.Title = value
	case "description":
		course.Description = value
	case "thumbnail":
		course.Thumbnail = value
	case "instructor":
		course.Instructor = value
	case "category":
		course.Category = value
	case "price":
		course.Price = value
	default:
		return fmt.Errorf("%w: course.%s", ErrUnknownField, field)
	}
	return nil
}

// UpdateLessonField sets one lesson field inside one course.
func UpdateLessonField(c domain.Catalog, courseID, lessonID, field, value string) (domain.Catalog, error) {
	out := c.Clone()
	for i := range out.Courses {
		if out.Courses[i].ID != courseID {
			continue
		}
		lessons := out.Courses[i].Lessons
		for j := range lessons {
			if lessons[j].ID != lessonID {
				continue
			}
			if err := setLessonField(&lessons[j], field, value); err != nil {
				return c, err
			}
		}
	}
	return out, nil
}

func setLessonField(lesson *domain.Lesson, field, value string) error {
	switch field {
	case "title":
		lesson.Title = value
	case "duration":
		lesson.Duration = value
	case "videoUrl":
		lesson.VideoURL = value
	case "isCompleted":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: lesson.isCompleted=%q", ErrInvalidValue, value)
		}
		lesson.IsCompleted = b
	default:
		return fmt.Errorf("%w: lesson.%s", ErrUnknownField, field)
	}
	return nil
}

// SetLessonCompleted flips the progress flag of one lesson.
func SetLessonCompleted(c domain.Catalog, courseID, lessonID string, done bool) domain.Catalog {
	out, _ := UpdateLessonField(c, courseID, lessonID, "isCompleted", strconv.FormatBool(done))
	return out
}

// UpdatePreviewField sets one preview video field.
func UpdatePreviewField(c domain.Catalog, previewID, field, value string) (domain.Catalog, error) {
	out := c.Clone()
	for i := range out.Previews {
		if out.Previews[i].ID != previewID {
			continue
		}
		p := &out.Previews[i]
		switch field {
		case "title":
			p.Title = value
		case "youtubeId":
			p.YoutubeID = value
		case "thumbnail":
			p.Thumbnail = value
		default:
			return c, fmt.Errorf("%w: preview.%s", ErrUnknownField, field)
		}
	}
	return out, nil
}

// AddCourse appends a course. A missing or already used id is replaced
// with a fresh one; the stored course is returned.
func AddCourse(c domain.Catalog, course domain.Course) (domain.Catalog, domain.Course) {
	out := c.Clone()
	if course.ID == "" || hasCourse(out, course.ID) {
		course.ID = NewID("c")
	}
	course = course.Clone()
	if course.Lessons == nil {
		course.Lessons = []domain.Lesson{}
	}
	out.Courses = append(out.Courses, course)
	return out, course
}

// RemoveCourse drops a course. Unknown ids are a no-op.
func RemoveCourse(c domain.Catalog, courseID string) domain.Catalog {
	out := c.Clone()
	if out.Courses == nil {
		return out
	}
	kept := make([]domain.Course, 0, len(out.Courses))
	for _, course := range out.Courses {
		if course.ID != courseID {
			kept = append(kept, course)
		}
	}
	out.Courses = kept
	return out
}

// AddLesson appends a lesson to the end of a course's lesson list.
func AddLesson(c domain.Catalog, courseID string, lesson domain.Lesson) (domain.Catalog, domain.Lesson, error) {
	out := c.Clone()
	for i := range out.Courses {
		course := &out.Courses[i]
		if course.ID != courseID {
			continue
		}
		if _, taken := course.FindLesson(lesson.ID); lesson.ID == "" || taken {
			lesson.ID = NewID("l")
		}
		course.Lessons = append(course.Lessons, lesson)
		return out, lesson, nil
	}
	return c, domain.Lesson{}, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
}

// RemoveLesson drops a lesson while keeping the order of the others.
func RemoveLesson(c domain.Catalog, courseID, lessonID string) domain.Catalog {
	out := c.Clone()
	for i := range out.Courses {
		course := &out.Courses[i]
		if course.ID != courseID || course.Lessons == nil {
			continue
		}
		kept := make([]domain.Lesson, 0, len(course.Lessons))
		for _, l := range course.Lessons {
			if l.ID != lessonID {
				kept = append(kept, l)
			}
		}
		course.Lessons = kept
	}
	return out
}

// AddPreview appends a preview video.
func AddPreview(c domain.Catalog, p domain.PreviewVideo) (domain.Catalog, domain.PreviewVideo) {
	out := c.Clone()
	if p.ID == "" || hasPreview(out, p.ID) {
		p.ID = NewID("p")
	}
	out.Previews = append(out.Previews, p)
	return out, p
}

// RemovePreview drops a preview video. Unknown ids are a no-op.
func RemovePreview(c domain.Catalog, previewID string) domain.Catalog {
	out := c.Clone()
	if out.Previews == nil {
		return out
	}
	kept := make([]domain.PreviewVideo, 0, len(out.Previews))
	for _, p := range out.Previews {
		if p.ID != previewID {
			kept = append(kept, p)
		}
	}
	out.Previews = kept
	return out
}

func hasCourse(c domain.Catalog, id string) bool {
	_, ok := c.FindCourse(id)
	return ok
}

func hasPreview(c domain.Catalog, id string) bool {
	for _, p := range c.Previews {
		if p.ID == id {
			return true
		}
	}
	return false
}
