package domain

import "strings"

// PreviewVideo is a free teaser shown on the landing page.
// YoutubeID holds either a bare video id or a full URL.
type PreviewVideo struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	YoutubeID string `json:"youtubeId" yaml:"youtubeId"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
}

// WatchURL is the link opened when the preview is clicked.
func (p PreviewVideo) WatchURL() string {
	v := strings.TrimSpace(p.YoutubeID)
	if strings.Contains(v, "http") {
		return v
	}
	return "https://youtube.com/watch?v=" + v
}

// Catalog is the aggregate root: the unit of persistence and of publication.
type Catalog struct {
	Courses  []Course       `json:"courses" yaml:"courses"`
	Previews []PreviewVideo `json:"previews" yaml:"previews"`
}

// FindCourse returns the course with the given id.
func (c Catalog) FindCourse(id string) (Course, bool) {
	for _, course := range c.Courses {
		if course.ID == id {
			return course, true
		}
	}
	return Course{}, false
}

// Normalize replaces nil sequences with empty ones so the serialized
// form always carries [] rather than null.
func (c Catalog) Normalize() Catalog {
	c = c.Clone()
	if c.Courses == nil {
		c.Courses = []Course{}
	}
	if c.Previews == nil {
		c.Previews = []PreviewVideo{}
	}
	for i := range c.Courses {
		if c.Courses[i].Lessons == nil {
			c.Courses[i].Lessons = []Lesson{}
		}
	}
	return c
}

// Clone returns a deep copy; the result shares no slices with c.
func (c Catalog) Clone() Catalog {
	out := Catalog{}
	if c.Courses != nil {
		out.Courses = make([]Course, len(c.Courses))
		for i, course := range c.Courses {
			out.Courses[i] = course.Clone()
		}
	}
	if c.Previews != nil {
		out.Previews = make([]PreviewVideo, len(c.Previews))
		copy(out.Previews, c.Previews)
	}
	return out
}

// Clone returns a copy of the course with its own lessons slice.
func (c Course) Clone() Course {
	if c.Lessons != nil {
		lessons := make([]Lesson, len(c.Lessons))
		copy(lessons, c.Lessons)
		c.Lessons = lessons
	}
	return c
}
