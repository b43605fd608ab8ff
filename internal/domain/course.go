package domain

import (
	"net/url"
	"strings"
)

// Course is a paid course in the academy catalog.
// Price and Duration are display strings, never parsed.
type Course struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Thumbnail   string   `json:"thumbnail" yaml:"thumbnail"` // image URL or data URI
	Instructor  string   `json:"instructor" yaml:"instructor"`
	Category    string   `json:"category" yaml:"category"`
	Price       string   `json:"price" yaml:"price"`
	Lessons     []Lesson `json:"lessons" yaml:"lessons"`
}

// Lesson is one video inside a course. Order inside Course.Lessons matters.
type Lesson struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Duration    string `json:"duration" yaml:"duration"`
	VideoURL    string `json:"videoUrl" yaml:"videoUrl"`
	IsCompleted bool   `json:"isCompleted" yaml:"isCompleted"`
}

// ActiveLesson returns the lesson a learner lands on when opening the course.
func (c Course) ActiveLesson() (Lesson, bool) {
	if len(c.Lessons) == 0 {
		return Lesson{}, false
	}
	return c.Lessons[0], true
}

// Progress returns completed and total lesson counts.
func (c Course) Progress() (done, total int) {
	for _, l := range c.Lessons {
		if l.IsCompleted {
			done++
		}
	}
	return done, len(c.Lessons)
}

// FindLesson returns the lesson with the given id.
func (c Course) FindLesson(id string) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// EmbedURL turns a YouTube watch or short link into its embed form.
// Plain media URLs are returned unchanged.
func (l Lesson) EmbedURL() string {
	id, ok := youtubeID(l.VideoURL)
	if !ok {
		return strings.TrimSpace(l.VideoURL)
	}
	return "https://www.youtube.com/embed/" + id
}

func youtubeID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	case "youtube.com", "m.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v, true
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				return id, id != ""
			}
		}
	}
	return "", false
}
