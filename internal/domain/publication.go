package domain

import "time"

// Publication describes one successful publish. It is what post-publish
// mirrors and notifiers receive.
type Publication struct {
	Repo        string    `json:"repo"`
	Path        string    `json:"path"`
	CommitSHA   string    `json:"commitSha"`
	ContentSHA  string    `json:"contentSha"`
	HTMLURL     string    `json:"htmlUrl,omitempty"`
	Created     bool      `json:"created"`
	PublishedAt time.Time `json:"publishedAt"`
	Courses     int       `json:"courses"`
	Lessons     int       `json:"lessons"`
	Previews    int       `json:"previews"`

	Catalog Catalog `json:"-"`
}

// Counts returns the number of courses, lessons and previews in c.
func (c Catalog) Counts() (courses, lessons, previews int) {
	for _, course := range c.Courses {
		lessons += len(course.Lessons)
	}
	return len(c.Courses), lessons, len(c.Previews)
}
