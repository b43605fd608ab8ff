// Package sync compares the local catalog with the copy held by the
// publish target, for dry runs and status output.
package sync

import (
	"strconv"
	"strings"

	"academy/internal/domain"
)

type Kind string

const (
	KindCourse  Kind = "course"
	KindLesson  Kind = "lesson"
	KindPreview Kind = "preview"
)

// Change is one entity that differs. Fields lists the JSON names of the
// changed fields for updates.
type Change struct {
	Kind   Kind
	ID     string
	Title  string
	Parent string // course id, for lessons
	Fields []string
}

type Result struct {
	Create []Change
	Update []Change
	Delete []Change
}

func (r Result) Empty() bool {
	return len(r.Create) == 0 && len(r.Update) == 0 && len(r.Delete) == 0
}

// Diff compares local (what would be published) with remote (what is
// published now). Returns, in local order then remote order:
// - create: present locally but not remotely
// - update: present in both but changed
// - del: present remotely but not locally
func Diff(local, remote domain.Catalog) Result {
	var r Result

	remoteCourses := map[string]domain.Course{}
	for _, c := range remote.Courses {
		remoteCourses[c.ID] = c
	}
	localCourses := map[string]bool{}

	for _, lc := range local.Courses {
		localCourses[lc.ID] = true
		rc, ok := remoteCourses[lc.ID]
		if !ok {
			r.Create = append(r.Create, Change{Kind: KindCourse, ID: lc.ID, Title: norm(lc.Title)})
			continue
		}
		if fields := courseFields(lc, rc); len(fields) > 0 {
			r.Update = append(r.Update, Change{Kind: KindCourse, ID: lc.ID, Title: norm(lc.Title), Fields: fields})
		}
		diffLessons(&r, lc, rc)
	}
	for _, rc := range remote.Courses {
		if !localCourses[rc.ID] {
			r.Delete = append(r.Delete, Change{Kind: KindCourse, ID: rc.ID, Title: norm(rc.Title)})
		}
	}

	remotePreviews := map[string]domain.PreviewVideo{}
	for _, p := range remote.Previews {
		remotePreviews[p.ID] = p
	}
	localPreviews := map[string]bool{}
	for _, lp := range local.Previews {
		localPreviews[lp.ID] = true
		rp, ok := remotePreviews[lp.ID]
		if !ok {
			r.Create = append(r.Create, Change{Kind: KindPreview, ID: lp.ID, Title: norm(lp.Title)})
			continue
		}
		if fields := previewFields(lp, rp); len(fields) > 0 {
			r.Update = append(r.Update, Change{Kind: KindPreview, ID: lp.ID, Title: norm(lp.Title), Fields: fields})
		}
	}
	for _, rp := range remote.Previews {
		if !localPreviews[rp.ID] {
			r.Delete = append(r.Delete, Change{Kind: KindPreview, ID: rp.ID, Title: norm(rp.Title)})
		}
	}

	return r
}

func diffLessons(r *Result, lc, rc domain.Course) {
	remote := map[string]domain.Lesson{}
	for _, l := range rc.Lessons {
		remote[l.ID] = l
	}
	local := map[string]bool{}
	for _, ll := range lc.Lessons {
		local[ll.ID] = true
		rl, ok := remote[ll.ID]
		if !ok {
			r.Create = append(r.Create, Change{Kind: KindLesson, ID: ll.ID, Title: norm(ll.Title), Parent: lc.ID})
			continue
		}
		if fields := lessonFields(ll, rl); len(fields) > 0 {
			r.Update = append(r.Update, Change{Kind: KindLesson, ID: ll.ID, Title: norm(ll.Title), Parent: lc.ID, Fields: fields})
		}
	}
	for _, rl := range rc.Lessons {
		if !local[rl.ID] {
			r.Delete = append(r.Delete, Change{Kind: KindLesson, ID: rl.ID, Title: norm(rl.Title), Parent: rc.ID})
		}
	}
}

func courseFields(l, r domain.Course) []string {
	var out []string
	for _, f := range []struct {
		name string
		a, b string
	}{
		{"title", l.Title, r.Title},
		{"description", l.Description, r.Description},
		{"thumbnail", l.Thumbnail, r.Thumbnail},
		{"instructor", l.Instructor, r.Instructor},
		{"category", l.Category, r.Category},
		{"price", l.Price, r.Price},
	} {
		if norm(f.a) != norm(f.b) {
			out = append(out, f.name)
		}
	}
	if !sameOrder(l.Lessons, r.Lessons) {
		out = append(out, "lessons")
	}
	return out
}

// sameOrder reports whether the lessons both sides share appear in the
// same relative order.
func sameOrder(a, b []domain.Lesson) bool {
	inB := map[string]bool{}
	for _, l := range b {
		inB[l.ID] = true
	}
	inA := map[string]bool{}
	var common []string
	for _, l := range a {
		inA[l.ID] = true
		if inB[l.ID] {
			common = append(common, l.ID)
		}
	}
	i := 0
	for _, l := range b {
		if !inA[l.ID] {
			continue
		}
		if common[i] != l.ID {
			return false
		}
		i++
	}
	return true
}

func lessonFields(l, r domain.Lesson) []string {
	var out []string
	if norm(l.Title) != norm(r.Title) {
		out = append(out, "title")
	}
	if norm(l.Duration) != norm(r.Duration) {
		out = append(out, "duration")
	}
	if norm(l.VideoURL) != norm(r.VideoURL) {
		out = append(out, "videoUrl")
	}
	if l.IsCompleted != r.IsCompleted {
		out = append(out, "isCompleted")
	}
	return out
}

func previewFields(l, r domain.PreviewVideo) []string {
	var out []string
	if norm(l.Title) != norm(r.Title) {
		out = append(out, "title")
	}
	if norm(l.YoutubeID) != norm(r.YoutubeID) {
		out = append(out, "youtubeId")
	}
	if norm(l.Thumbnail) != norm(r.Thumbnail) {
		out = append(out, "thumbnail")
	}
	return out
}

// Summary is a one-line count, e.g. "2 to create, 1 to update, 0 to delete".
func (r Result) Summary() string {
	return strconv.Itoa(len(r.Create)) + " to create, " +
		strconv.Itoa(len(r.Update)) + " to update, " +
		strconv.Itoa(len(r.Delete)) + " to delete"
}

func norm(s string) string {
	return strings.TrimSpace(s)
}
