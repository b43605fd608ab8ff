package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"academy/internal/domain"
)

// One row per lesson, in course then lesson order. Keep header order EXACT.
var lessonHeader = []string{
	"COURSE_ID",
	"COURSE_TITLE",
	"INSTRUCTOR",
	"CATEGORY",
	"PRICE",
	"LESSON_NO",
	"LESSON_ID",
	"LESSON_TITLE",
	"DURATION",
	"VIDEO_URL",
	"EMBED_URL",
	"COMPLETED",
}

var previewHeader = []string{
	"PREVIEW_ID",
	"PREVIEW_TITLE",
	"WATCH_URL",
	"THUMBNAIL",
}

// WriteLessonsCSV writes the curriculum. A course without lessons still
// gets one row with the lesson columns empty.
func WriteLessonsCSV(w io.Writer, cat domain.Catalog) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(lessonHeader); err != nil {
		return err
	}
	for _, c := range cat.Courses {
		if len(c.Lessons) == 0 {
			if err := cw.Write(courseRow(c, nil, 0)); err != nil {
				return err
			}
			continue
		}
		for i := range c.Lessons {
			if err := cw.Write(courseRow(c, &c.Lessons[i], i+1)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func courseRow(c domain.Course, l *domain.Lesson, n int) []string {
	row := []string{
		c.ID,
		clean(c.Title),
		clean(c.Instructor),
		clean(c.Category),
		clean(c.Price),
		"", "", "", "", "", "", "",
	}
	if l == nil {
		return row
	}
	row[5] = strconv.Itoa(n)
	row[6] = l.ID
	row[7] = clean(l.Title)
	row[8] = l.Duration
	row[9] = l.VideoURL
	row[10] = l.EmbedURL()
	row[11] = strconv.FormatBool(l.IsCompleted)
	return row
}

func WritePreviewsCSV(w io.Writer, cat domain.Catalog) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(previewHeader); err != nil {
		return err
	}
	for _, p := range cat.Previews {
		// data URIs make the file unusable in a spreadsheet
		thumb := p.Thumbnail
		if strings.HasPrefix(thumb, "data:") {
			thumb = "(embedded image)"
		}
		if err := cw.Write([]string{p.ID, clean(p.Title), p.WatchURL(), thumb}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// clean flattens newlines so each record stays on one line.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
