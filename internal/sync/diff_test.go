package sync

import (
	"reflect"
	"testing"

	"academy/internal/domain"
)

func remoteCatalog() domain.Catalog {
	return domain.Catalog{
		Courses: []domain.Course{
			{ID: "c1", Title: "매크로", Price: "₩100", Lessons: []domain.Lesson{
				{ID: "l1", Title: "OT"},
				{ID: "l2", Title: "금리"},
			}},
			{ID: "c2", Title: "차트"},
		},
		Previews: []domain.PreviewVideo{{ID: "p1", Title: "ETF", YoutubeID: "abc"}},
	}
}

func TestDiffIdentical(t *testing.T) {
	r := Diff(remoteCatalog(), remoteCatalog())
	if !r.Empty() {
		t.Fatalf("expected no changes, got %+v", r)
	}
	if got := r.Summary(); got != "0 to create, 0 to update, 0 to delete" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestDiffWhitespaceOnlyIsNotAChange(t *testing.T) {
	local := remoteCatalog()
	local.Courses[0].Title = "  매크로 "
	if r := Diff(local, remoteCatalog()); !r.Empty() {
		t.Errorf("expected no changes, got %+v", r)
	}
}

func TestDiffDetectsChanges(t *testing.T) {
	local := remoteCatalog()
	local.Courses[0].Price = "₩200"
	local.Courses[0].Lessons = []domain.Lesson{
		{ID: "l2", Title: "금리", IsCompleted: true},
		{ID: "l1", Title: "OT"},
		{ID: "l9", Title: "새 강의"},
	}
	local.Courses = local.Courses[:1] // drop c2
	local.Courses = append(local.Courses, domain.Course{ID: "c3", Title: "온체인"})
	local.Previews[0].YoutubeID = "https://youtu.be/xyz"

	r := Diff(local, remoteCatalog())

	wantCreate := []Change{
		{Kind: KindLesson, ID: "l9", Title: "새 강의", Parent: "c1"},
		{Kind: KindCourse, ID: "c3", Title: "온체인"},
	}
	wantUpdate := []Change{
		{Kind: KindCourse, ID: "c1", Title: "매크로", Fields: []string{"price", "lessons"}},
		{Kind: KindLesson, ID: "l2", Title: "금리", Parent: "c1", Fields: []string{"isCompleted"}},
		{Kind: KindPreview, ID: "p1", Title: "ETF", Fields: []string{"youtubeId"}},
	}
	wantDelete := []Change{
		{Kind: KindCourse, ID: "c2", Title: "차트"},
	}

	if !reflect.DeepEqual(r.Create, wantCreate) {
		t.Errorf("Create = %+v\nwant %+v", r.Create, wantCreate)
	}
	if !reflect.DeepEqual(r.Update, wantUpdate) {
		t.Errorf("Update = %+v\nwant %+v", r.Update, wantUpdate)
	}
	if !reflect.DeepEqual(r.Delete, wantDelete) {
		t.Errorf("Delete = %+v\nwant %+v", r.Delete, wantDelete)
	}
}

func TestDiffAgainstEmptyRemote(t *testing.T) {
	r := Diff(remoteCatalog(), domain.Catalog{})
	if len(r.Create) != 3 || len(r.Update) != 0 || len(r.Delete) != 0 {
		t.Errorf("unexpected result %+v", r)
	}
}
