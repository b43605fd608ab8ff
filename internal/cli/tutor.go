package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"academy/internal/cli/colours"
	"academy/internal/domain"
	"academy/internal/tutor"
)

func (r *runner) tutorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "🤖 Ask the AI study assistant",
	}

	var lessonID string
	askCmd := &cobra.Command{
		Use:   "ask <course-id> [question...]",
		Short: "Ask about the current lesson of a course; no question prints the greeting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.session(cmd)
			if err != nil {
				return err
			}
			course, lesson, err := env.Ctrl.SelectCourse(args[0])
			if err != nil {
				return err
			}
			if lessonID != "" {
				l, ok := course.FindLesson(lessonID)
				if !ok {
					return errors.New("lesson not found: " + lessonID)
				}
				lesson = l
			}

			w := cmd.OutOrStdout()
			question := strings.TrimSpace(strings.Join(args[1:], " "))
			if question == "" {
				colours.Info.Fprintln(w, tutor.Greeting(course.Title, lessonTitle(lesson)))
				return nil
			}

			reply := env.Tutor.Ask(cmd.Context(), tutor.Request{
				CourseTitle: course.Title,
				Context:     lessonTitle(lesson),
				Message:     question,
			})
			if reply.Failed {
				return errors.New(reply.Text)
			}
			colours.Label.Fprint(w, "🤖 ")
			fprintf(cmd, "%s\n", reply.Text)
			return nil
		},
	}
	askCmd.Flags().StringVar(&lessonID, "lesson", "", "lesson to ask about (default: the course's first lesson)")

	cmd.AddCommand(askCmd)
	return cmd
}

func lessonTitle(l domain.Lesson) string {
	if l.Title == "" {
		return "강의 소개"
	}
	return l.Title
}
