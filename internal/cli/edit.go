package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"academy/internal/cli/colours"
	"academy/internal/domain"
)

func (r *runner) courseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "🛠️ Edit courses (admin)",
	}

	var c domain.Course
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			added, err := env.Ctrl.AddCourse(cmd.Context(), c)
			if err != nil {
				return err
			}
			success(cmd, "course %s added", added.ID)
			return nil
		},
	}
	f := addCmd.Flags()
	f.StringVar(&c.Title, "title", "", "title")
	f.StringVar(&c.Description, "description", "", "description")
	f.StringVar(&c.Thumbnail, "thumbnail", "", "image URL or data URI")
	f.StringVar(&c.Instructor, "instructor", "", "instructor")
	f.StringVar(&c.Category, "category", "", "category")
	f.StringVar(&c.Price, "price", "", "display price, e.g. ₩490,000")
	_ = addCmd.MarkFlagRequired("title")

	setCmd := &cobra.Command{
		Use:   "set <course-id> <field> <value>",
		Short: "Set one course field (title, description, thumbnail, instructor, category, price)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			if err := env.Ctrl.UpdateCourseField(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			success(cmd, "course %s: %s updated", args[0], args[1])
			return nil
		},
	}

	var yes bool
	rmCmd := &cobra.Command{
		Use:   "rm <course-id>",
		Short: "Remove a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			if !confirm(cmd, yes, "Remove course "+args[0]+"?") {
				return nil
			}
			if err := env.Ctrl.RemoveCourse(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd, "course %s removed", args[0])
			return nil
		},
	}

	rmCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(addCmd, setCmd, rmCmd)
	return cmd
}

func (r *runner) lessonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "🛠️ Edit lessons (admin)",
	}

	var l domain.Lesson
	addCmd := &cobra.Command{
		Use:   "add <course-id>",
		Short: "Append a lesson to a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			added, err := env.Ctrl.AddLesson(cmd.Context(), args[0], l)
			if err != nil {
				return err
			}
			success(cmd, "lesson %s added to %s", added.ID, args[0])
			return nil
		},
	}
	f := addCmd.Flags()
	f.StringVar(&l.Title, "title", "", "title")
	f.StringVar(&l.Duration, "duration", "", "duration, e.g. 12:30")
	f.StringVar(&l.VideoURL, "video-url", "", "YouTube or media URL")
	_ = addCmd.MarkFlagRequired("title")

	setCmd := &cobra.Command{
		Use:   "set <course-id> <lesson-id> <field> <value>",
		Short: "Set one lesson field (title, duration, videoUrl, isCompleted)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			if err := env.Ctrl.UpdateLessonField(cmd.Context(), args[0], args[1], args[2], args[3]); err != nil {
				return err
			}
			success(cmd, "lesson %s: %s updated", args[1], args[2])
			return nil
		},
	}

	var yes bool
	rmCmd := &cobra.Command{
		Use:   "rm <course-id> <lesson-id>",
		Short: "Remove a lesson",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			if !confirm(cmd, yes, "Remove lesson "+args[1]+" from "+args[0]+"?") {
				return nil
			}
			if err := env.Ctrl.RemoveLesson(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			success(cmd, "lesson %s removed", args[1])
			return nil
		},
	}

	rmCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(addCmd, setCmd, rmCmd)
	return cmd
}

func (r *runner) previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "🛠️ Edit preview videos (admin)",
	}

	var p domain.PreviewVideo
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a preview video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			added, err := env.Ctrl.AddPreview(cmd.Context(), p)
			if err != nil {
				return err
			}
			success(cmd, "preview %s added", added.ID)
			return nil
		},
	}
	f := addCmd.Flags()
	f.StringVar(&p.Title, "title", "", "title")
	f.StringVar(&p.YoutubeID, "youtube-id", "", "YouTube id or full URL")
	f.StringVar(&p.Thumbnail, "thumbnail", "", "image URL or data URI")
	_ = addCmd.MarkFlagRequired("title")

	setCmd := &cobra.Command{
		Use:   "set <preview-id> <field> <value>",
		Short: "Set one preview field (title, youtubeId, thumbnail)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			if err := env.Ctrl.UpdatePreviewField(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			success(cmd, "preview %s: %s updated", args[0], args[1])
			return nil
		},
	}

	var yes bool
	rmCmd := &cobra.Command{
		Use:   "rm <preview-id>",
		Short: "Remove a preview video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			if !confirm(cmd, yes, "Remove preview "+args[0]+"?") {
				return nil
			}
			if err := env.Ctrl.RemovePreview(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd, "preview %s removed", args[0])
			return nil
		},
	}

	rmCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(addCmd, setCmd, rmCmd)
	return cmd
}

func (r *runner) progressCmd() *cobra.Command {
	var done bool
	cmd := &cobra.Command{
		Use:   "progress <course-id> <lesson-id>",
		Short: "✔️ Mark a lesson as completed (or not, with --done=false)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.session(cmd)
			if err != nil {
				return err
			}
			if err := env.Ctrl.SetLessonCompleted(cmd.Context(), args[0], args[1], done); err != nil {
				return err
			}
			course, _, err := env.Ctrl.SelectCourse(args[0])
			if err != nil {
				return err
			}
			d, total := course.Progress()
			success(cmd, "%s: %d/%d lessons completed", course.Title, d, total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&done, "done", true, "completed flag to set")
	return cmd
}

// confirm asks on stdin unless yes is set. Anything but y/yes declines.
func confirm(cmd *cobra.Command, yes bool, prompt string) bool {
	if yes {
		return true
	}
	colours.Warning.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		fprintf(cmd, "\n")
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	colours.Muted.Fprintln(cmd.OutOrStdout(), "cancelled")
	return false
}
