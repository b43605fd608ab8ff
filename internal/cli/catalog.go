package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"academy/internal/cli/colours"
	"academy/internal/devutil"
	"academy/internal/domain"
	"academy/internal/export"
)

func (r *runner) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "📋 Browse and export the catalog",
	}

	var fields string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List courses and preview videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.session(cmd)
			if err != nil {
				return err
			}
			cat := env.Ctrl.Catalog()
			if keys := devutil.ParseKeys(fields); len(keys) > 0 {
				return printFields(cmd, cat, keys)
			}
			printCatalog(cmd, cat)
			return nil
		},
	}
	listCmd.Flags().StringVar(&fields, "fields", "", "print only these JSON fields, e.g. id,title,price")

	showCmd := &cobra.Command{
		Use:   "show <course-id>",
		Short: "Open a course and show its lessons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.session(cmd)
			if err != nil {
				return err
			}
			course, active, err := env.Ctrl.SelectCourse(args[0])
			if err != nil {
				return err
			}
			printCourse(cmd, course, active)
			return nil
		},
	}

	var (
		format string
		out    string
		br     bool
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as JSON, YAML or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			env, err := r.session(cmd)
			if err != nil {
				return err
			}
			b, err := export.Render(env.Ctrl.Catalog(), f)
			if err != nil {
				return err
			}
			if br {
				if b, err = export.Compress(b); err != nil {
					return fmt.Errorf("export: compress: %w", err)
				}
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			success(cmd, "wrote %s (%d bytes)", out, len(b))
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "json, yaml or csv")
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&br, "brotli", false, "brotli-compress the output")

	cmd.AddCommand(listCmd, showCmd, exportCmd)
	return cmd
}

func printCatalog(cmd *cobra.Command, cat domain.Catalog) {
	w := cmd.OutOrStdout()
	colours.Title.Fprintf(w, "📚 Courses (%d)\n", len(cat.Courses))
	for _, c := range cat.Courses {
		done, total := c.Progress()
		colours.Label.Fprintf(w, "  %-12s", c.ID)
		fmt.Fprintf(w, " %s", c.Title)
		colours.Muted.Fprintf(w, "  %s · %s · %s · %d/%d\n", c.Instructor, c.Category, c.Price, done, total)
	}
	colours.Title.Fprintf(w, "🎬 Previews (%d)\n", len(cat.Previews))
	for _, p := range cat.Previews {
		colours.Label.Fprintf(w, "  %-12s", p.ID)
		fmt.Fprintf(w, " %s", p.Title)
		colours.Muted.Fprintf(w, "  %s\n", p.WatchURL())
	}
}

func printFields(cmd *cobra.Command, cat domain.Catalog, keys []string) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"courses":  devutil.PickAll(cat.Courses, keys...),
		"previews": devutil.PickAll(cat.Previews, keys...),
	})
}

func printCourse(cmd *cobra.Command, c domain.Course, active domain.Lesson) {
	w := cmd.OutOrStdout()
	colours.Title.Fprintf(w, "%s\n", c.Title)
	colours.Muted.Fprintf(w, "%s · %s · %s\n", c.Instructor, c.Category, c.Price)
	if c.Description != "" {
		fmt.Fprintln(w, c.Description)
	}
	done, total := c.Progress()
	colours.Info.Fprintf(w, "진도 %d/%d\n", done, total)
	for i, l := range c.Lessons {
		mark := "○"
		if l.IsCompleted {
			mark = "●"
		}
		line := fmt.Sprintf("  %s %2d. %-10s %s", mark, i+1, l.ID, l.Title)
		if l.ID == active.ID {
			colours.Success.Fprintf(w, "%s  ▶ %s\n", line, l.EmbedURL())
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", line, l.Duration)
	}
}
