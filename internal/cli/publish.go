package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"academy/internal/app"
	"academy/internal/cli/colours"
	"academy/internal/domain"
	"academy/internal/publish"
	"academy/internal/store"
	catsync "academy/internal/sync"
)

const (
	msgPublished     = "GitHub 동기화 성공!"
	msgMissingConfig = "GitHub 설정을 모두 입력해 주세요."
)

func (r *runner) publishCmd() *cobra.Command {
	var (
		t      store.PublishTarget
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "🚀 Publish the catalog to GitHub (admin)",
		Long: `Publish fetches the target file, replaces the catalog in it and writes
it back guarded by the sha it fetched. If someone changed the file in
between, nothing is written and the conflict is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}

			opts := app.PublishOptions{DryRun: dryRun}
			if t != (store.PublishTarget{}) {
				o := t
				opts.Target = &o
			}

			report, err := env.Ctrl.Publish(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, w := range report.Warnings {
				warn(cmd, w)
			}
			if !report.OK {
				return publishError(report)
			}

			if dryRun {
				colours.Info.Fprintf(cmd.OutOrStdout(), "🔍 %s\n", report.Message)
				if plan := report.Plan; plan != nil {
					switch {
					case plan.Remote != nil:
						printDiff(cmd, catsync.Diff(env.Ctrl.Catalog(), *plan.Remote))
					case plan.Create:
						printDiff(cmd, catsync.Diff(env.Ctrl.Catalog(), domain.Catalog{}))
					}
				}
				return nil
			}

			success(cmd, "%s %s", msgPublished, report.Message)
			if res := report.Result; res != nil && res.HTMLURL != "" {
				colours.Muted.Fprintf(cmd.OutOrStdout(), "   %s\n", res.HTMLURL)
			}
			return nil
		},
	}
	targetFlags(cmd, &t)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and patch, show what would change, write nothing")
	return cmd
}

func publishError(report *app.Report) error {
	switch {
	case errors.Is(report.Err, publish.ErrConfig):
		return fmt.Errorf("%s (%s)", msgMissingConfig, report.Message)
	case errors.Is(report.Err, publish.ErrConflict):
		return fmt.Errorf("%s; run publish --dry-run to review the remote changes", report.Message)
	}
	return errors.New(report.Message)
}

func printDiff(cmd *cobra.Command, d catsync.Result) {
	w := cmd.OutOrStdout()
	colours.Title.Fprintln(w, d.Summary())
	line := func(c *color.Color, sign string, ch catsync.Change) {
		s := fmt.Sprintf("  %s %-7s %s", sign, ch.Kind, ch.ID)
		if ch.Parent != "" {
			s += " (" + ch.Parent + ")"
		}
		if ch.Title != "" {
			s += "  " + ch.Title
		}
		if len(ch.Fields) > 0 {
			s += "  [" + strings.Join(ch.Fields, ", ") + "]"
		}
		c.Fprintln(w, s)
	}
	for _, ch := range d.Create {
		line(colours.Success, "+", ch)
	}
	for _, ch := range d.Update {
		line(colours.Warning, "~", ch)
	}
	for _, ch := range d.Delete {
		line(colours.Error, "-", ch)
	}
}
