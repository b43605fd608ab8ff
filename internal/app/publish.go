package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"academy/internal/concurrency"
	"academy/internal/domain"
	"academy/internal/publish"
	"academy/internal/store"
)

type PublishOptions struct {
	// Target overrides the stored publish target field by field. When set
	// it is saved before anything is fetched.
	Target *store.PublishTarget
	DryRun bool
}

// Report is the outcome of a publish as shown to the user. Remote and
// configuration failures land here with OK=false rather than as errors.
type Report struct {
	OK       bool
	Message  string
	Err      error
	Plan     *publish.Plan
	Result   *publish.Result
	Warnings []string
}

func failure(err error) *Report {
	msg := err.Error()
	var perr *publish.Error
	if errors.As(err, &perr) && perr.Message != "" {
		msg = perr.Message
	}
	return &Report{Message: msg, Err: err}
}

// Publish pushes the current catalog to the publish target. Only one
// publish runs at a time; a failed publish leaves local state as it was.
func (c *Controller) Publish(ctx context.Context, opts PublishOptions) (*Report, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	if !c.publishing.CompareAndSwap(false, true) {
		return nil, ErrPublishInFlight
	}
	defer c.publishing.Store(false)

	target, err := c.deps.Settings.Load(ctx)
	if err != nil {
		c.log.WithError(err).Warn("could not read stored publish target")
		target = store.PublishTarget{}
	}
	if o := opts.Target; o != nil {
		target = mergeTarget(target, *o)
	}

	settings := c.settingsFor(target)
	settings, err = settings.Validate()
	if err != nil {
		return failure(err), nil
	}
	if opts.Target != nil {
		if err := c.deps.Settings.Save(ctx, store.PublishTarget{Token: settings.Token, Repo: settings.Repo, Path: settings.Path}); err != nil {
			c.log.WithError(err).Warn("could not save publish target")
		}
	}

	cat := c.Catalog()
	plan, err := c.deps.Publisher.Preview(ctx, settings, cat)
	if err != nil {
		return failure(err), nil
	}

	var warnings []string
	for _, m := range plan.Missing {
		warnings = append(warnings, fmt.Sprintf("%s declaration not found in %s; left unchanged", m, settings.Path))
	}

	if opts.DryRun {
		msg := fmt.Sprintf("%s would be updated", settings.Path)
		switch {
		case plan.Create:
			msg = fmt.Sprintf("%s would be created", settings.Path)
		case !plan.Changed():
			msg = fmt.Sprintf("%s is already up to date", settings.Path)
		}
		return &Report{OK: true, Message: msg, Plan: plan, Warnings: warnings}, nil
	}

	res, err := c.deps.Publisher.Write(ctx, plan)
	if err != nil {
		return failure(err), nil
	}

	pub := c.publication(res, cat)
	warnings = append(warnings, c.deliver(ctx, pub)...)

	return &Report{
		OK:       true,
		Message:  fmt.Sprintf("published to %s/%s", res.Repo, res.Path),
		Plan:     plan,
		Result:   res,
		Warnings: warnings,
	}, nil
}

func (c *Controller) settingsFor(t store.PublishTarget) publish.Settings {
	d := c.deps.Defaults
	if d.Format == "" {
		d.Format = publish.FormatJSON
	}
	if t.Path == "" {
		t.Path = publish.DefaultPath(d.Format)
	}
	return publish.Settings{
		Token:   t.Token,
		Repo:    t.Repo,
		Path:    t.Path,
		Branch:  d.Branch,
		Message: d.Message,
		Format:  d.Format,
	}
}

func mergeTarget(base, o store.PublishTarget) store.PublishTarget {
	if o.Token != "" {
		base.Token = o.Token
	}
	if o.Repo != "" {
		base.Repo = o.Repo
	}
	if o.Path != "" {
		base.Path = o.Path
	}
	return base
}

func (c *Controller) publication(res *publish.Result, cat domain.Catalog) domain.Publication {
	courses, lessons, previews := cat.Counts()
	return domain.Publication{
		Repo:        res.Repo,
		Path:        res.Path,
		CommitSHA:   res.CommitSHA,
		ContentSHA:  res.ContentSHA,
		HTMLURL:     res.HTMLURL,
		Created:     res.Created,
		PublishedAt: c.now().UTC(),
		Courses:     courses,
		Lessons:     lessons,
		Previews:    previews,
		Catalog:     cat,
	}
}

// deliver hands the publication to every sink in parallel. Sink failures
// come back as warnings; the publish itself already succeeded.
func (c *Controller) deliver(ctx context.Context, pub domain.Publication) []string {
	errs := concurrency.ForEach(ctx, c.deps.Sinks, concurrency.DefaultOptions(),
		func(ctx context.Context, _ int, s Sink) error {
			if err := s.Deliver(ctx, pub); err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
			c.log.WithFields(logrus.Fields{"sink": s.Name(), "commit": pub.CommitSHA}).Debug("publication delivered")
			return nil
		})

	warnings := make([]string, 0, len(errs))
	for _, err := range errs {
		c.log.WithError(err).Warn("post-publish step failed")
		warnings = append(warnings, err.Error())
	}
	return warnings
}
