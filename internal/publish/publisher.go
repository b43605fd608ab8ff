// Package publish pushes the catalog into a file hosted behind the
// contents API: fetch the file and its sha, patch it, write it back
// guarded by that sha. A conflict is reported, never merged or retried.
package publish

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"

	"academy/internal/domain"
	"academy/internal/github"
)

type Publisher struct {
	api ContentAPI
	log logrus.FieldLogger
	now func() time.Time
}

func New(api ContentAPI, log logrus.FieldLogger) *Publisher {
	return &Publisher{api: api, log: log, now: time.Now}
}

// Plan is a patched document ready to be written.
type Plan struct {
	Settings Settings
	Current  string // remote content as fetched, empty in create mode
	Content  string // patched content
	SHA      string // empty in create mode
	Create   bool
	Missing  []string

	// Remote is the catalog the remote file currently holds, when it
	// could be parsed.
	Remote *domain.Catalog
}

// Changed reports whether writing the plan would alter the remote file.
func (p *Plan) Changed() bool { return p.Create || p.Current != p.Content }

type Result struct {
	Repo       string
	Path       string
	Created    bool
	Missing    []string
	ContentSHA string
	CommitSHA  string
	HTMLURL    string
	Content    string
}

// Preview runs validate, fetch and patch without writing anything.
func (p *Publisher) Preview(ctx context.Context, s Settings, cat domain.Catalog) (*Plan, error) {
	s, err := s.Validate()
	if err != nil {
		return nil, err
	}
	target := github.Target{Token: s.Token, Repo: s.Repo, Path: s.Path, Branch: s.Branch}
	log := p.log.WithFields(logrus.Fields{"repo": s.Repo, "path": s.Path, "format": s.Format})

	plan := &Plan{Settings: s}

	remote, err := p.api.GetContents(ctx, target)
	switch {
	case errors.Is(err, github.ErrNotFound) && s.Format == FormatJSON:
		log.Info("remote file not found, it will be created")
		plan.Create = true
	case errors.Is(err, github.ErrNotFound):
		return nil, newError(KindNotFound, fmt.Sprintf("%s not found in %s", s.Path, s.Repo), err)
	case err != nil:
		return nil, newError(KindFetch, remoteMessage(err), err)
	default:
		plan.Current = remote.Content
		plan.SHA = remote.SHA
	}

	switch s.Format {
	case FormatModule:
		plan.Content, plan.Missing, err = PatchModule(plan.Current, cat)
		if err != nil {
			return nil, err
		}
		if rc, ok := ExtractModule(plan.Current); ok {
			plan.Remote = &rc
		}
		for _, m := range plan.Missing {
			log.WithField("block", m).Warn("declaration not found, left untouched")
		}
	default:
		plan.Content, err = RenderDocument(cat, p.now())
		if err != nil {
			return nil, newError(KindPatch, "encode document", err)
		}
		if !plan.Create {
			if rc, err := ParseDocument(plan.Current); err == nil {
				plan.Remote = &rc
				// same catalog: keep the remote updatedAt
				if reflect.DeepEqual(rc, cat.Normalize()) {
					plan.Content = plan.Current
				}
			}
		}
	}
	return plan, nil
}

// Publish runs the full fetch, patch and write sequence once.
func (p *Publisher) Publish(ctx context.Context, s Settings, cat domain.Catalog) (*Result, error) {
	plan, err := p.Preview(ctx, s, cat)
	if err != nil {
		return nil, err
	}
	return p.Write(ctx, plan)
}

// Write submits a plan in a single request guarded by the plan's sha.
func (p *Publisher) Write(ctx context.Context, plan *Plan) (*Result, error) {
	s := plan.Settings
	target := github.Target{Token: s.Token, Repo: s.Repo, Path: s.Path, Branch: s.Branch}

	resp, err := p.api.PutContents(ctx, target, github.UpdateRequest{
		Message: s.Message,
		Content: plan.Content,
		SHA:     plan.SHA,
	})
	switch {
	case errors.Is(err, github.ErrConflict):
		return nil, newError(KindConflict, "the remote file changed since it was read; publish again", err)
	case err != nil:
		return nil, newError(KindWrite, remoteMessage(err), err)
	}

	p.log.WithFields(logrus.Fields{
		"repo":    s.Repo,
		"path":    s.Path,
		"commit":  resp.CommitSHA,
		"created": plan.Create,
	}).Info("catalog published")

	return &Result{
		Repo:       s.Repo,
		Path:       s.Path,
		Created:    plan.Create,
		Missing:    plan.Missing,
		ContentSHA: resp.ContentSHA,
		CommitSHA:  resp.CommitSHA,
		HTMLURL:    resp.HTMLURL,
		Content:    plan.Content,
	}, nil
}

func remoteMessage(err error) string {
	var apiErr *github.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
