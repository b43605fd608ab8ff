package cli

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"academy/internal/app"
	"academy/internal/config"
	"academy/internal/github"
	"academy/internal/notify"
	"academy/internal/publish"
	"academy/internal/sftpclient"
	"academy/internal/store"
	"academy/internal/tutor"
)

// Env is one wired session: the controller plus the tutor, built from
// config and torn down by Close.
type Env struct {
	Config *config.Config
	Log    logrus.FieldLogger
	Ctrl   *app.Controller
	Tutor  *tutor.Assistant

	closers []io.Closer
}

// Open wires every component from cfg. Optional sinks whose backends are
// not configured are left out.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Env, error) {
	env := &Env{Config: cfg, Log: log}

	kv := openKV(ctx, cfg.Store, log.WithField("component", "store"))
	if c, ok := kv.(io.Closer); ok {
		env.closers = append(env.closers, c)
	}

	sinks := openSinks(cfg, log)

	gh := github.New(cfg.GitHub.APIURL, cfg.GitHub.Timeout, log.WithField("component", "github"))

	env.Ctrl = app.New(ctx, app.Deps{
		Catalog:   store.NewCatalogStore(kv, log.WithField("component", "store")),
		Settings:  store.NewSettingsStore(kv),
		Publisher: publish.New(gh, log.WithField("component", "publish")),
		Sinks:     sinks,
		Session:   app.NewSession(cfg.Admin.ID, cfg.Admin.Password),
		Defaults: app.PublishDefaults{
			Branch:  cfg.GitHub.Branch,
			Message: cfg.GitHub.Message,
			Format:  publish.Format(cfg.GitHub.Format),
		},
		Log: log,
	})
	env.closers = append(env.closers, env.Ctrl)

	tlog := log.WithField("component", "tutor")
	env.Tutor = tutor.NewAssistant(tutor.NewClient(tutor.Config{
		APIKey:   cfg.Tutor.APIKey,
		BaseURL:  cfg.Tutor.BaseURL,
		Model:    cfg.Tutor.Model,
		Language: cfg.Tutor.Language,
		Timeout:  cfg.Tutor.Timeout,
	}, tlog), tlog)

	return env, nil
}

// openKV never fails: a store that cannot be opened degrades to the state
// file, then to memory, so browsing keeps working on the default catalog.
func openKV(ctx context.Context, cfg config.StoreConfig, log logrus.FieldLogger) store.KV {
	switch cfg.Driver {
	case "", "file":
	case "postgres":
		kv, err := store.OpenPostgresKV(ctx, cfg.DSN)
		if err == nil {
			return kv
		}
		log.WithError(err).Warn("postgres store unavailable, using state file")
	case "memory":
		return store.NewMemoryKV()
	default:
		log.Warnf("unknown store driver %q (want file, postgres or memory), using state file", cfg.Driver)
	}

	kv, err := store.NewFileKV(cfg.Path)
	if err != nil {
		log.WithError(err).Warn("state file unavailable, changes will not be kept")
		return store.NewMemoryKV()
	}
	return kv
}

// openSinks only builds the sinks; backends are dialled when a publication
// is delivered.
func openSinks(cfg *config.Config, log logrus.FieldLogger) []app.Sink {
	var sinks []app.Sink
	if cfg.SFTP.Host != "" {
		sinks = append(sinks, sftpclient.NewMirror(sftpclient.Config{
			Host:                  cfg.SFTP.Host,
			Port:                  cfg.SFTP.Port,
			User:                  cfg.SFTP.User,
			Pass:                  cfg.SFTP.Pass,
			RemoteDir:             cfg.SFTP.Dir,
			InsecureIgnoreHostKey: cfg.SFTP.InsecureIgnoreHostKey,
			KnownHosts:            cfg.SFTP.KnownHosts,
			Compress:              cfg.SFTP.Compress,
		}, log.WithField("component", "sftp")))
	}
	if cfg.Notify.URL != "" {
		sinks = append(sinks, notify.NewRabbitMQ(notify.Config{
			URL:        cfg.Notify.URL,
			Exchange:   cfg.Notify.Exchange,
			RoutingKey: cfg.Notify.RoutingKey,
			QueueName:  cfg.Notify.Queue,
		}, log.WithField("component", "notify")))
	}
	return sinks
}

// Close releases the controller (and with it the sinks) and the store.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
