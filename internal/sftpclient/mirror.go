package sftpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"

	"academy/internal/domain"
	"academy/internal/export"
)

// Mirror uploads a snapshot of every published catalog to an SFTP drop
// directory, one folder per publication plus a latest.json pointer.
type Mirror struct {
	cfg  Config
	log  logrus.FieldLogger
	dial func(ctx context.Context, cfg Config) (*Conn, error)
}

func NewMirror(cfg Config, log logrus.FieldLogger) *Mirror {
	return &Mirror{cfg: cfg, log: log, dial: Dial}
}

func (m *Mirror) Name() string { return "sftp" }

func (m *Mirror) Close() error { return nil }

func (m *Mirror) Deliver(ctx context.Context, pub domain.Publication) error {
	files, latest, err := SnapshotFiles(pub, m.cfg.Compress)
	if err != nil {
		return err
	}

	conn, err := m.dial(ctx, m.cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// latest.json must never name an incomplete folder
	paths, err := UploadFiles(ctx, conn.SFTP, m.cfg.RemoteDir, files)
	if err != nil {
		return err
	}
	if _, err := UploadFiles(ctx, conn.SFTP, m.cfg.RemoteDir, []File{latest}); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"host": m.cfg.Host, "files": len(paths) + 1}).Info("snapshot mirrored")
	return nil
}

// SnapshotFiles renders the publication as the files of one mirror folder
// plus the latest.json pointer to that folder.
func SnapshotFiles(pub domain.Publication, compress bool) (files []File, latest File, err error) {
	dir := folderName(pub)

	manifest, err := json.MarshalIndent(pub, "", "  ")
	if err != nil {
		return nil, File{}, fmt.Errorf("sftp: manifest: %w", err)
	}

	files = []File{{Name: path.Join(dir, "publication.json"), Data: manifest}}
	for _, f := range []export.Format{export.FormatJSON, export.FormatYAML, export.FormatCSV} {
		b, err := export.Render(pub.Catalog, f)
		if err != nil {
			return nil, File{}, fmt.Errorf("sftp: render %s: %w", f, err)
		}
		name := path.Join(dir, "catalog"+f.Ext())
		if compress {
			if b, err = export.Compress(b); err != nil {
				return nil, File{}, fmt.Errorf("sftp: compress %s: %w", name, err)
			}
			name += ".br"
		}
		files = append(files, File{Name: name, Data: b})
	}

	pointer, err := json.Marshal(map[string]string{"folder": dir, "commit": pub.CommitSHA})
	if err != nil {
		return nil, File{}, err
	}
	return files, File{Name: "latest.json", Data: pointer}, nil
}

func folderName(pub domain.Publication) string {
	name := pub.PublishedAt.UTC().Format("20060102T150405Z")
	if sha := pub.CommitSHA; sha != "" {
		if len(sha) > 7 {
			sha = sha[:7]
		}
		name += "-" + sha
	}
	return name
}
