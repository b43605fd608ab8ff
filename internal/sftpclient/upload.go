package sftpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"academy/internal/concurrency"
)

var sshDial = ssh.Dial

type Config struct {
	Host                  string
	Port                  int
	User                  string
	Pass                  string
	RemoteDir             string
	InsecureIgnoreHostKey bool
	KnownHosts            string // known_hosts file, used unless InsecureIgnoreHostKey
	Compress              bool
}

// File is one payload to upload, named relative to the remote dir.
type File struct {
	Name string
	Data []byte
}

// Conn is an open SFTP session over its SSH connection.
type Conn struct {
	SFTP *sftp.Client
	ssh  io.Closer
}

func (c *Conn) Close() error {
	err := c.SFTP.Close()
	if c.ssh != nil {
		if cerr := c.ssh.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("sftp: missing ACADEMY_SFTP_HOST / ACADEMY_SFTP_USER / ACADEMY_SFTP_PASS")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}

	cb := ssh.InsecureIgnoreHostKey()
	if !cfg.InsecureIgnoreHostKey {
		if cfg.KnownHosts == "" {
			return nil, fmt.Errorf("sftp: known_hosts file required when host key checking is on")
		}
		khcb, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("sftp: known_hosts: %w", err)
		}
		cb = khcb
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         20 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	dial := sshDial
	ch := make(chan dialRes, 1)
	go func() {
		c, err := dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		// the handshake may still succeed; nobody else will close it
		go func() {
			if r := <-ch; r.client != nil {
				r.client.Close()
			}
		}()
		return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("sftp: dial error: %w", r.err)
		}
		sshClient = r.client
	}

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("sftp: new client: %w", err)
	}
	return &Conn{SFTP: sftpCli, ssh: sshClient}, nil
}

// UploadFiles writes every file under dir in parallel over one session and
// returns the remote paths in input order.
func UploadFiles(ctx context.Context, cli *sftp.Client, dir string, files []File) ([]string, error) {
	if dir == "" {
		dir = "/"
	}
	if err := cli.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("sftp: mkdir %s: %w", dir, err)
	}

	paths, errs := concurrency.ProcessParallel(ctx, files, concurrency.ParallelOptions{MaxWorkers: 4},
		func(ctx context.Context, _ int, f File) (string, error) {
			remotePath := path.Join(dir, f.Name)
			if err := put(cli, remotePath, f.Data); err != nil {
				return "", err
			}
			return remotePath, nil
		})
	if len(errs) > 0 {
		return paths, errs[0]
	}
	if err := ctx.Err(); err != nil {
		return paths, err
	}
	return paths, nil
}

func put(cli *sftp.Client, remotePath string, data []byte) error {
	if d := path.Dir(remotePath); d != "." && d != "/" {
		if err := cli.MkdirAll(d); err != nil {
			return fmt.Errorf("sftp: mkdir %s: %w", d, err)
		}
	}
	dst, err := cli.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp: create %s: %w", remotePath, err)
	}
	if _, err := io.Copy(dst, bytes.NewReader(data)); err != nil {
		dst.Close()
		return fmt.Errorf("sftp: upload %s: %w", remotePath, err)
	}
	return dst.Close()
}
