package sftpclient

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"academy/internal/domain"
	"academy/internal/export"
	"academy/internal/logging"
)

// memServer serves one in-memory filesystem to any number of clients.
type memServer struct {
	handlers sftp.Handlers
}

func newMemServer() *memServer {
	return &memServer{handlers: sftp.InMemHandler()}
}

func (s *memServer) connect(t *testing.T) *Conn {
	t.Helper()
	c1, c2 := net.Pipe()
	srv := sftp.NewRequestServer(c1, s.handlers)
	go func() { _ = srv.Serve() }()

	cli, err := sftp.NewClientPipe(c2, c2)
	if err != nil {
		t.Fatalf("sftp client: %v", err)
	}
	return &Conn{SFTP: cli, ssh: srv}
}

func readFile(t *testing.T, cli *sftp.Client, p string) []byte {
	t.Helper()
	f, err := cli.Open(p)
	if err != nil {
		t.Fatalf("open %s: %v", p, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return b
}

func publication() domain.Publication {
	cat := domain.Catalog{
		Courses: []domain.Course{{ID: "c1", Title: "암호화폐 기초", Lessons: []domain.Lesson{{ID: "l1", Title: "OT"}}}},
	}
	return domain.Publication{
		Repo:        "acme/site",
		Path:        "data/catalog.json",
		CommitSHA:   "0123456789abcdef",
		PublishedAt: time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC),
		Courses:     1,
		Lessons:     1,
		Catalog:     cat,
	}
}

func TestDialValidation(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           Config
		errorContains string
	}{
		{"Missing credentials", Config{}, "sftp: missing"},
		{"Host key checking without known_hosts", Config{Host: "h", User: "u", Pass: "p"}, "known_hosts file required"},
		{"Unreadable known_hosts", Config{Host: "h", User: "u", Pass: "p", KnownHosts: "/nonexistent/known_hosts"}, "sftp: known_hosts"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Dial(context.Background(), tc.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.errorContains) {
				t.Errorf("expected error containing %q, got %q", tc.errorContains, err.Error())
			}
		})
	}
}

func TestDialCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Host: "192.0.2.1", Port: 22, User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	_, err := Dial(ctx, cfg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestUploadFiles(t *testing.T) {
	srv := newMemServer()
	conn := srv.connect(t)
	defer conn.Close()

	files := []File{
		{Name: "a.txt", Data: []byte("한글 내용")},
		{Name: "nested/b.txt", Data: []byte("b")},
	}
	paths, err := UploadFiles(context.Background(), conn.SFTP, "/inbound", files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if paths[0] != "/inbound/a.txt" || paths[1] != "/inbound/nested/b.txt" {
		t.Errorf("unexpected paths %v", paths)
	}
	if got := string(readFile(t, conn.SFTP, "/inbound/a.txt")); got != "한글 내용" {
		t.Errorf("content = %q", got)
	}
}

func TestMirrorDeliver(t *testing.T) {
	srv := newMemServer()
	m := NewMirror(Config{RemoteDir: "/drop", Compress: true}, logging.Discard())
	m.dial = func(context.Context, Config) (*Conn, error) { return srv.connect(t), nil }

	if err := m.Deliver(context.Background(), publication()); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	check := srv.connect(t)
	defer check.Close()

	latest := string(readFile(t, check.SFTP, "/drop/latest.json"))
	if !strings.Contains(latest, "20260405T060708Z-0123456") {
		t.Errorf("latest.json = %s", latest)
	}

	z := readFile(t, check.SFTP, "/drop/20260405T060708Z-0123456/catalog.json.br")
	raw, err := export.Decompress(z)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !strings.Contains(string(raw), "암호화폐 기초") {
		t.Errorf("snapshot does not carry the catalog: %s", raw)
	}

	manifest := string(readFile(t, check.SFTP, "/drop/20260405T060708Z-0123456/publication.json"))
	if !strings.Contains(manifest, `"commitSha": "0123456789abcdef"`) {
		t.Errorf("manifest = %s", manifest)
	}
}

// failingPut rejects uploads whose path ends in suffix.
type failingPut struct {
	sftp.FileWriter
	suffix string
}

func (f failingPut) Filewrite(r *sftp.Request) (io.WriterAt, error) {
	if strings.HasSuffix(r.Filepath, f.suffix) {
		return nil, errors.New("disk full")
	}
	return f.FileWriter.Filewrite(r)
}

func TestMirrorDeliverFailureLeavesLatestUntouched(t *testing.T) {
	srv := newMemServer()
	srv.handlers.FilePut = failingPut{FileWriter: srv.handlers.FilePut, suffix: "catalog.csv"}
	m := NewMirror(Config{RemoteDir: "/drop"}, logging.Discard())
	m.dial = func(context.Context, Config) (*Conn, error) { return srv.connect(t), nil }

	if err := m.Deliver(context.Background(), publication()); err == nil {
		t.Fatal("expected error, got nil")
	}

	check := srv.connect(t)
	defer check.Close()
	if _, err := check.SFTP.Stat("/drop/latest.json"); err == nil {
		t.Error("latest.json written for an incomplete snapshot")
	}
}

func TestDialCanceledClosesLateClient(t *testing.T) {
	addr, closed := sshServer(t)
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)

	release := make(chan struct{})
	orig := sshDial
	sshDial = func(network, a string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
		<-release
		return orig(network, a, cfg)
	}
	t.Cleanup(func() { sshDial = orig })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Dial(ctx, Config{Host: host, Port: port, User: "u", Pass: "p", InsecureIgnoreHostKey: true})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	// the handshake finishes after Dial gave up
	close(release)
	select {
	case <-closed:
	case <-time.After(10 * time.Second):
		t.Fatal("ssh connection left open after a canceled dial")
	}
}

// sshServer accepts one password-authenticated SSH connection and closes
// the returned channel once the client hangs up.
func sshServer(t *testing.T) (string, <-chan struct{}) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &ssh.ServerConfig{
		PasswordCallback: func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) { return nil, nil },
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	closed := make(chan struct{})
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		sc, chans, reqs, err := ssh.NewServerConn(nc, cfg)
		if err != nil {
			nc.Close()
			return
		}
		go ssh.DiscardRequests(reqs)
		go func() {
			for nch := range chans {
				_ = nch.Reject(ssh.Prohibited, "no channels")
			}
		}()
		_ = sc.Wait()
		close(closed)
	}()
	return ln.Addr().String(), closed
}

func TestSnapshotFilesWithoutCompression(t *testing.T) {
	files, latest, err := SnapshotFiles(publication(), false)
	if err != nil {
		t.Fatal(err)
	}
	if latest.Name != "latest.json" || !strings.Contains(string(latest.Data), "20260405T060708Z-0123456") {
		t.Errorf("latest = %s %s", latest.Name, latest.Data)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{
		"20260405T060708Z-0123456/publication.json",
		"20260405T060708Z-0123456/catalog.json",
		"20260405T060708Z-0123456/catalog.yaml",
		"20260405T060708Z-0123456/catalog.csv",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("files = %v, want %v", names, want)
	}
}
