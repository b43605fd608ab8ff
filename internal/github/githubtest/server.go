// Package githubtest runs an in-memory stand-in for the contents API.
package githubtest

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"academy/internal/codec"
)

type file struct {
	content string
	sha     string
}

// Put is one accepted or rejected write, as received.
type Put struct {
	Repo    string
	Path    string
	Message string
	Content string // decoded
	SHA     string
	Branch  string
}

type Server struct {
	*httptest.Server

	// Token, when set, must match the bearer token of every request.
	Token string

	mu    sync.Mutex
	files map[string]file
	gets  int
	puts  []Put
}

func NewServer() *Server {
	s := &Server{files: map[string]file{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetFile writes a file directly, as another client would, and returns its new sha.
func (s *Server) SetFile(repo, path, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sha := blobSHA(content)
	s.files[repo+"/"+path] = file{content: content, sha: sha}
	return sha
}

func (s *Server) File(repo, path string) (content, sha string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[repo+"/"+path]
	return f.content, f.sha, ok
}

func (s *Server) Requests() (gets int, puts []Put) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, append([]Put(nil), s.puts...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return
	}

	// /repos/{owner}/{name}/contents/{path...}
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/repos/"), "/", 4)
	if len(parts) < 4 || parts[2] != "contents" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	repo, path := parts[0]+"/"+parts[1], parts[3]

	switch r.Method {
	case http.MethodGet:
		s.get(w, repo, path)
	case http.MethodPut:
		s.put(w, r, repo, path)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) get(w http.ResponseWriter, repo, path string) {
	s.mu.Lock()
	s.gets++
	f, ok := s.files[repo+"/"+path]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":     "file",
		"encoding": "base64",
		"size":     len(f.content),
		"sha":      f.sha,
		"content":  wrap(codec.Encode(f.content), 60),
	})
}

func (s *Server) put(w http.ResponseWriter, r *http.Request, repo, path string) {
	var body struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	content, err := codec.Decode(body.Content)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "content is not valid Base64"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, Put{Repo: repo, Path: path, Message: body.Message, Content: content, SHA: body.SHA, Branch: body.Branch})

	key := repo + "/" + path
	cur, exists := s.files[key]
	switch {
	case exists && body.SHA == "":
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request.\n\n\"sha\" wasn't supplied."})
		return
	case exists && body.SHA != cur.sha:
		writeJSON(w, http.StatusConflict, map[string]string{"message": fmt.Sprintf("%s does not match %s", path, body.SHA)})
		return
	case !exists && body.SHA != "":
		writeJSON(w, http.StatusConflict, map[string]string{"message": fmt.Sprintf("%s does not match %s", path, body.SHA)})
		return
	}

	sha := blobSHA(content)
	s.files[key] = file{content: content, sha: sha}

	status := http.StatusOK
	if !exists {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"content": map[string]any{"sha": sha, "path": path, "html_url": "https://github.example/" + repo + "/blob/main/" + path},
		"commit":  map[string]any{"sha": blobSHA("commit:" + sha)},
	})
}

func blobSHA(content string) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

func wrap(s string, n int) string {
	var sb strings.Builder
	for i := 0; i < len(s); i += n {
		end := i + n
		if end > len(s) {
			end = len(s)
		}
		sb.WriteString(s[i:end])
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
