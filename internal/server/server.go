// # internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"phpnav/internal/core/errors"
	"phpnav/internal/importer"
	"phpnav/internal/resolver"
)

// Server exposes the resolver over HTTP so editor integrations can stay thin:
// they send the hovered/selected text and get back a declaration location plus
// an optional use-statement insertion.
type Server struct {
	addr     string
	resolver *resolver.Resolver
	server   *http.Server
}

type lookupResult struct {
	RequestID string              `json:"requestId"`
	FQN       string              `json:"fqn"`
	Kind      string              `json:"kind"`
	Path      string              `json:"path"`
	Offset    int                 `json:"offset"`
	Insertion *importer.Insertion `json:"insertion,omitempty"`
}

type refreshResult struct {
	RequestID    string `json:"requestId"`
	Declarations int    `json:"declarations"`
}

type errorResult struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

type healthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

func New(addr string, res *resolver.Resolver) *Server {
	return &Server{addr: addr, resolver: res}
}

func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	slog.Info("lookup server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("lookup server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler builds the mux without binding a listener. Used by tests.
func (s *Server) Handler() (http.Handler, error) {
	spec, err := loadAPISpec()
	if err != nil {
		return nil, err
	}
	specJSON, err := spec.MarshalJSON()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/lookup", s.handleLookup)
	mux.HandleFunc("/refresh", s.handleRefresh)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(specJSON)
	})
	return mux, nil
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResult{RequestID: requestID, Error: "query parameter name is required"})
		return
	}

	decl, err := s.resolver.ResolveSelection(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsCode(err, errors.CodeNotFound) {
			status = http.StatusNotFound
		}
		slog.Debug("lookup miss", "request_id", requestID, "name", name)
		writeJSON(w, status, errorResult{RequestID: requestID, Error: err.Error()})
		return
	}

	result := lookupResult{
		RequestID: requestID,
		FQN:       decl.FQN,
		Kind:      string(decl.Kind),
		Path:      decl.SourcePath,
		Offset:    decl.Offset,
	}

	if target := r.URL.Query().Get("import"); target != "" {
		path, ok := s.underRoot(target)
		if !ok {
			slog.Warn("import target outside resolver root", "request_id", requestID, "path", target)
		} else if content, err := os.ReadFile(path); err != nil {
			slog.Warn("cannot read import target", "request_id", requestID, "path", path, "error", err)
		} else {
			ins := importer.UseStatement(content, decl.FQN)
			result.Insertion = &ins
		}
	}

	slog.Debug("lookup hit", "request_id", requestID, "name", name, "fqn", decl.FQN)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResult{RequestID: requestID, Error: "refresh requires POST"})
		return
	}

	if err := s.resolver.Rebuild(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResult{RequestID: requestID, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, refreshResult{
		RequestID:    requestID,
		Declarations: s.resolver.Snapshot().Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	ix := s.resolver.Snapshot()
	if ix == nil {
		status.Status = "degraded"
		status.Components["index"] = "not built"
	} else {
		status.Components["index"] = "ok"
		status.Components["declarations"] = strconv.Itoa(ix.Len())
	}
	status.Components["root"] = s.resolver.Root()

	code := http.StatusOK
	if status.Status != "up" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// underRoot resolves target against the resolver root and rejects paths that
// escape it. The daemon only touches files inside the tree it indexes.
func (s *Server) underRoot(target string) (string, bool) {
	root := s.resolver.Root()
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}
