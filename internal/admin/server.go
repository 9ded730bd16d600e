// Embedded HTTP status server for a running rover
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"roverd/internal/rover"
)

// Server serves the live rover status page and JSON endpoints.
type Server struct {
	Rover *rover.Rover
	tpl   *template.Template
}

//go:embed templates/index.html
var content embed.FS

// NewServer creates a status server for the given rover.
func NewServer(r *rover.Rover) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Rover: r, tpl: tpl}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/study", s.handleStudy)
	return mux
}

// Start serves until the context is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Health   rover.Health
		Snapshot any
	}{
		Health:   s.Rover.Health(),
		Snapshot: s.Rover.Snapshot(),
	}
	s.tpl.Execute(w, data)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Rover.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Rover.Health())
}

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	s.Rover.RequestStudy()
	w.WriteHeader(http.StatusAccepted)
}
