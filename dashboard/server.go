// Web dashboard showing the analyses of a block
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/metachris/mev-block-analyzer/analyzer"
	"github.com/metachris/mev-block-analyzer/etherscan"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Analyzer interface {
	Analyze(ctx context.Context, blockNumber int64) (*analyzer.Analysis, error)
}

type Server struct {
	addr         string
	analyzer     Analyzer
	defaultBlock int64
	templates    *template.Template
	server       *http.Server
}

func New(addr string, a Analyzer, defaultBlock int64) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}

	return &Server{
		addr:         addr,
		analyzer:     a,
		defaultBlock: defaultBlock,
		templates:    tmpl,
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/analysis", s.handleAnalysisJSON)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // receipt fetches are paced
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Dashboard listening on %s", s.addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// blockNumberFromRequest returns the block query param, or the default block if it's not set
func (s *Server) blockNumberFromRequest(r *http.Request) (int64, error) {
	v := r.URL.Query().Get("block")
	if v == "" {
		return s.defaultBlock, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.Errorf("invalid block number: %q", v)
	}
	return n, nil
}

func errorStatus(err error) int {
	if errors.Is(err, etherscan.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

type indexPage struct {
	BlockNumber int64
	Analysis    *AnalysisView
	Error       string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page := indexPage{BlockNumber: s.defaultBlock}
	status := http.StatusOK

	blockNumber, err := s.blockNumberFromRequest(r)
	if err != nil {
		page.Error = err.Error()
		status = http.StatusBadRequest
	} else if r.URL.Query().Get("block") != "" {
		page.BlockNumber = blockNumber
		analysis, err := s.analyzer.Analyze(r.Context(), blockNumber)
		if err != nil {
			log.Printf("Analysis of block %d failed: %v", blockNumber, err)
			page.Error = err.Error()
			status = errorStatus(err)
		} else {
			view := NewAnalysisView(analysis)
			page.Analysis = &view
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", page); err != nil {
		log.Printf("Failed to render template: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *Server) handleAnalysisJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	blockNumber, err := s.blockNumberFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), blockNumber)
	if err != nil {
		log.Printf("Analysis of block %d failed: %v", blockNumber, err)
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, NewAnalysisView(analysis))
}
