// Package stubserver serves the two endpoints of the dashboard data service
// from memory so the dashboard can run without the real backend.
package stubserver

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"dashboard/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MaxTopN bounds a single request.
const MaxTopN = 1000

// Server holds the catalog and the full ranking it serves from.
type Server struct {
	catalog  []model.ChartCatalogEntry
	ranking  []model.DataPoint
	logger   *zap.Logger
	validate *validator.Validate
}

type topUsersQuery struct {
	N int `validate:"min=0,max=1000"`
}

// New creates a server. The ranking is sorted by value, highest first.
func New(catalog []model.ChartCatalogEntry, users []model.DataPoint, logger *zap.Logger) *Server {
	ranking := model.CloneDataset(users)
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Value > ranking[j].Value })
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog:  append([]model.ChartCatalogEntry{}, catalog...),
		ranking:  ranking,
		logger:   logger,
		validate: validator.New(),
	}
}

// DefaultCatalog offers every kind with a dedicated encoding.
func DefaultCatalog() []model.ChartCatalogEntry {
	kinds := model.ChartKinds()
	out := make([]model.ChartCatalogEntry, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, model.ChartCatalogEntry{Type: k})
	}
	return out
}

// SampleUsers generates count users with strictly decreasing values.
func SampleUsers(count int) []model.DataPoint {
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan", "judy"}
	out := make([]model.DataPoint, 0, count)
	for i := 0; i < count; i++ {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s%d", name, i/len(names))
		}
		out = append(out, model.DataPoint{Name: name, Value: float64((count - i) * 10)})
	}
	return out
}

// Router builds the chi router serving /charts and /top-users.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/charts", s.handleCharts)
	r.Post("/top-users", s.handleTopUsers)
	return r
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleTopUsers(w http.ResponseWriter, r *http.Request) {
	var req model.TopUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f, ok := req.TopN.Float()
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("topN %q is not a number", req.TopN.String()))
		return
	}
	// Fractions truncate toward zero the way a slice bound does.
	n := 0
	switch {
	case f > math.MaxInt32:
		n = math.MaxInt32
	case f > 0:
		n = int(math.Trunc(f))
	}
	if err := s.validate.Struct(topUsersQuery{N: n}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if n > len(s.ranking) {
		n = len(s.ranking)
	}
	writeJSON(w, http.StatusOK, s.ranking[:n])
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
