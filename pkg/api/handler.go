package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/supptracker/compound-registry/pkg/kit"
)

// NewRouter returns an http.Handler with all registry API routes.
func NewRouter(svc *Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{
		search:      wrap(logger, "search", searchEndpoint(svc)),
		resolve:     wrap(logger, "resolve", resolveEndpoint(svc)),
		interaction: wrap(logger, "interaction", interactionEndpoint(svc)),
		stack:       wrap(logger, "stack", stackEndpoint(svc)),
		listSources: wrap(logger, "sources", listSourcesEndpoint(svc)),
		svc:         svc,
	}

	mux.HandleFunc("GET /v1/search", instrument("/v1/search", h.handleSearch))
	mux.HandleFunc("GET /v1/compounds/{id}", instrument("/v1/compounds/{id}", h.handleResolve))
	mux.HandleFunc("GET /v1/interactions/{a}/{b}", instrument("/v1/interactions/{a}/{b}", h.handleInteraction))
	mux.HandleFunc("GET /v1/stack/check", methodNotAllowed) // prevent GET on stack check
	mux.HandleFunc("POST /v1/stack/check", instrument("/v1/stack/check", h.handleStack))
	mux.HandleFunc("GET /v1/sources", instrument("/v1/sources", h.handleListSources))
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.HandleFunc("GET /v1/ready", h.handleReady)
	mux.Handle("GET /metrics", MetricsHandler())

	return cors(requestID(logRequests(mux, logger)))
}

type handler struct {
	search      kit.Endpoint
	resolve     kit.Endpoint
	interaction kit.Endpoint
	stack       kit.Endpoint
	listSources kit.Endpoint
	svc         *Service
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	resp, err := h.search(r.Context(), &searchReq{Query: q, Limit: limit})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- resolve / fetch compound ---

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing compound identifier")
		return
	}
	resp, err := h.resolve(r.Context(), &resolveReq{Identifier: id})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- pairwise interaction ---

func (h *handler) handleInteraction(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "missing compound identifiers")
		return
	}
	resp, err := h.interaction(r.Context(), &interactionReq{A: a, B: b})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- stack check ---

type httpStackRequest struct {
	Items []string `json:"items"`
}

func (h *handler) handleStack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req httpStackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.stack(r.Context(), &stackReq{Items: req.Items})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- sources ---

func (h *handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listSources(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status       string `json:"status"`
	Compounds    int    `json:"compounds"`
	Interactions int    `json:"interactions"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	set, _ := h.svc.interactions()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Compounds:    h.svc.Registry().Count(),
		Interactions: set.Len(),
	})
}

// handleReady reports 503 until a non-empty catalog is installed, so
// orchestrators hold traffic during a slow cold load.
func (h *handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.svc.Registry().Count() == 0 {
		writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeEndpointError maps endpoint errors onto HTTP status codes.
func writeEndpointError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID assigns every request an id, honoring a caller-provided
// X-Request-ID so ids correlate across services.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(kit.WithRequestID(r.Context(), id)))
	})
}

// logRequests emits one structured line per request.
func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", kit.GetRequestID(r.Context()),
		)
	})
}
