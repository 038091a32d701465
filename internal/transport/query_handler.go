package transport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	"github.com/goodnatureofminers/opreturn-indexer/pkg/safe"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// MaxListLimit caps the page size of /v1/outputs.
const MaxListLimit = 1000

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errBadRequest = errors.New("bad request")

// QueryHandler serves read-only routes over the stored outputs.
type QueryHandler struct {
	reader    repository.OutputReader
	analytics Analytics
	health    healthpb.HealthServer
	logger    *zap.Logger
}

// NewQueryHandler returns a QueryHandler. analytics may be nil, in which case
// the analytics route answers 503.
func NewQueryHandler(reader repository.OutputReader, analytics Analytics, health healthpb.HealthServer, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		reader:    reader,
		analytics: analytics,
		health:    health,
		logger:    logger.Named("query_handler"),
	}
}

// Register attaches the routes to a gateway mux.
func (h *QueryHandler) Register(mux *gwruntime.ServeMux) error {
	routes := []struct {
		method  string
		pattern string
		handler gwruntime.HandlerFunc
	}{
		{http.MethodGet, "/v1/health", h.getHealth},
		{http.MethodGet, "/v1/outputs", h.listOutputs},
		{http.MethodGet, "/v1/outputs/{txid}/{vout}", h.getOutput},
		{http.MethodGet, "/v1/stats", h.getStats},
		{http.MethodGet, "/v1/analytics/payload-types", h.getPayloadTypes},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return fmt.Errorf("register %s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}

func (h *QueryHandler) getHealth(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := h.health.Check(r.Context(), &healthpb.HealthCheckRequest{})
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	status := http.StatusOK
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, map[string]string{"status": resp.GetStatus().String()})
}

func (h *QueryHandler) listOutputs(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	filter, err := parseOutputFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	outputs, err := h.reader.ListOutputs(r.Context(), filter)
	if err != nil {
		h.internalError(r.Context(), w, "list outputs", err)
		return
	}
	resp := listView{
		Outputs: make([]outputView, 0, len(outputs)),
		Limit:   filter.EffectiveLimit(),
		Offset:  filter.Offset,
	}
	for _, out := range outputs {
		resp.Outputs = append(resp.Outputs, newOutputView(out, false))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *QueryHandler) getOutput(w http.ResponseWriter, r *http.Request, params map[string]string) {
	txid := params["txid"]
	vout, err := strconv.ParseUint(params["vout"], 10, 32)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: vout %q", errBadRequest, params["vout"]))
		return
	}
	out, err := h.reader.Output(r.Context(), txid, uint32(vout))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		h.internalError(r.Context(), w, "get output", err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOutputView(out, true))
}

func (h *QueryHandler) getStats(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	stats, err := h.reader.Stats(r.Context())
	if err != nil {
		h.internalError(r.Context(), w, "stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, newStatsView(stats))
}

func (h *QueryHandler) getPayloadTypes(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if h.analytics == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("analytics mirror not configured"))
		return
	}
	q := r.URL.Query()
	from, err := parseUint(q.Get("from_height"), 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseUint(q.Get("to_height"), math.MaxUint64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if to < from {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: to_height below from_height", errBadRequest))
		return
	}
	stats, err := h.analytics.PayloadTypeStats(r.Context(), from, to)
	if err != nil {
		h.internalError(r.Context(), w, "payload type stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"payload_types": newTypeStatViews(stats)})
}

func parseOutputFilter(r *http.Request) (repository.OutputFilter, error) {
	q := r.URL.Query()
	var (
		filter repository.OutputFilter
		err    error
	)
	if filter.FromHeight, err = parseHeight(q.Get("from_height")); err != nil {
		return filter, err
	}
	if filter.ToHeight, err = parseHeight(q.Get("to_height")); err != nil {
		return filter, err
	}
	if filter.ToHeight > 0 && filter.ToHeight < filter.FromHeight {
		return filter, fmt.Errorf("%w: to_height below from_height", errBadRequest)
	}
	if v := q.Get("payload_type"); v != "" {
		pt := model.PayloadType(v)
		if !pt.Valid() {
			return filter, fmt.Errorf("%w: payload_type %q", errBadRequest, v)
		}
		filter.PayloadType = pt
	}
	limit, err := parseUint(q.Get("limit"), 0)
	if err != nil {
		return filter, err
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	filter.Limit = int(limit)
	offset, err := parseUint(q.Get("offset"), 0)
	if err != nil {
		return filter, err
	}
	if offset > math.MaxInt32 {
		return filter, fmt.Errorf("%w: offset too large", errBadRequest)
	}
	filter.Offset = int(offset)
	return filter, nil
}

func parseUint(raw string, fallback uint64) (uint64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", errBadRequest, raw)
	}
	return v, nil
}

// parseHeight bounds heights to what every store can index.
func parseHeight(raw string) (uint64, error) {
	v, err := parseUint(raw, 0)
	if err != nil {
		return 0, err
	}
	if _, err := safe.Int64(v); err != nil {
		return 0, fmt.Errorf("%w: height %q: %w", errBadRequest, raw, err)
	}
	return v, nil
}

func (h *QueryHandler) internalError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if ctx.Err() == nil {
		h.logger.Error("query failed", zap.String("op", op), zap.Error(err))
	}
	h.writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func (h *QueryHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorView{Error: err.Error()})
}

func (h *QueryHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}
