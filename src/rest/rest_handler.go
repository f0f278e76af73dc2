package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stream-observer/src/config"
	"stream-observer/src/grpc_control"
	"stream-observer/src/logger"

	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// -----------------------------------------------------------------------------
// APIHandler exposes the gRPC control service over plain HTTP/JSON
// -----------------------------------------------------------------------------

// APIHandler translates REST calls into control service RPCs. It talks to the
// gRPC endpoint like any other client, so both surfaces always behave the same.
type APIHandler struct {
	Name   string
	config *config.Config
	logger *logger.Logger

	conn   *grpc.ClientConn
	client grpc_control.ControlServiceClient
}

// -----------------------------------------------------------------------------

// NewAPIHandler creates the handler and its client connection to the local
// gRPC control service
func NewAPIHandler(config *config.Config, logger *logger.Logger) (*APIHandler, error) {
	target := fmt.Sprintf("%s:%d", config.GRPC_Host, config.GRPC_Port)

	conn, err := grpc.NewClient(
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(grpc_control.CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create control client for %s: %w", target, err)
	}

	return &APIHandler{
		Name:   "RESTAPIHandler",
		config: config,
		logger: logger,
		conn:   conn,
		client: grpc_control.NewControlServiceClient(conn),
	}, nil
}

// -----------------------------------------------------------------------------

// RegisterRoutes attaches every REST route to the router
func (h *APIHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rest/health", h.handleHealth).Methods("GET")

	router.HandleFunc("/rest/watchers", h.handleListWatchers).Methods("GET")
	router.HandleFunc("/rest/watchers", h.handleAddWatch).Methods("POST")
	router.HandleFunc("/rest/watchers/{name}", h.handleWatcherStatus).Methods("GET")
	router.HandleFunc("/rest/watchers/{name}", h.handleRemoveWatch).Methods("DELETE")
	router.HandleFunc("/rest/watchers/{name}/start", h.handleStartWatch).Methods("POST")
	router.HandleFunc("/rest/watchers/{name}/stop", h.handleStopWatch).Methods("POST")
	router.HandleFunc("/rest/watchers/{name}/streams", h.handleAddStreams).Methods("POST")
	router.HandleFunc("/rest/watchers/{name}/streams", h.handleRemoveStreams).Methods("DELETE")
	router.HandleFunc("/rest/watchers/{name}/refresh", h.handleRefreshWatch).Methods("POST")
	router.HandleFunc("/rest/refresh", h.handleRefreshAll).Methods("POST")

	router.HandleFunc("/rest/views", h.handleListViews).Methods("GET")
	router.HandleFunc("/rest/views/{network}/{id}", h.handleGetView).Methods("GET")
}

// -----------------------------------------------------------------------------

// Close releases the client connection
func (h *APIHandler) Close() error {
	if h.conn != nil {
		return h.conn.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	resp, err := h.client.HealthCheck(ctx, &grpc_control.HealthCheckRequest{ServiceName: h.config.Name})
	if err != nil {
		h.writeRPCError(w, "HealthCheck", err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleListWatchers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	// ?all=true includes stopped watches
	includeStopped := r.URL.Query().Get("all") == "true"

	resp, err := h.client.ListWatchers(ctx, &grpc_control.ListWatchersRequest{IncludeStopped: includeStopped})
	if err != nil {
		h.writeRPCError(w, "ListWatchers", err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req grpc_control.AddWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	resp, err := h.client.AddWatch(ctx, &req)
	if err != nil {
		h.writeRPCError(w, "AddWatch", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleWatcherStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	name := mux.Vars(r)["name"]
	resp, err := h.client.GetWatcherStatus(ctx, &grpc_control.GetWatcherStatusRequest{WatchName: name})
	if err != nil {
		h.writeRPCError(w, "GetWatcherStatus", err)
		return
	}

	if resp.StatusMessage == "Not found" {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("watch '%s' not found", name))
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleRemoveWatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	name := mux.Vars(r)["name"]
	resp, err := h.client.RemoveWatch(ctx, &grpc_control.RemoveWatchRequest{WatchName: name})
	if err != nil {
		h.writeRPCError(w, "RemoveWatch", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleStartWatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	name := mux.Vars(r)["name"]
	resp, err := h.client.StartWatch(ctx, &grpc_control.StartWatchRequest{WatchName: name})
	if err != nil {
		h.writeRPCError(w, "StartWatch", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleStopWatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	name := mux.Vars(r)["name"]
	resp, err := h.client.StopWatch(ctx, &grpc_control.StopWatchRequest{WatchName: name})
	if err != nil {
		h.writeRPCError(w, "StopWatch", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleAddStreams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req grpc_control.AddStreamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	req.WatchName = mux.Vars(r)["name"] // the path owns the watch identity

	resp, err := h.client.AddStreams(ctx, &req)
	if err != nil {
		h.writeRPCError(w, "AddStreams", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleRemoveStreams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req grpc_control.RemoveStreamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	req.WatchName = mux.Vars(r)["name"]

	resp, err := h.client.RemoveStreams(ctx, &req)
	if err != nil {
		h.writeRPCError(w, "RemoveStreams", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleRefreshWatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	name := mux.Vars(r)["name"]
	resp, err := h.client.RefreshStreams(ctx, &grpc_control.RefreshStreamsRequest{WatchName: name})
	if err != nil {
		h.writeRPCError(w, "RefreshStreams", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleRefreshAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	resp, err := h.client.RefreshStreams(ctx, &grpc_control.RefreshStreamsRequest{})
	if err != nil {
		h.writeRPCError(w, "RefreshStreams", err)
		return
	}

	h.writeJSON(w, statusForControl(resp), resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleListViews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	// ?watch=<name> filters to one watch
	watchName := r.URL.Query().Get("watch")

	resp, err := h.client.ListViews(ctx, &grpc_control.ListViewsRequest{WatchName: watchName})
	if err != nil {
		h.writeRPCError(w, "ListViews", err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (h *APIHandler) handleGetView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	vars := mux.Vars(r)
	resp, err := h.client.GetView(ctx, &grpc_control.GetViewRequest{
		Network:  vars["network"],
		StreamID: vars["id"],
	})
	if err != nil {
		h.writeRPCError(w, "GetView", err)
		return
	}

	if !resp.Found {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("no view for stream %s/%s", vars["network"], vars["id"]))
		return
	}

	h.writeJSON(w, http.StatusOK, resp.View)
}

// -----------------------------------------------------------------------------
// Response Helpers
// -----------------------------------------------------------------------------

// requestContext bounds each proxied RPC with the configured request timeout
func (h *APIHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 10*time.Second)
}

// -----------------------------------------------------------------------------

// statusForControl maps control service error codes onto HTTP status codes
func statusForControl(resp *grpc_control.ControlResponse) int {
	if resp.Success {
		return http.StatusOK
	}

	switch resp.ErrorCode {
	case "INVALID_REQUEST":
		return http.StatusBadRequest
	case "WATCH_NOT_FOUND":
		return http.StatusNotFound
	case "WATCH_ALREADY_RUNNING", "WATCH_ALREADY_STOPPED":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("%s : failed to encode response: %v", h.Name, err)
	}
}

// -----------------------------------------------------------------------------

func (h *APIHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// -----------------------------------------------------------------------------

func (h *APIHandler) writeRPCError(w http.ResponseWriter, method string, err error) {
	h.logger.Error("%s : %s RPC failed: %v", h.Name, method, err)
	h.writeError(w, http.StatusBadGateway, fmt.Sprintf("control service unavailable: %v", err))
}
