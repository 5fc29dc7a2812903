package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	revenuesharingengine "tipstream/contexts/finance-core/revenue-sharing-engine"
	revenuedomainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	revenuehttp "tipstream/contexts/finance-core/revenue-sharing-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "tipstream/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	revenue revenuesharingengine.Module
}

func New(
	revenue revenuesharingengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		revenue: revenue,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/schemes", s.handleCreateScheme)
	s.mux.HandleFunc("GET /v1/schemes/stats", s.handleSchemeStats)
	s.mux.HandleFunc("GET /v1/schemes/{scheme_id}", s.handleGetScheme)
	s.mux.HandleFunc("PUT /v1/schemes/{scheme_id}", s.handleUpdateScheme)

	s.mux.HandleFunc("POST /v1/rooms", s.handleCreateRoom)
	s.mux.HandleFunc("GET /v1/rooms/{room_id}", s.handleGetRoom)
	s.mux.HandleFunc("PATCH /v1/rooms/{room_id}/scheme", s.handleUpdateRoomScheme)
	s.mux.HandleFunc("PATCH /v1/rooms/{room_id}/active", s.handleSetRoomActive)
	s.mux.HandleFunc("GET /v1/streamers/{streamer_id}/rooms", s.handleStreamerRooms)

	s.mux.HandleFunc("POST /v1/rooms/{room_id}/tips", s.handleTip)
	s.mux.HandleFunc("GET /v1/rooms/{room_id}/tips", s.handleRoomTips)
	s.mux.HandleFunc("GET /v1/tips/recent", s.handleRecentTips)

	s.mux.HandleFunc("GET /v1/users/{user_id}/stats", s.handleUserStats)
	s.mux.HandleFunc("GET /v1/stats", s.handleLedgerStats)

	s.mux.HandleFunc("POST /v1/treasury/withdrawals", s.handleWithdraw)
	s.mux.HandleFunc("POST /v1/treasury/deposits", s.handleDeposit)
	s.mux.HandleFunc("GET /v1/treasury/balance", s.handleVaultBalance)
}

func (s *Server) handleCreateScheme(w http.ResponseWriter, r *http.Request) {
	var req revenuehttp.CreateSchemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.CreateSchemeHandler(r.Context(), req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateScheme(w http.ResponseWriter, r *http.Request) {
	schemeID, ok := parseID(w, r.PathValue("scheme_id"), "scheme_id")
	if !ok {
		return
	}

	var req revenuehttp.UpdateSchemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.UpdateSchemeHandler(r.Context(), schemeID, req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetScheme(w http.ResponseWriter, r *http.Request) {
	schemeID, ok := parseID(w, r.PathValue("scheme_id"), "scheme_id")
	if !ok {
		return
	}

	resp, err := s.revenue.Handler.GetSchemeHandler(r.Context(), schemeID)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchemeStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.revenue.Handler.SchemeStatsHandler(r.Context())
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req revenuehttp.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.CreateRoomHandler(r.Context(), caller, req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r.PathValue("room_id"), "room_id")
	if !ok {
		return
	}

	resp, err := s.revenue.Handler.GetRoomHandler(r.Context(), roomID)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRoomScheme(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := parseID(w, r.PathValue("room_id"), "room_id")
	if !ok {
		return
	}

	var req revenuehttp.UpdateRoomSchemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.UpdateRoomSchemeHandler(r.Context(), caller, roomID, req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetRoomActive(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := parseID(w, r.PathValue("room_id"), "room_id")
	if !ok {
		return
	}

	var req revenuehttp.SetRoomActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.SetRoomActiveHandler(r.Context(), caller, roomID, req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStreamerRooms(w http.ResponseWriter, r *http.Request) {
	streamer := strings.TrimSpace(r.PathValue("streamer_id"))
	if streamer == "" {
		writeRevenueError(w, http.StatusBadRequest, "invalid_streamer", "streamer_id is required")
		return
	}

	resp, err := s.revenue.Handler.StreamerRoomsHandler(r.Context(), streamer)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTip(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	roomID, ok := parseID(w, r.PathValue("room_id"), "room_id")
	if !ok {
		return
	}

	var req revenuehttp.TipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.TipHandler(r.Context(), caller, roomID, req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRoomTips(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r.PathValue("room_id"), "room_id")
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	resp, err := s.revenue.Handler.RoomTipsHandler(r.Context(), roomID, limit)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecentTips(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	resp, err := s.revenue.Handler.RecentTipsHandler(r.Context(), limit)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.PathValue("user_id"))
	if user == "" {
		writeRevenueError(w, http.StatusBadRequest, "invalid_user", "user_id is required")
		return
	}

	resp, err := s.revenue.Handler.UserStatsHandler(r.Context(), user)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedgerStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.revenue.Handler.LedgerStatsHandler(r.Context())
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req revenuehttp.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.WithdrawHandler(r.Context(), caller, req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req revenuehttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.revenue.Handler.DepositHandler(r.Context(), caller, req)
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVaultBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.revenue.Handler.VaultBalanceHandler(r.Context())
	if err != nil {
		writeRevenueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeRevenueError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func parseID(w http.ResponseWriter, raw string, field string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_"+field, field+" must be a non-negative integer")
		return 0, false
	}
	return id, true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limitRaw := r.URL.Query().Get("limit")
	if limitRaw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(limitRaw)
	if err != nil {
		writeRevenueError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return 0, false
	}
	return limit, true
}

func writeRevenueDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, revenuedomainerrors.ErrSchemeNotFound):
		writeRevenueError(w, http.StatusNotFound, "scheme_not_found", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrRoomNotFound):
		writeRevenueError(w, http.StatusNotFound, "room_not_found", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrInvalidSplit):
		writeRevenueError(w, http.StatusBadRequest, "invalid_split", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrInvalidRecipient):
		writeRevenueError(w, http.StatusBadRequest, "invalid_recipient", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrInvalidAmount):
		writeRevenueError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrInvalidCount):
		writeRevenueError(w, http.StatusBadRequest, "invalid_count", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrUnauthorized):
		writeRevenueError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrRoomInactive):
		writeRevenueError(w, http.StatusConflict, "room_inactive", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrSchemeInactive):
		writeRevenueError(w, http.StatusConflict, "scheme_inactive", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrTransferFailed):
		writeRevenueError(w, http.StatusConflict, "transfer_failed", err.Error())
	case errors.Is(err, revenuedomainerrors.ErrInsufficientBalance):
		writeRevenueError(w, http.StatusConflict, "insufficient_balance", err.Error())
	default:
		writeRevenueError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRevenueError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, revenuehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
