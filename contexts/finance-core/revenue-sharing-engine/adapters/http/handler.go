package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"

	"tipstream/contexts/finance-core/revenue-sharing-engine/application"
	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
	httptransport "tipstream/contexts/finance-core/revenue-sharing-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// CreateSchemeHandler godoc
// @Summary Create a revenue scheme
// @Description Registers an ordered recipient/share split plan. Shares are basis points summing to 10000.
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param request body httptransport.CreateSchemeRequest true "Scheme definition"
// @Success 200 {object} httptransport.SchemeResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/schemes [post]
func (h Handler) CreateSchemeHandler(ctx context.Context, req httptransport.CreateSchemeRequest) (httptransport.SchemeResponse, error) {
	scheme, err := h.Service.CreateScheme(ctx, ports.CreateSchemeInput{
		Name:       req.Name,
		Recipients: toAddresses(req.Recipients),
		ShareBps:   req.ShareBps,
	})
	if err != nil {
		return httptransport.SchemeResponse{}, err
	}
	return httptransport.SchemeResponse{Status: "success", Data: toSchemeDTO(scheme)}, nil
}

// UpdateSchemeHandler godoc
// @Summary Replace a revenue scheme
// @Description Atomically replaces name, recipients, shares, and the active flag.
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param scheme_id path int true "Scheme id"
// @Param request body httptransport.UpdateSchemeRequest true "Replacement definition"
// @Success 200 {object} httptransport.SchemeResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/schemes/{scheme_id} [put]
func (h Handler) UpdateSchemeHandler(ctx context.Context, schemeID uint64, req httptransport.UpdateSchemeRequest) (httptransport.SchemeResponse, error) {
	scheme, err := h.Service.UpdateScheme(ctx, ports.UpdateSchemeInput{
		SchemeID:   schemeID,
		Name:       req.Name,
		Recipients: toAddresses(req.Recipients),
		ShareBps:   req.ShareBps,
		Active:     req.Active,
	})
	if err != nil {
		return httptransport.SchemeResponse{}, err
	}
	return httptransport.SchemeResponse{Status: "success", Data: toSchemeDTO(scheme)}, nil
}

// GetSchemeHandler godoc
// @Summary Get a revenue scheme
// @Tags revenue-sharing-engine
// @Produce json
// @Param scheme_id path int true "Scheme id"
// @Success 200 {object} httptransport.SchemeResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/schemes/{scheme_id} [get]
func (h Handler) GetSchemeHandler(ctx context.Context, schemeID uint64) (httptransport.SchemeResponse, error) {
	scheme, err := h.Service.GetScheme(ctx, schemeID)
	if err != nil {
		return httptransport.SchemeResponse{}, err
	}
	return httptransport.SchemeResponse{Status: "success", Data: toSchemeDTO(scheme)}, nil
}

// SchemeStatsHandler godoc
// @Summary Count registered schemes
// @Tags revenue-sharing-engine
// @Produce json
// @Success 200 {object} httptransport.SchemeStatsResponse
// @Router /v1/schemes/stats [get]
func (h Handler) SchemeStatsHandler(ctx context.Context) (httptransport.SchemeStatsResponse, error) {
	count, err := h.Service.SchemeCount(ctx)
	if err != nil {
		return httptransport.SchemeStatsResponse{}, err
	}
	resp := httptransport.SchemeStatsResponse{Status: "success"}
	resp.Data.SchemeCount = count
	return resp, nil
}

// CreateRoomHandler godoc
// @Summary Open a room
// @Description Opens a tipping room owned by the caller, bound to an existing scheme.
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Streamer identity"
// @Param request body httptransport.CreateRoomRequest true "Room definition"
// @Success 200 {object} httptransport.RoomResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/rooms [post]
func (h Handler) CreateRoomHandler(ctx context.Context, caller string, req httptransport.CreateRoomRequest) (httptransport.RoomResponse, error) {
	room, err := h.Service.CreateRoom(ctx, entities.Address(caller), req.SchemeID)
	if err != nil {
		return httptransport.RoomResponse{}, err
	}
	return httptransport.RoomResponse{Status: "success", Data: toRoomDTO(room)}, nil
}

// UpdateRoomSchemeHandler godoc
// @Summary Rebind a room to another scheme
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Streamer identity"
// @Param room_id path int true "Room id"
// @Param request body httptransport.UpdateRoomSchemeRequest true "New scheme binding"
// @Success 200 {object} httptransport.RoomResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/rooms/{room_id}/scheme [patch]
func (h Handler) UpdateRoomSchemeHandler(ctx context.Context, caller string, roomID uint64, req httptransport.UpdateRoomSchemeRequest) (httptransport.RoomResponse, error) {
	if err := h.Service.UpdateRoomScheme(ctx, entities.Address(caller), roomID, req.SchemeID); err != nil {
		return httptransport.RoomResponse{}, err
	}
	return h.GetRoomHandler(ctx, roomID)
}

// SetRoomActiveHandler godoc
// @Summary Toggle a room's active flag
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Streamer identity"
// @Param room_id path int true "Room id"
// @Param request body httptransport.SetRoomActiveRequest true "Active flag"
// @Success 200 {object} httptransport.RoomResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/rooms/{room_id}/active [patch]
func (h Handler) SetRoomActiveHandler(ctx context.Context, caller string, roomID uint64, req httptransport.SetRoomActiveRequest) (httptransport.RoomResponse, error) {
	if err := h.Service.SetRoomActive(ctx, entities.Address(caller), roomID, req.Active); err != nil {
		return httptransport.RoomResponse{}, err
	}
	return h.GetRoomHandler(ctx, roomID)
}

// GetRoomHandler godoc
// @Summary Get a room
// @Tags revenue-sharing-engine
// @Produce json
// @Param room_id path int true "Room id"
// @Success 200 {object} httptransport.RoomResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/rooms/{room_id} [get]
func (h Handler) GetRoomHandler(ctx context.Context, roomID uint64) (httptransport.RoomResponse, error) {
	room, err := h.Service.GetRoom(ctx, roomID)
	if err != nil {
		return httptransport.RoomResponse{}, err
	}
	return httptransport.RoomResponse{Status: "success", Data: toRoomDTO(room)}, nil
}

// StreamerRoomsHandler godoc
// @Summary List a streamer's rooms
// @Tags revenue-sharing-engine
// @Produce json
// @Param streamer_id path string true "Streamer identity"
// @Success 200 {object} httptransport.StreamerRoomsResponse
// @Router /v1/streamers/{streamer_id}/rooms [get]
func (h Handler) StreamerRoomsHandler(ctx context.Context, streamer string) (httptransport.StreamerRoomsResponse, error) {
	ids, err := h.Service.StreamerRooms(ctx, entities.Address(streamer))
	if err != nil {
		return httptransport.StreamerRoomsResponse{}, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return httptransport.StreamerRoomsResponse{Status: "success", Data: ids}, nil
}

// TipHandler godoc
// @Summary Tip a room
// @Description Splits the amount across the room's scheme atomically. Count > 1 records that many discrete tip units while moving funds once.
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Tipper identity"
// @Param room_id path int true "Room id"
// @Param request body httptransport.TipRequest true "Tip amount and optional unit count"
// @Success 200 {object} httptransport.DistributionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/rooms/{room_id}/tips [post]
func (h Handler) TipHandler(ctx context.Context, caller string, roomID uint64, req httptransport.TipRequest) (httptransport.DistributionResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.DistributionResponse{}, err
	}

	var distribution entities.Distribution
	if req.Count == 0 {
		distribution, err = h.Service.Tip(ctx, entities.Address(caller), roomID, amount)
	} else {
		distribution, err = h.Service.TipMultiple(ctx, entities.Address(caller), roomID, req.Count, amount)
	}
	if err != nil {
		return httptransport.DistributionResponse{}, err
	}
	return httptransport.DistributionResponse{Status: "success", Data: toDistributionDTO(distribution)}, nil
}

// RoomTipsHandler godoc
// @Summary List a room's recent tips
// @Tags revenue-sharing-engine
// @Produce json
// @Param room_id path int true "Room id"
// @Param limit query int false "Max records (most-recent first)"
// @Success 200 {object} httptransport.TipHistoryResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/rooms/{room_id}/tips [get]
func (h Handler) RoomTipsHandler(ctx context.Context, roomID uint64, limit int) (httptransport.TipHistoryResponse, error) {
	records, err := h.Service.RoomTips(ctx, roomID, limit)
	if err != nil {
		return httptransport.TipHistoryResponse{}, err
	}
	return httptransport.TipHistoryResponse{Status: "success", Data: toTipRecordDTOs(records)}, nil
}

// RecentTipsHandler godoc
// @Summary List global recent tips
// @Tags revenue-sharing-engine
// @Produce json
// @Param limit query int false "Max records (most-recent first)"
// @Success 200 {object} httptransport.TipHistoryResponse
// @Router /v1/tips/recent [get]
func (h Handler) RecentTipsHandler(ctx context.Context, limit int) (httptransport.TipHistoryResponse, error) {
	records, err := h.Service.RecentTips(ctx, limit)
	if err != nil {
		return httptransport.TipHistoryResponse{}, err
	}
	return httptransport.TipHistoryResponse{Status: "success", Data: toTipRecordDTOs(records)}, nil
}

// UserStatsHandler godoc
// @Summary Get a tipper's accumulated stats
// @Tags revenue-sharing-engine
// @Produce json
// @Param user_id path string true "Tipper identity"
// @Success 200 {object} httptransport.UserStatsResponse
// @Router /v1/users/{user_id}/stats [get]
func (h Handler) UserStatsHandler(ctx context.Context, user string) (httptransport.UserStatsResponse, error) {
	stats, err := h.Service.UserStats(ctx, entities.Address(user))
	if err != nil {
		return httptransport.UserStatsResponse{}, err
	}
	resp := httptransport.UserStatsResponse{Status: "success"}
	resp.Data.UserID = stats.User.String()
	resp.Data.TotalTipped = stats.TotalTipped.String()
	resp.Data.TipCount = stats.TipCount
	return resp, nil
}

// LedgerStatsHandler godoc
// @Summary Get global ledger stats
// @Tags revenue-sharing-engine
// @Produce json
// @Success 200 {object} httptransport.LedgerStatsResponse
// @Router /v1/stats [get]
func (h Handler) LedgerStatsHandler(ctx context.Context) (httptransport.LedgerStatsResponse, error) {
	stats, err := h.Service.LedgerStats(ctx)
	if err != nil {
		return httptransport.LedgerStatsResponse{}, err
	}
	resp := httptransport.LedgerStatsResponse{Status: "success"}
	resp.Data.TotalRooms = stats.TotalRooms
	resp.Data.TotalTips = stats.TotalTips
	resp.Data.TotalVolume = stats.TotalVolume.String()
	return resp, nil
}

// WithdrawHandler godoc
// @Summary Withdraw undistributed vault balance
// @Description Administrator-only. An omitted or zero amount sweeps the full balance.
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Administrator identity"
// @Param request body httptransport.WithdrawRequest true "Destination and amount"
// @Success 200 {object} httptransport.TreasuryEntryResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/treasury/withdrawals [post]
func (h Handler) WithdrawHandler(ctx context.Context, caller string, req httptransport.WithdrawRequest) (httptransport.TreasuryEntryResponse, error) {
	amount := sdkmath.ZeroInt()
	if strings.TrimSpace(req.Amount) != "" {
		parsed, err := parseAmount(req.Amount)
		if err != nil {
			return httptransport.TreasuryEntryResponse{}, err
		}
		amount = parsed
	}
	entry, err := h.Service.Withdraw(ctx, entities.Address(caller), entities.Address(req.To), amount)
	if err != nil {
		return httptransport.TreasuryEntryResponse{}, err
	}
	return httptransport.TreasuryEntryResponse{Status: "success", Data: toTreasuryEntryDTO(entry)}, nil
}

// DepositHandler godoc
// @Summary Deposit into the vault
// @Tags revenue-sharing-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Depositor identity"
// @Param request body httptransport.DepositRequest true "Deposit amount"
// @Success 200 {object} httptransport.TreasuryEntryResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/treasury/deposits [post]
func (h Handler) DepositHandler(ctx context.Context, caller string, req httptransport.DepositRequest) (httptransport.TreasuryEntryResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.TreasuryEntryResponse{}, err
	}
	entry, err := h.Service.Deposit(ctx, entities.Address(caller), amount)
	if err != nil {
		return httptransport.TreasuryEntryResponse{}, err
	}
	return httptransport.TreasuryEntryResponse{Status: "success", Data: toTreasuryEntryDTO(entry)}, nil
}

// VaultBalanceHandler godoc
// @Summary Read the undistributed vault balance
// @Tags revenue-sharing-engine
// @Produce json
// @Success 200 {object} httptransport.VaultBalanceResponse
// @Router /v1/treasury/balance [get]
func (h Handler) VaultBalanceHandler(ctx context.Context) (httptransport.VaultBalanceResponse, error) {
	balance, err := h.Service.VaultBalance(ctx)
	if err != nil {
		return httptransport.VaultBalanceResponse{}, err
	}
	resp := httptransport.VaultBalanceResponse{Status: "success"}
	resp.Data.Balance = balance.String()
	return resp, nil
}

func parseAmount(raw string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(strings.TrimSpace(raw))
	if !ok {
		return sdkmath.Int{}, domainerrors.ErrInvalidAmount
	}
	return amount, nil
}

func toAddresses(items []string) []entities.Address {
	addresses := make([]entities.Address, 0, len(items))
	for _, item := range items {
		addresses = append(addresses, entities.Address(item))
	}
	return addresses
}

func toSchemeDTO(scheme entities.Scheme) httptransport.SchemeDTO {
	recipients := make([]string, 0, len(scheme.Recipients))
	for _, recipient := range scheme.Recipients {
		recipients = append(recipients, recipient.String())
	}
	return httptransport.SchemeDTO{
		SchemeID:   scheme.ID,
		Name:       scheme.Name,
		Recipients: recipients,
		ShareBps:   append([]uint32(nil), scheme.ShareBps...),
		Active:     scheme.Active,
		CreatedAt:  scheme.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRoomDTO(room entities.Room) httptransport.RoomDTO {
	return httptransport.RoomDTO{
		RoomID:        room.ID,
		Streamer:      room.Streamer.String(),
		SchemeID:      room.SchemeID,
		Active:        room.Active,
		CreatedAt:     room.CreatedAt.UTC().Format(time.RFC3339),
		TotalReceived: room.TotalReceived.String(),
		TipCount:      room.TipCount,
	}
}

func toTipRecordDTOs(records []entities.TipRecord) []httptransport.TipRecordDTO {
	items := make([]httptransport.TipRecordDTO, 0, len(records))
	for _, record := range records {
		items = append(items, httptransport.TipRecordDTO{
			RecordID:   record.RecordID,
			RoomID:     record.RoomID,
			Tipper:     record.Tipper.String(),
			Streamer:   record.Streamer.String(),
			Amount:     record.Amount.String(),
			OccurredAt: record.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func toDistributionDTO(distribution entities.Distribution) httptransport.DistributionDTO {
	payouts := make([]httptransport.PayoutLegDTO, 0, len(distribution.Payouts))
	for _, leg := range distribution.Payouts {
		payouts = append(payouts, httptransport.PayoutLegDTO{
			Recipient: leg.Recipient.String(),
			Amount:    leg.Amount.String(),
		})
	}
	return httptransport.DistributionDTO{
		RoomID:     distribution.RoomID,
		SchemeID:   distribution.SchemeID,
		Tipper:     distribution.Tipper.String(),
		Streamer:   distribution.Streamer.String(),
		Amount:     distribution.Amount.String(),
		TipCount:   distribution.TipCount,
		Payouts:    payouts,
		Records:    toTipRecordDTOs(distribution.Records),
		OccurredAt: distribution.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func toTreasuryEntryDTO(entry entities.TreasuryEntry) httptransport.TreasuryEntryDTO {
	return httptransport.TreasuryEntryDTO{
		EntryID:      entry.EntryID,
		Kind:         string(entry.Kind),
		Counterparty: entry.Counterparty.String(),
		Amount:       entry.Amount.String(),
		OccurredAt:   entry.OccurredAt.UTC().Format(time.RFC3339),
	}
}
