package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateSchemeRequest struct {
	Name       string   `json:"name"`
	Recipients []string `json:"recipients"`
	ShareBps   []uint32 `json:"share_bps"`
}

type UpdateSchemeRequest struct {
	Name       string   `json:"name"`
	Recipients []string `json:"recipients"`
	ShareBps   []uint32 `json:"share_bps"`
	Active     bool     `json:"active"`
}

type SchemeDTO struct {
	SchemeID   uint64   `json:"scheme_id"`
	Name       string   `json:"name"`
	Recipients []string `json:"recipients"`
	ShareBps   []uint32 `json:"share_bps"`
	Active     bool     `json:"active"`
	CreatedAt  string   `json:"created_at"`
}

type SchemeResponse struct {
	Status string    `json:"status"`
	Data   SchemeDTO `json:"data"`
}

type SchemeStatsResponse struct {
	Status string `json:"status"`
	Data   struct {
		SchemeCount uint64 `json:"scheme_count"`
	} `json:"data"`
}

type CreateRoomRequest struct {
	SchemeID uint64 `json:"scheme_id"`
}

type UpdateRoomSchemeRequest struct {
	SchemeID uint64 `json:"scheme_id"`
}

type SetRoomActiveRequest struct {
	Active bool `json:"active"`
}

type RoomDTO struct {
	RoomID        uint64 `json:"room_id"`
	Streamer      string `json:"streamer"`
	SchemeID      uint64 `json:"scheme_id"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
	TotalReceived string `json:"total_received"`
	TipCount      uint64 `json:"tip_count"`
}

type RoomResponse struct {
	Status string  `json:"status"`
	Data   RoomDTO `json:"data"`
}

type StreamerRoomsResponse struct {
	Status string   `json:"status"`
	Data   []uint64 `json:"data"`
}

// TipRequest carries the tip amount in minor units as a decimal string.
// Count > 1 selects the aggregate multi-tip form.
type TipRequest struct {
	Amount string `json:"amount"`
	Count  int    `json:"count,omitempty"`
}

type PayoutLegDTO struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type TipRecordDTO struct {
	RecordID   string `json:"record_id"`
	RoomID     uint64 `json:"room_id"`
	Tipper     string `json:"tipper"`
	Streamer   string `json:"streamer"`
	Amount     string `json:"amount"`
	OccurredAt string `json:"occurred_at"`
}

type DistributionDTO struct {
	RoomID     uint64         `json:"room_id"`
	SchemeID   uint64         `json:"scheme_id"`
	Tipper     string         `json:"tipper"`
	Streamer   string         `json:"streamer"`
	Amount     string         `json:"amount"`
	TipCount   uint64         `json:"tip_count"`
	Payouts    []PayoutLegDTO `json:"payouts"`
	Records    []TipRecordDTO `json:"records"`
	OccurredAt string         `json:"occurred_at"`
}

type DistributionResponse struct {
	Status string          `json:"status"`
	Data   DistributionDTO `json:"data"`
}

type TipHistoryResponse struct {
	Status string         `json:"status"`
	Data   []TipRecordDTO `json:"data"`
}

type UserStatsResponse struct {
	Status string `json:"status"`
	Data   struct {
		UserID      string `json:"user_id"`
		TotalTipped string `json:"total_tipped"`
		TipCount    uint64 `json:"tip_count"`
	} `json:"data"`
}

type LedgerStatsResponse struct {
	Status string `json:"status"`
	Data   struct {
		TotalRooms  uint64 `json:"total_rooms"`
		TotalTips   uint64 `json:"total_tips"`
		TotalVolume string `json:"total_volume"`
	} `json:"data"`
}

type WithdrawRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount,omitempty"`
}

type DepositRequest struct {
	Amount string `json:"amount"`
}

type TreasuryEntryDTO struct {
	EntryID      string `json:"entry_id"`
	Kind         string `json:"kind"`
	Counterparty string `json:"counterparty"`
	Amount       string `json:"amount"`
	OccurredAt   string `json:"occurred_at"`
}

type TreasuryEntryResponse struct {
	Status string           `json:"status"`
	Data   TreasuryEntryDTO `json:"data"`
}

type VaultBalanceResponse struct {
	Status string `json:"status"`
	Data   struct {
		Balance string `json:"balance"`
	} `json:"data"`
}
