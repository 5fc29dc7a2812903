package errors

import "errors"

var (
	ErrSchemeNotFound      = errors.New("revenue scheme not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrInvalidSplit        = errors.New("share list malformed or not summing to 10000")
	ErrInvalidRecipient    = errors.New("recipient identity is zero")
	ErrUnauthorized        = errors.New("caller is not authorized")
	ErrRoomInactive        = errors.New("room not active")
	ErrSchemeInactive      = errors.New("revenue scheme not active")
	ErrInvalidAmount       = errors.New("tip amount must be > 0")
	ErrInvalidCount        = errors.New("tip count must be > 0")
	ErrTransferFailed      = errors.New("a recipient rejected its payout")
	ErrInsufficientBalance = errors.New("withdrawal exceeds undistributed balance")
)
