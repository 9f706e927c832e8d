package model

import "time"

// APIResponse is a generic wrapper for successful API responses.
type APIResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NoticeType classifies a transient user-facing notice.
type NoticeType string

// Notice types.
const (
	NoticeSuccess NoticeType = "success"
	NoticeWarning NoticeType = "warning"
)

// Notice messages.
const (
	MsgAddedToCart     = "Added to cart"
	MsgMaxQuantity     = "Cannot add more than maximum quantity"
	MsgMinQuantity     = "Quantity cannot go below 1"
	MsgScreenNotExists = "Oops! This screen does not exist"
)

// Notice is a transient message the client shows after a cart action.
type Notice struct {
	Type    NoticeType `json:"type"`
	Message string     `json:"message"`
}

// NewNotice creates a Notice.
func NewNotice(t NoticeType, msg string) *Notice {
	return &Notice{Type: t, Message: msg}
}

// WebSocket message types.
const (
	WSMessageTypeSnapshot = "cart_snapshot"
	WSMessageTypeEvent    = "cart_event"
)

// WebSocketMessage represents a message sent over WebSocket connection.
type WebSocketMessage struct {
	Type      string         `json:"type"`
	Operation string         `json:"operation,omitempty"`
	ItemID    int64          `json:"item_id,omitempty"`
	Changed   bool           `json:"changed"`
	Items     []CartLineItem `json:"items"`
	Timestamp time.Time      `json:"timestamp"`
}
