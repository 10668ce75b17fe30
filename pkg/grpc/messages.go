package grpc

import (
	"time"

	"github.com/example/clickmenu/pkg/analytics"
	"github.com/example/clickmenu/pkg/models"
)

type ListOrdersRequest struct {
	StoreID string    `json:"store_id,omitempty"`
	Query   string    `json:"query,omitempty"`
	Status  string    `json:"status,omitempty"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}

type OrderList struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type GetOrderRequest struct {
	StoreID   string `json:"store_id,omitempty"`
	RequestID string `json:"request_id"`
}

type UpdateOrderStatusRequest struct {
	StoreID   string `json:"store_id,omitempty"`
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// AnalyticsRequest asks for one store's summary, or the platform summary
// when StoreID is empty.
type AnalyticsRequest struct {
	StoreID string `json:"store_id,omitempty"`
}

type AnalyticsResponse struct {
	Store    *analytics.Summary         `json:"store,omitempty"`
	Platform *analytics.PlatformSummary `json:"platform,omitempty"`
}

type ListStoresRequest struct {
	Query  string `json:"query,omitempty"`
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type StoreList struct {
	Stores []models.Store `json:"stores"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type GetStoreRequest struct {
	StoreID string `json:"store_id"`
}

type BulkUpdateStoresRequest struct {
	StoreIDs []string `json:"store_ids"`
	Action   string   `json:"action"`
}

type BulkResetPasscodesRequest struct {
	StoreIDs []string `json:"store_ids"`
}

type BulkFailure struct {
	StoreID string `json:"store_id"`
	Error   string `json:"error"`
}

type BulkResponse struct {
	Succeeded []string          `json:"succeeded"`
	Failed    []BulkFailure     `json:"failed"`
	Passcodes map[string]string `json:"passcodes,omitempty"`
}
