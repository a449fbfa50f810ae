package dto

// ==================== Common DTOs ====================

// ErrorResponse error envelope shared by all handlers
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// PaginationQuery list pagination parameters
type PaginationQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// EventsQuery event log cursor query. After is the last sequence number the
// caller has already seen.
type EventsQuery struct {
	After uint64 `form:"after"`
	Limit int    `form:"limit,default=100"`
}
