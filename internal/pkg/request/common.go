package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams carries the pagination query parameters shared by list endpoints.
// Pointers distinguish "not sent" from an explicit zero, which is rejected
// downstream.
type ListParams struct {
	Page      *int   `form:"page"`
	PageSize  *int   `form:"page_size"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}
