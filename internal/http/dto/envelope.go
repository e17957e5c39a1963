package dto

// Response is the envelope around every API response body.
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int32 `json:"limit"`
	Offset  int32 `json:"offset"`
	HasMore bool  `json:"has_more"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

func Fail(message string) Response {
	return Response{Success: false, Error: message}
}

func Paged(data any, total int64, limit, offset int32) Response {
	return Response{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset)+int64(limit) < total,
		},
	}
}

// ListQuery is bound from ?limit=&offset= on every list endpoint.
type ListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
