package dto

import "time"

type CreateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type UpdateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type TagsRequest struct {
	Tags []string `json:"tags"`
}

type BulkDeleteRequest struct {
	NoteIDs []string `json:"noteIds"`
}

type ReminderRequest struct {
	ReminderDate time.Time `json:"reminderDate"`
	ReminderText string    `json:"reminderText"`
}

// Pagination is the metadata block attached to every paginated listing.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
	Limit int   `json:"limit"`
}

func NewPagination(total int64, page, limit int) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}
