// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// --- Pagination ---

// PageRequest contains pagination parameters.
type PageRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Defaults sets default pagination values.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
}

// Offset calculates the row offset of the page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the pagination block of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination creates pagination metadata.
func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int(total) / limit
		if int(total)%limit > 0 {
			pages++
		}
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// --- Envelopes ---

// Response is the success envelope.
type Response struct {
	Status     string      `json:"status"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Success wraps data in the success envelope.
func Success(data any) Response {
	return Response{Status: "success", Data: data}
}

// ErrorResponse mirrors the envelope written by the error middleware.
type ErrorResponse struct {
	Status  string         `json:"status"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// IDResponse for create operations that return no body of their own.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Common filters ---

// DateRange is a from/to query pair. Dates are YYYY-MM-DD or RFC 3339.
type DateRange struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// Bounds parses the range as a half-open interval. A date-only "to" covers
// the whole day.
func (r DateRange) Bounds() (from, to *time.Time, err error) {
	if r.From != "" {
		t, _, err := parseDate("from", r.From)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if r.To != "" {
		t, dateOnly, err := parseDate("to", r.To)
		if err != nil {
			return nil, nil, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		to = &t
	}
	return from, to, nil
}

// Days parses the range as inclusive calendar days. Missing ends stay zero.
func (r DateRange) Days() (from, to time.Time, err error) {
	if r.From != "" {
		if from, _, err = parseDate("from", r.From); err != nil {
			return
		}
	}
	if r.To != "" {
		if to, _, err = parseDate("to", r.To); err != nil {
			return
		}
	}
	return from, to, nil
}

func parseDate(field, s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, apperror.NewValidation("invalid date, expected YYYY-MM-DD or RFC 3339").
		WithDetail("field", field).
		WithDetail("value", s)
}

// ParseOptionalID parses an optional id query value.
func ParseOptionalID(field, s string) (*id.ID, error) {
	v, err := id.ParsePtr(s)
	if err != nil {
		return nil, apperror.NewValidation("invalid id format").WithDetail("field", field)
	}
	return v, nil
}
