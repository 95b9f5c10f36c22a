package domain

import "time"

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageRequest holds pagination, sorting, and filtering parameters.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     string
	Filter   map[string]string
}

// PageResult is one page of a list query together with its pagination metadata.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"current_page"`
	PageSize   int   `json:"items_per_page"`
	TotalPages int   `json:"total_pages"`
}

// HasPrev reports whether a page exists before the current one.
func (p *PageResult[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a page exists after the current one.
func (p *PageResult[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// Models lists every persisted catalog model, in migration order.
func Models() []any {
	return []any{&Author{}, &Genre{}, &Book{}}
}
