package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

// Actor is the authenticated caller every operation runs on behalf of.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// requireRole rejects callers whose role is not listed. Wrong-role callers
// get the same 401 as anonymous ones.
func requireRole(a Actor, roles ...models.Role) error {
	if a.UserID == 0 {
		return response.NewUnauthorized("authentication required")
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return response.NewUnauthorized("insufficient role for this operation")
}

// timeNow is swapped in tests that need a fixed clock.
var timeNow = func() time.Time { return time.Now().UTC() }

// notFoundOr maps gorm's missing-row error to a 404 with msg and passes
// anything else through.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(msg)
	}
	return err
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Page is the common pagination query.
type Page struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (p *Page) normalize(defaultSize int) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = defaultSize
	}
}

func (p *Page) offset() int { return (p.Page - 1) * p.PageSize }

// orderByDisplay is the Preload scope for photo galleries.
func orderByDisplay(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC, id ASC")
}

// ListResponse wraps one page of items.
type ListResponse[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Items    []T   `json:"items"`
}
