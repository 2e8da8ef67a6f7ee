package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

const (
	DefaultMinAge = 18
	DefaultMaxAge = 35
)

const (
	SortFeatured = "featured"
	SortYoungest = "youngest"
	SortOldest   = "oldest"
)

// BrowseCriteria narrows the directory. Categories combine with AND; values
// inside Languages or Interests combine with OR.
type BrowseCriteria struct {
	MinAge    *int     `form:"minAge" binding:"omitempty,min=0"`
	MaxAge    *int     `form:"maxAge" binding:"omitempty,min=0"`
	Languages []string `form:"languages"`
	Location  string   `form:"location"`
	Interests []string `form:"interests"`
	Search    string   `form:"search"`
	Sort      string   `form:"sort" binding:"omitempty,oneof=featured youngest oldest"`
}

// ageBounds resolves defaults and rejects an inverted range.
func (c *BrowseCriteria) ageBounds() (int, int, error) {
	minAge, maxAge := DefaultMinAge, DefaultMaxAge
	if c.MinAge != nil {
		minAge = *c.MinAge
	}
	if c.MaxAge != nil {
		maxAge = *c.MaxAge
	}
	if minAge > maxAge {
		return 0, 0, response.NewValidation("minAge must not exceed maxAge")
	}
	return minAge, maxAge, nil
}

// CastListing is a directory row.
type CastListing struct {
	models.Cast
	Bookmarked bool `json:"bookmarked"`
}

type BrowseResult struct {
	Casts     []CastListing `json:"casts"`
	Locations []string      `json:"locations"`
	Interests []string      `json:"interests"`
}

type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// Browse fetches active casts once and filters them in memory.
func (s *DirectoryService) Browse(ctx context.Context, actor Actor, criteria *BrowseCriteria) (*BrowseResult, error) {
	if err := requireRole(actor, models.RoleMember, models.RoleCast, models.RoleAdmin); err != nil {
		return nil, err
	}
	if criteria == nil {
		criteria = &BrowseCriteria{}
	}

	var casts []models.Cast
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Photos", orderByDisplay).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&casts).Error
	if err != nil {
		return nil, err
	}

	filtered, err := FilterCasts(casts, criteria)
	if err != nil {
		return nil, err
	}

	bookmarked := map[uint]bool{}
	if actor.Role == models.RoleMember {
		bookmarked, err = s.bookmarkedCastIDs(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
	}

	listings := make([]CastListing, 0, len(filtered))
	for _, c := range filtered {
		listings = append(listings, CastListing{Cast: c, Bookmarked: bookmarked[c.ID]})
	}

	locations, interests := Facets(casts)
	return &BrowseResult{Casts: listings, Locations: locations, Interests: interests}, nil
}

func (s *DirectoryService) bookmarkedCastIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Bookmark{}).
		Joins("JOIN members ON members.id = bookmarks.member_id").
		Where("members.user_id = ?", userID).
		Pluck("bookmarks.cast_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Get returns one active cast with photos.
func (s *DirectoryService) Get(ctx context.Context, actor Actor, castID uint) (*CastListing, error) {
	if err := requireRole(actor, models.RoleMember, models.RoleCast, models.RoleAdmin); err != nil {
		return nil, err
	}

	var cast models.Cast
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Photos", orderByDisplay).
		Where("id = ? AND is_active = ?", castID, true).
		First(&cast).Error
	if err != nil {
		return nil, notFoundOr(err, "cast not found")
	}

	listing := &CastListing{Cast: cast}
	if actor.Role == models.RoleMember {
		ids, err := s.bookmarkedCastIDs(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		listing.Bookmarked = ids[cast.ID]
	}
	return listing, nil
}

// FilterCasts applies criteria to casts and returns a new, sorted slice.
// The input order is kept wherever the sort does not decide.
func FilterCasts(casts []models.Cast, criteria *BrowseCriteria) ([]models.Cast, error) {
	minAge, maxAge, err := criteria.ageBounds()
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(criteria.Search))
	location := strings.TrimSpace(criteria.Location)

	out := make([]models.Cast, 0, len(casts))
	for _, c := range casts {
		if c.Age < minAge || c.Age > maxAge {
			continue
		}
		if len(criteria.Languages) > 0 && !anyMatch(c.Languages, criteria.Languages) {
			continue
		}
		if location != "" && c.Location != location {
			continue
		}
		if len(criteria.Interests) > 0 && !anyMatch(c.Interests, criteria.Interests) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.DisplayName()), search) {
			continue
		}
		out = append(out, c)
	}

	switch criteria.Sort {
	case SortYoungest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Age < out[j].Age })
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Age > out[j].Age })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].IsFeatured && !out[j].IsFeatured })
	}
	return out, nil
}

func anyMatch(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// Facets lists the distinct locations and interests across casts, sorted.
func Facets(casts []models.Cast) (locations []string, interests []string) {
	locSet := map[string]struct{}{}
	intSet := map[string]struct{}{}
	for _, c := range casts {
		if c.Location != "" {
			locSet[c.Location] = struct{}{}
		}
		for _, i := range c.Interests {
			if i != "" {
				intSet[i] = struct{}{}
			}
		}
	}
	return sortedKeys(locSet), sortedKeys(intSet)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
