package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

func intPtr(v int) *int { return &v }

func testCast(id uint, name string, age int, featured bool, location string, langs, interests []string) models.Cast {
	return models.Cast{
		ID:         id,
		User:       &models.User{Nickname: name},
		Age:        age,
		IsFeatured: featured,
		Location:   location,
		Languages:  datatypes.NewJSONSlice(langs),
		Interests:  datatypes.NewJSONSlice(interests),
	}
}

func castIDs(casts []models.Cast) []uint {
	out := []uint{}
	for _, c := range casts {
		out = append(out, c.ID)
	}
	return out
}

var directoryFixture = []models.Cast{
	testCast(1, "Aiko", 22, false, "Tokyo", []string{"en", "ja"}, []string{"music", "art"}),
	testCast(2, "Mei", 30, true, "Osaka", []string{"ja"}, []string{"travel"}),
	testCast(3, "Rin", 19, false, "Tokyo", []string{"en"}, []string{"sports"}),
	testCast(4, "Yui", 40, true, "Tokyo", []string{"en"}, []string{"music"}),
	testCast(5, "Saki", 27, true, "Kyoto", []string{"zh"}, []string{"art"}),
}

func TestFilterCasts(t *testing.T) {
	tests := []struct {
		name     string
		criteria BrowseCriteria
		want     []uint
	}{
		{"defaults exclude out of range ages, featured first", BrowseCriteria{}, []uint{2, 5, 1, 3}},
		{"inclusive age bounds", BrowseCriteria{MinAge: intPtr(22), MaxAge: intPtr(27)}, []uint{5, 1}},
		{"languages match any", BrowseCriteria{Languages: []string{"ZH", "ja"}}, []uint{2, 5, 1}},
		{"location exact", BrowseCriteria{Location: "Tokyo"}, []uint{1, 3}},
		{"interests match any", BrowseCriteria{Interests: []string{"art", "sports"}}, []uint{5, 1, 3}},
		{"interests ignore case", BrowseCriteria{Interests: []string{"ART"}}, []uint{5, 1}},
		{"location keeps case", BrowseCriteria{Location: "tokyo"}, []uint{}},
		{"categories combine with AND", BrowseCriteria{Location: "Tokyo", Interests: []string{"art"}}, []uint{1}},
		{"search is case-insensitive substring", BrowseCriteria{Search: "AK"}, []uint{5}},
		{"youngest", BrowseCriteria{Sort: SortYoungest, MaxAge: intPtr(99)}, []uint{3, 1, 5, 2, 4}},
		{"oldest", BrowseCriteria{Sort: SortOldest, MaxAge: intPtr(99)}, []uint{4, 2, 5, 1, 3}},
		{"no match", BrowseCriteria{Location: "Nagoya"}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterCasts(directoryFixture, &tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, castIDs(got))
		})
	}
}

func TestFilterCasts_InvertedAgeRange(t *testing.T) {
	_, err := FilterCasts(directoryFixture, &BrowseCriteria{MinAge: intPtr(30), MaxAge: intPtr(20)})
	assert.True(t, errors.Is(err, response.ErrValidation))
}

func TestFilterCasts_DoesNotReorderInput(t *testing.T) {
	in := append([]models.Cast(nil), directoryFixture...)
	_, err := FilterCasts(in, &BrowseCriteria{Sort: SortOldest})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3, 4, 5}, castIDs(in))
}

func TestFacets(t *testing.T) {
	locations, interests := Facets(directoryFixture)
	assert.Equal(t, []string{"Kyoto", "Osaka", "Tokyo"}, locations)
	assert.Equal(t, []string{"art", "music", "sports", "travel"}, interests)
}

func TestDirectoryService_Browse(t *testing.T) {
	db := openTestDB(t)
	svc := NewDirectoryService(db)
	bookmarks := NewBookmarkService(db)
	ctx := context.Background()

	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	aiko := seedCast(t, db, castSeed{Nickname: "Aiko", Age: 22, Location: "Tokyo", Interests: []string{"music"}})
	seedCast(t, db, castSeed{Nickname: "Mei", Age: 30, Featured: true, Location: "Osaka"})
	hidden := seedCast(t, db, castSeed{Nickname: "Hidden", Age: 24, Inactive: true, Location: "Sapporo"})

	_, err := bookmarks.Add(ctx, actor, aiko.ID)
	require.NoError(t, err)

	result, err := svc.Browse(ctx, actor, &BrowseCriteria{})
	require.NoError(t, err)
	require.Len(t, result.Casts, 2)
	assert.Equal(t, "Mei", result.Casts[0].DisplayName())
	assert.False(t, result.Casts[0].Bookmarked)
	assert.Equal(t, aiko.ID, result.Casts[1].ID)
	assert.True(t, result.Casts[1].Bookmarked)
	assert.Equal(t, []string{"Osaka", "Tokyo"}, result.Locations)

	_, err = svc.Get(ctx, actor, hidden.ID)
	assert.True(t, errors.Is(err, response.ErrNotFound), "inactive casts are not visible")

	got, err := svc.Get(ctx, actor, aiko.ID)
	require.NoError(t, err)
	assert.True(t, got.Bookmarked)

	_, err = svc.Browse(ctx, Actor{}, nil)
	assert.True(t, errors.Is(err, response.ErrUnauthorized))
}

func TestFilterCasts_AgeRangeWithLanguage(t *testing.T) {
	fixture := []models.Cast{
		testCast(1, "Aiko", 25, false, "Tokyo", []string{"en"}, nil),
		testCast(2, "Mei", 28, true, "Osaka", []string{"en", "ja"}, nil),
		testCast(3, "Rin", 30, true, "Tokyo", []string{"ja"}, nil),
		testCast(4, "Yui", 24, true, "Tokyo", []string{"en"}, nil),
		testCast(5, "Saki", 31, false, "Kyoto", []string{"en"}, nil),
	}
	criteria := &BrowseCriteria{MinAge: intPtr(25), MaxAge: intPtr(30), Languages: []string{"en"}}

	got, err := FilterCasts(fixture, criteria)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 1}, castIDs(got), "featured first, then fetch order")

	again, err := FilterCasts(fixture, criteria)
	require.NoError(t, err)
	assert.Equal(t, castIDs(got), castIDs(again))
}

func TestDirectoryService_BrowseIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	svc := NewDirectoryService(db)
	ctx := context.Background()
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)

	seedCast(t, db, castSeed{Nickname: "Aiko", Age: 25, Location: "Tokyo", Languages: []string{"en"}, Interests: []string{"wine"}})
	seedCast(t, db, castSeed{Nickname: "Mei", Age: 28, Featured: true, Location: "Osaka", Languages: []string{"en", "ja"}})
	seedCast(t, db, castSeed{Nickname: "Rin", Age: 30, Featured: true, Location: "Tokyo", Languages: []string{"ja"}})
	seedCast(t, db, castSeed{Nickname: "Yui", Age: 26, Location: "Kyoto", Languages: []string{"en"}, Interests: []string{"art"}})

	ids := func(r *BrowseResult) []uint {
		out := []uint{}
		for _, c := range r.Casts {
			out = append(out, c.ID)
		}
		return out
	}

	for _, criteria := range []BrowseCriteria{
		{},
		{Languages: []string{"en"}, Sort: SortYoungest},
		{MinAge: intPtr(25), MaxAge: intPtr(30), Languages: []string{"en"}},
	} {
		first, err := svc.Browse(ctx, actor, &criteria)
		require.NoError(t, err)
		second, err := svc.Browse(ctx, actor, &criteria)
		require.NoError(t, err)
		assert.NotEmpty(t, ids(first))
		assert.Equal(t, ids(first), ids(second))
		assert.Equal(t, first.Locations, second.Locations)
		assert.Equal(t, first.Interests, second.Interests)
	}
}
