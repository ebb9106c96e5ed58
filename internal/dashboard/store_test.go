package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Splendour-K/Opp/internal/models"
)

func opp(id, title string, typ models.OpportunityType) models.Opportunity {
	return models.Opportunity{ID: id, Title: title, Type: typ, Organization: "Org", Description: "desc"}
}

func ids(opps []models.Opportunity) []string {
	out := make([]string, 0, len(opps))
	for _, o := range opps {
		out = append(out, o.ID)
	}
	return out
}

func TestStore_MergeSyncedEmptyIsNoop(t *testing.T) {
	s := NewStore([]models.Opportunity{opp("1", "A", models.TypeGrant), opp("2", "B", models.TypeJob)})

	replaced := s.MergeSynced(nil)
	assert.Empty(t, replaced)
	assert.Equal(t, []string{"1", "2"}, ids(s.All()))

	s.MergeSynced([]models.Opportunity{})
	assert.Equal(t, []string{"1", "2"}, ids(s.All()))
}

func TestStore_MergeSyncedDedupByTitle(t *testing.T) {
	s := NewStore([]models.Opportunity{
		opp("1", "Tech Innovation Grant 2024", models.TypeGrant),
		opp("2", "Global Venture Fund", models.TypeInvestment),
	})

	replaced := s.MergeSynced([]models.Opportunity{
		opp("ext-1", "Tech Innovation Grant 2024", models.TypeGrant),
		opp("ext-2", "Brand New Fellowship", models.TypeFellowship),
		opp("ext-3", "Brand New Fellowship", models.TypeFellowship),
	})

	assert.Equal(t, []string{"ext-1", "ext-2", "2"}, ids(s.All()))
	assert.Equal(t, map[string]string{"1": "ext-1"}, replaced)

	titles := map[string]int{}
	for _, o := range s.All() {
		titles[o.Title]++
	}
	for title, n := range titles {
		assert.Equal(t, 1, n, "title %q appears more than once", title)
	}
}

func TestStore_MergeSyncedTitleIsCaseSensitive(t *testing.T) {
	s := NewStore([]models.Opportunity{opp("1", "Grant", models.TypeGrant)})
	s.MergeSynced([]models.Opportunity{opp("ext-1", "grant", models.TypeGrant)})
	assert.Equal(t, []string{"ext-1", "1"}, ids(s.All()))
}

func TestStore_ReplaceOrSeedCopies(t *testing.T) {
	records := []models.Opportunity{opp("1", "A", models.TypeGrant)}
	s := NewStore(records)
	records[0].Title = "changed"

	got, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)
}

func TestStore_Latest(t *testing.T) {
	s := NewStore(SeedOpportunities(fixedNow))
	assert.Len(t, s.Latest(LatestCount), 4)
	assert.Len(t, s.Latest(10), 4)
	assert.Empty(t, s.Latest(-1))
	assert.Equal(t, []string{"1", "2"}, ids(s.Latest(2)))
}

func TestStore_Filter(t *testing.T) {
	s := NewStore(SeedOpportunities(fixedNow))
	noScore := opp("5", "Unscored", models.TypeGrant)
	s.ReplaceOrSeed(append(s.All(), noScore))

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"all types", Filter{Type: AllTypes}, []string{"1", "2", "3", "4", "5"}},
		{"grants", Filter{Type: "Grant"}, []string{"1", "5"}},
		{"score 90", Filter{MinScore: 90}, []string{"1", "3", "4"}},
		{"grant and 70", Filter{Type: "Grant", MinScore: 70}, []string{"1"}},
		{"no match", Filter{Type: "Scholarship"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.Filter(tt.filter)))
		})
	}
}

func TestStore_SelectKeepsStoreOrder(t *testing.T) {
	s := NewStore(SeedOpportunities(fixedNow))
	got := s.Select(NewIDSet("4", "1", "missing"))
	assert.Equal(t, []string{"1", "4"}, ids(got))
}
