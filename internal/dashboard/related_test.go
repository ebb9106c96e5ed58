package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Splendour-K/Opp/internal/models"
)

func tagged(id string, typ models.OpportunityType, tags ...string) models.Opportunity {
	o := opp(id, "title "+id, typ)
	o.Tags = tags
	return o
}

func TestRelatedTo_ScoringAndLabels(t *testing.T) {
	focal := tagged("f", models.TypeGrant, "AI", "Climate")
	all := []models.Opportunity{
		focal,
		tagged("type-only", models.TypeGrant),
		tagged("tags-only", models.TypeJob, "AI", "Climate"),
		tagged("both", models.TypeGrant, "Climate"),
		tagged("nothing", models.TypeJob, "Health"),
	}

	got := RelatedTo(focal, all)

	assert.Len(t, got, RelatedLimit)
	assert.Equal(t, "both", got[0].Opportunity.ID)
	assert.Equal(t, 35, got[0].Score)
	assert.Equal(t, LabelTopMatch, got[0].Label)

	assert.Equal(t, "tags-only", got[1].Opportunity.ID)
	assert.Equal(t, 30, got[1].Score)
	assert.Equal(t, LabelRelatedTags, got[1].Label)

	assert.Equal(t, "type-only", got[2].Opportunity.ID)
	assert.Equal(t, 20, got[2].Score)
	assert.Equal(t, LabelSimilarType, got[2].Label)

	for _, r := range got {
		assert.NotEqual(t, focal.ID, r.Opportunity.ID)
	}
}

func TestRelatedTo_TiesKeepInputOrderAndRecommended(t *testing.T) {
	focal := tagged("f", models.TypeGrant)
	all := []models.Opportunity{
		tagged("a", models.TypeJob),
		focal,
		tagged("b", models.TypeJob),
		tagged("c", models.TypeJob),
		tagged("d", models.TypeJob),
	}

	first := RelatedTo(focal, all)
	second := RelatedTo(focal, all)
	assert.Equal(t, first, second)

	assert.Equal(t, []string{"a", "b", "c"}, []string{first[0].Opportunity.ID, first[1].Opportunity.ID, first[2].Opportunity.ID})
	for _, r := range first {
		assert.Equal(t, 0, r.Score)
		assert.Equal(t, LabelRecommended, r.Label)
	}
}

func TestRelatedTo_FewerThanLimit(t *testing.T) {
	focal := tagged("f", models.TypeGrant)
	got := RelatedTo(focal, []models.Opportunity{focal, tagged("x", models.TypeGrant)})
	assert.Len(t, got, 1)

	assert.Empty(t, RelatedTo(focal, []models.Opportunity{focal}))
}

func TestRelatedTo_TagsNeedBothSides(t *testing.T) {
	focal := tagged("f", models.TypeJob)
	focal.Tags = nil
	got := RelatedTo(focal, []models.Opportunity{tagged("x", models.TypeGrant, "AI")})
	assert.Equal(t, 0, got[0].Score)
	assert.Equal(t, LabelRecommended, got[0].Label)
}

func TestRelatedTo_CountsCandidateTagDuplicates(t *testing.T) {
	focal := tagged("f", models.TypeJob, "AI")
	got := RelatedTo(focal, []models.Opportunity{tagged("x", models.TypeGrant, "AI", "AI")})
	assert.Equal(t, 30, got[0].Score)
}
