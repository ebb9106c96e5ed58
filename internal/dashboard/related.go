package dashboard

import (
	"sort"

	"github.com/Splendour-K/Opp/internal/models"
)

const (
	LabelSimilarType = "Similar Type"
	LabelRelatedTags = "Related Tags"
	LabelTopMatch    = "Top Match"
	LabelRecommended = "Recommended"

	sameTypePoints  = 20
	sharedTagPoints = 15

	// RelatedLimit is how many related items the detail view shows.
	RelatedLimit = 3
)

type Related struct {
	Opportunity models.Opportunity `json:"opportunity"`
	Score       int                `json:"relationScore"`
	Label       string             `json:"relationshipLabel"`
}

// RelatedTo ranks every opportunity other than focal by how closely it relates
// to focal and returns the best RelatedLimit. Equal scores keep input order.
func RelatedTo(focal models.Opportunity, all []models.Opportunity) []Related {
	scored := make([]Related, 0, len(all))
	for _, o := range all {
		if o.ID == focal.ID {
			continue
		}
		scored = append(scored, scoreRelation(focal, o))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > RelatedLimit {
		scored = scored[:RelatedLimit]
	}
	return scored
}

func scoreRelation(focal, o models.Opportunity) Related {
	score := 0
	var reasons []string

	if o.Type == focal.Type {
		score += sameTypePoints
		reasons = append(reasons, LabelSimilarType)
	}

	if o.Tags != nil && focal.Tags != nil {
		if shared := countShared(o.Tags, focal.Tags); shared > 0 {
			score += shared * sharedTagPoints
			reasons = append(reasons, LabelRelatedTags)
		}
	}

	label := LabelRecommended
	switch {
	case len(reasons) > 1:
		label = LabelTopMatch
	case len(reasons) == 1:
		label = reasons[0]
	}

	return Related{Opportunity: o, Score: score, Label: label}
}

// countShared counts the entries of tags that also appear in focalTags.
func countShared(tags, focalTags []string) int {
	lookup := make(map[string]struct{}, len(focalTags))
	for _, t := range focalTags {
		lookup[t] = struct{}{}
	}
	n := 0
	for _, t := range tags {
		if _, ok := lookup[t]; ok {
			n++
		}
	}
	return n
}
