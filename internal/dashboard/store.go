package dashboard

import (
	"github.com/Splendour-K/Opp/internal/models"
)

// LatestCount is how many records the "latest articles" strip shows.
const LatestCount = 4

// Store holds the canonical opportunity collection. It is not safe for
// concurrent use; the Controller serialises access.
type Store struct {
	items []models.Opportunity
}

func NewStore(records []models.Opportunity) *Store {
	s := &Store{}
	s.ReplaceOrSeed(records)
	return s
}

// ReplaceOrSeed replaces the whole collection with a copy of records.
func (s *Store) ReplaceOrSeed(records []models.Opportunity) {
	s.items = append([]models.Opportunity(nil), records...)
}

// MergeSynced puts newRecords in front of the existing collection and keeps the
// first record seen for every title. A synced record therefore displaces an
// existing record with the same title. Titles compare case-sensitively.
//
// The returned map lists, for each displaced existing record, the id of the
// synced record that replaced it.
func (s *Store) MergeSynced(newRecords []models.Opportunity) map[string]string {
	replaced := map[string]string{}
	if len(newRecords) == 0 {
		return replaced
	}

	combined := make([]models.Opportunity, 0, len(newRecords)+len(s.items))
	combined = append(combined, newRecords...)
	combined = append(combined, s.items...)

	winner := make(map[string]string, len(combined))
	merged := make([]models.Opportunity, 0, len(combined))
	for i, opp := range combined {
		if winnerID, seen := winner[opp.Title]; seen {
			if i >= len(newRecords) && winnerID != opp.ID {
				replaced[opp.ID] = winnerID
			}
			continue
		}
		winner[opp.Title] = opp.ID
		merged = append(merged, opp)
	}

	s.items = merged
	return replaced
}

// All returns a copy of the collection in order.
func (s *Store) All() []models.Opportunity {
	return append([]models.Opportunity(nil), s.items...)
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) Get(id string) (models.Opportunity, bool) {
	for _, opp := range s.items {
		if opp.ID == id {
			return opp, true
		}
	}
	return models.Opportunity{}, false
}

// Latest returns the first n records.
func (s *Store) Latest(n int) []models.Opportunity {
	if n > len(s.items) {
		n = len(s.items)
	}
	if n < 0 {
		n = 0
	}
	return append([]models.Opportunity(nil), s.items[:n]...)
}

// Filter narrows the feed. An empty Type or "All" matches every type; a record
// without a match score counts as 0 against MinScore.
type Filter struct {
	Type     string
	MinScore int
}

const AllTypes = "All"

func (f Filter) Match(opp models.Opportunity) bool {
	if f.Type != "" && f.Type != AllTypes && string(opp.Type) != f.Type {
		return false
	}
	return opp.Score() >= f.MinScore
}

func (s *Store) Filter(f Filter) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(s.items))
	for _, opp := range s.items {
		if f.Match(opp) {
			out = append(out, opp)
		}
	}
	return out
}

// Select returns the records whose id is in ids, in collection order.
func (s *Store) Select(ids IDSet) []models.Opportunity {
	out := make([]models.Opportunity, 0, ids.Len())
	for _, opp := range s.items {
		if ids.Has(opp.ID) {
			out = append(out, opp)
		}
	}
	return out
}
