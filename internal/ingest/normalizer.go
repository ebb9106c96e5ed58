package ingest

import (
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Splendour-K/Opp/internal/models"
)

const (
	defaultAmount     = "See details"
	defaultSourceName = "External Hub"
	defaultSourceURL  = "#"

	placeholderScoreBase  = 60
	placeholderScoreRange = 30

	blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote, tr, section, article"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// sanitizeHTML uses bluemonday to strip unsafe tags and attributes from HTML.
func sanitizeHTML(s string) string {
	if s == "" {
		return ""
	}
	p := bluemonday.UGCPolicy()
	return p.Sanitize(s)
}

// flatten sanitizes html and returns its text with a blank line after every
// block element and in place of every <br>.
func flatten(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizeHTML(html)))
	if err != nil {
		return html, false
	}
	doc.Find("br").ReplaceWithHtml("\n\n")
	doc.Find(blockElements).AppendHtml("\n\n")
	return strings.ReplaceAll(doc.Text(), "\r\n", "\n"), true
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	text, _ := flatten(html)
	return normalizeSpace(text)
}

// HTMLToParagraphs flattens HTML or plain text to paragraphs separated by a
// blank line. Block elements and <br> end a paragraph.
func HTMLToParagraphs(html string) string {
	text, ok := flatten(html)
	if !ok {
		return normalizeSpace(text)
	}

	var paras []string
	for _, part := range blankLine.Split(text, -1) {
		if p := normalizeSpace(part); p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}

// Normalizer turns raw candidates into canonical opportunities.
type Normalizer struct {
	Now  func() time.Time
	IntN func(n int) int

	validate *validator.Validate
}

func NewNormalizer(now func() time.Time, intN func(n int) int) *Normalizer {
	if now == nil {
		now = time.Now
	}
	if intN == nil {
		intN = rand.IntN
	}
	return &Normalizer{Now: now, IntN: intN, validate: validator.New()}
}

// Normalize converts candidates in order. Index i of the input becomes the
// suffix of the synthetic id. Rejected candidates are reported, not returned.
func (n *Normalizer) Normalize(candidates []RawCandidate) ([]models.Opportunity, []error) {
	stamp := n.Now().UnixMilli()

	out := make([]models.Opportunity, 0, len(candidates))
	var rejected []error
	for i, raw := range candidates {
		opp, err := n.FromRaw(raw, fmt.Sprintf("ext-%d-%d", stamp, i))
		if err != nil {
			rejected = append(rejected, fmt.Errorf("candidate %d: %w", i, err))
			continue
		}
		out = append(out, opp)
	}
	return out, rejected
}

// FromRaw validates one candidate and applies defaults.
func (n *Normalizer) FromRaw(raw RawCandidate, id string) (models.Opportunity, error) {
	clean := RawCandidate{
		Title:        HTMLToText(raw.Title),
		Organization: HTMLToText(raw.Organization),
		Type:         normalizeSpace(raw.Type),
		Description:  HTMLToText(raw.Description),
		Content:      HTMLToParagraphs(raw.Content),
		Amount:       HTMLToText(raw.Amount),
		Deadline:     HTMLToText(raw.Deadline),
		DeadlineDate: strings.TrimSpace(raw.DeadlineDate),
		ImageURL:     strings.TrimSpace(raw.ImageURL),
		SourceName:   HTMLToText(raw.SourceName),
		SourceURL:    strings.TrimSpace(raw.SourceURL),
		MatchScore:   raw.MatchScore,
		IsUrgent:     raw.IsUrgent,
	}
	for _, tag := range raw.Tags {
		clean.Tags = appendUnique(clean.Tags, HTMLToText(tag))
	}

	if err := n.validate.Struct(clean); err != nil {
		return models.Opportunity{}, fmt.Errorf("invalid candidate %q: %w", clean.Title, err)
	}

	oppType, ok := models.ParseOpportunityType(clean.Type)
	if !ok {
		oppType = models.TypeGrowth
	}

	opp := models.Opportunity{
		ID:           id,
		Title:        clean.Title,
		Type:         oppType,
		Description:  clean.Description,
		Content:      clean.Content,
		Organization: clean.Organization,
		Amount:       clean.Amount,
		Deadline:     clean.Deadline,
		DeadlineDate: parseISODate(clean.DeadlineDate),
		Tags:         clean.Tags,
		IsUrgent:     clean.IsUrgent,
		MatchScore:   models.IntPtr(n.matchScore(clean.MatchScore)),
		Source: &models.Source{
			Name: clean.SourceName,
			URL:  clean.SourceURL,
		},
	}

	if opp.Amount == "" {
		opp.Amount = defaultAmount
	}
	if opp.Source.Name == "" {
		opp.Source.Name = defaultSourceName
	}
	if !n.isWebURL(opp.Source.URL) {
		opp.Source.URL = defaultSourceURL
	}
	if n.isWebURL(clean.ImageURL) {
		opp.ImageURL = clean.ImageURL
	}
	return opp, nil
}

// matchScore keeps a provider score in 0..100 and otherwise draws a
// placeholder in 60..89.
func (n *Normalizer) matchScore(score *float64) int {
	if score != nil && !math.IsNaN(*score) && *score >= 0 && *score <= 100 {
		return int(math.Round(*score))
	}
	return placeholderScoreBase + n.IntN(placeholderScoreRange)
}

func (n *Normalizer) isWebURL(raw string) bool {
	if raw == "" || n.validate.Var(raw, "url") != nil {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

var isoLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseISODate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
