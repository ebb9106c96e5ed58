package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Splendour-K/Opp/internal/models"
)

const (
	wpPerPage          = 20
	wpMaxPages         = 5
	wpDefaultMaxPosts  = 10
	wpDescriptionLimit = 280
)

// WordPressProvider reads recent posts from a WordPress site's REST API.
type WordPressProvider struct {
	Fetcher Fetcher
	Source  SourceConfig
}

type wpPost struct {
	ID    int    `json:"id"`
	Date  string `json:"date"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
	Excerpt struct {
		Rendered string `json:"rendered"`
	} `json:"excerpt"`
	JetpackFeaturedMediaURL string `json:"jetpack_featured_media_url"`
}

// postsURL derives the posts endpoint from the configured base URL.
func postsURL(base string) (string, error) {
	if strings.Contains(base, "wp-json") {
		return strings.TrimRight(base, "/"), nil
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q", base)
	}
	return strings.TrimRight(u.String(), "/") + "/wp-json/wp/v2/posts", nil
}

func (p *WordPressProvider) Discover(ctx context.Context) (ProviderResult, error) {
	apiURL, err := postsURL(p.Source.BaseURL)
	if err != nil {
		return ProviderResult{}, err
	}

	maxPosts := p.Source.MaxPosts
	if maxPosts <= 0 {
		maxPosts = wpDefaultMaxPosts
	}
	perPage := min(wpPerPage, maxPosts)

	var result ProviderResult
	for page := 1; page <= wpMaxPages && len(result.Candidates) < maxPosts; page++ {
		posts, err := p.fetchPage(ctx, apiURL, page, perPage)
		if err != nil {
			// WordPress answers 400 once the page number runs past the last page.
			var status *ErrStatus
			if page > 1 && errors.As(err, &status) && (status.Code == http.StatusBadRequest || status.Code == http.StatusNotFound) {
				break
			}
			if len(result.Candidates) > 0 {
				return result, fmt.Errorf("wordpress %s page %d: %w", p.Source.ID, page, err)
			}
			return result, fmt.Errorf("wordpress %s: %w", p.Source.ID, err)
		}
		if len(posts) == 0 {
			break
		}

		for _, post := range posts {
			if len(result.Candidates) == maxPosts {
				break
			}
			result.Candidates = append(result.Candidates, p.candidate(post))
		}
	}
	return result, nil
}

func (p *WordPressProvider) fetchPage(ctx context.Context, apiURL string, page, perPage int) ([]wpPost, error) {
	pagedURL := fmt.Sprintf("%s?page=%d&per_page=%d", apiURL, page, perPage)

	doc, err := p.Fetcher.Fetch(ctx, pagedURL)
	if err != nil {
		return nil, err
	}
	bodyBytes, err := io.ReadAll(doc.Body)
	doc.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var posts []wpPost
	if err := json.Unmarshal(bytes.TrimSpace(bodyBytes), &posts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal posts: %w", err)
	}
	return posts, nil
}

func (p *WordPressProvider) candidate(post wpPost) RawCandidate {
	title := HTMLToText(post.Title.Rendered)
	description := HTMLToText(post.Excerpt.Rendered)
	if description == "" {
		description = TruncateText(HTMLToText(post.Content.Rendered), wpDescriptionLimit)
	}

	return RawCandidate{
		Title:        title,
		Organization: p.Source.Name,
		Type:         string(inferType(title)),
		Description:  description,
		Content:      post.Content.Rendered,
		ImageURL:     post.JetpackFeaturedMediaURL,
		SourceName:   p.Source.Name,
		SourceURL:    post.Link,
	}
}

var typeKeywords = []struct {
	typ      models.OpportunityType
	keywords []string
}{
	{models.TypeScholarship, []string{"scholarship", "bursary"}},
	{models.TypeFellowship, []string{"fellowship", "fellows"}},
	{models.TypeInternship, []string{"internship", "intern "}},
	{models.TypeConference, []string{"conference", "summit", "forum"}},
	{models.TypeAccelerator, []string{"accelerator", "incubator", "bootcamp"}},
	{models.TypeInvestment, []string{"investment", "venture", "equity", "seed fund"}},
	{models.TypeGrant, []string{"grant", "funding", "fund", "prize", "award"}},
	{models.TypeJob, []string{"job", "vacancy", "hiring", "position"}},
}

// inferType guesses the opportunity type from a post title.
func inferType(title string) models.OpportunityType {
	lower := strings.ToLower(title) + " "
	for _, tk := range typeKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(lower, kw) {
				return tk.typ
			}
		}
	}
	return models.TypeGrowth
}
