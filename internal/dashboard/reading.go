package dashboard

import (
	"strings"
)

const (
	wordsPerMinute = 200

	// headerRevealOffset is the scroll offset past which the compact header shows.
	headerRevealOffset = 300
)

// ReadingMinutes estimates reading time at 200 words per minute, rounded up,
// never less than one minute.
func ReadingMinutes(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Paragraphs splits a body on blank lines.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ScrollMetrics is one observation of the detail view's scroll container.
type ScrollMetrics struct {
	ScrollTop    float64 `json:"scrollTop"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
	// EndVisible reports whether the end-of-content sentinel is on screen.
	EndVisible bool `json:"endVisible"`
}

// ReadingState gates the action panel of the detail view: the apply, track and
// save actions unlock once the reader has reached the end of the content, and
// stay unlocked for the rest of the view.
type ReadingState struct {
	Progress      float64 `json:"progress"`
	HeaderVisible bool    `json:"headerVisible"`
	ReadToEnd     bool    `json:"readToEnd"`
}

func (r *ReadingState) Observe(m ScrollMetrics) {
	scrollable := m.ScrollHeight - m.ClientHeight
	if scrollable <= 0 {
		r.Progress = 100
	} else {
		r.Progress = clamp(m.ScrollTop/scrollable*100, 0, 100)
	}
	r.HeaderVisible = m.ScrollTop > headerRevealOffset
	if m.EndVisible {
		r.ReadToEnd = true
	}
}

func (r ReadingState) ActionsUnlocked() bool {
	return r.ReadToEnd
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
