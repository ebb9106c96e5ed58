package dashboard

import (
	"time"

	"github.com/Splendour-K/Opp/internal/models"
)

// DefaultBio is the profile text used until the user writes their own.
const DefaultBio = "I am a tech entrepreneur interested in decentralized systems and green energy solutions."

func daysFrom(now time.Time, days int) *time.Time {
	t := now.UTC().AddDate(0, 0, days)
	return &t
}

// SeedOpportunities returns the starter feed with deadlines relative to now.
func SeedOpportunities(now time.Time) []models.Opportunity {
	return []models.Opportunity{
		{
			ID:           "1",
			Title:        "Tech Innovation Grant 2024",
			Type:         models.TypeGrant,
			Description:  "Funding for startups focusing on decentralized infrastructure and green computing solutions.",
			Organization: "Global Science Found.",
			Amount:       "$50,000",
			Deadline:     "2 Days Left",
			DeadlineDate: daysFrom(now, 2),
			IsUrgent:     true,
			ImageURL:     "https://images.unsplash.com/photo-1519389950473-47ba0277781c?auto=format&fit=crop&q=80&w=1000",
			MatchScore:   models.IntPtr(98),
			Source: &models.Source{
				Name: "Global Science Foundation",
				URL:  "https://example.com/grants/tech-innovation-2024",
			},
		},
		{
			ID:           "2",
			Title:        "Global Venture Fund",
			Type:         models.TypeInvestment,
			Description:  "Equity-based investment program for early-stage B2B SaaS platforms with proven traction.",
			Organization: "Strategic Equity Partners",
			Amount:       "$250k - $1M",
			ImageURL:     "https://images.unsplash.com/photo-1550751827-4bd374c3f58b?auto=format&fit=crop&q=80&w=1000",
			MatchScore:   models.IntPtr(85),
			Source: &models.Source{
				Name: "Strategic Equity Partners Portal",
				URL:  "https://example.com/investment/global-fund",
			},
		},
		{
			ID:           "3",
			Title:        "Design Leadership Conference",
			Type:         models.TypeConference,
			Description:  "Join 5,000 global designers for a 3-day immersive experience in San Francisco.",
			Organization: "Creative Agency Co.",
			Amount:       "Full Travel Grant",
			Deadline:     "1 Day Left",
			DeadlineDate: daysFrom(now, 1),
			ImageURL:     "https://images.unsplash.com/photo-1451187580459-43490279c0fa?auto=format&fit=crop&q=80&w=1000",
			MatchScore:   models.IntPtr(92),
			Source: &models.Source{
				Name: "DesignLeadership 2024",
				URL:  "https://example.com/conferences/design-leadership",
			},
		},
		{
			ID:           "4",
			Title:        "HealthTech Series A Accelerator",
			Type:         models.TypeAccelerator,
			Description:  "Equity-free funding and 6 months of mentorship for scalable digital health solutions focused on patient care.",
			Organization: "MediGrowth Labs",
			Amount:       "$250k - $500k",
			MatchScore:   models.IntPtr(98),
			Tags:         []string{"Biotech", "Health"},
			Source: &models.Source{
				Name: "MediGrowth Official",
				URL:  "https://example.com/accelerators/healthtech",
			},
		},
	}
}

// SeedDeadlines returns the standalone deadline strip.
func SeedDeadlines(now time.Time) []models.Deadline {
	return []models.Deadline{
		{
			ID:           "d1",
			Title:        "CleanTech Innovation Grant",
			Organization: "Dept. of Energy",
			TimeLeft:     "48h left",
			DeadlineDate: daysFrom(now, 2),
			Progress:     85,
			IsUrgent:     true,
		},
		{
			ID:           "d2",
			Title:        "Global VC Seed Fund 2024",
			Organization: "Vanguard Partners",
			TimeLeft:     "4 days left",
			DeadlineDate: daysFrom(now, 4),
			Progress:     40,
		},
	}
}
