package resource

import (
	"strings"
	"time"
)

// SearchMode selects the resource discovery strategy
type SearchMode string

const (
	ModeLocalOnly  SearchMode = "local_only"
	ModeWebOnly    SearchMode = "web_only"
	ModeHybrid     SearchMode = "hybrid"
	ModePerplexica SearchMode = "perplexica"
)

// IsValid reports whether the mode is one of the supported strategies
func (m SearchMode) IsValid() bool {
	switch m {
	case ModeLocalOnly, ModeWebOnly, ModeHybrid, ModePerplexica:
		return true
	}
	return false
}

// OrDefault falls back to the perplexica strategy
func (m SearchMode) OrDefault() SearchMode {
	if m.IsValid() {
		return m
	}
	return ModePerplexica
}

// Source tags where a resource came from
type Source string

const (
	SourceCatalog    Source = "catalog"
	SourceSearXNG    Source = "searxng"
	SourcePerplexica Source = "perplexica"
)

// LearningResource is one course, tutorial or certification suggested
// for closing a skill gap
type LearningResource struct {
	ID          string     `json:"id" db:"id" mapstructure:"id"`
	Title       string     `json:"title" db:"title" mapstructure:"title"`
	URL         string     `json:"url" db:"url" mapstructure:"url"`
	Description string     `json:"description" db:"description" mapstructure:"description"`
	Provider    string     `json:"provider" db:"provider" mapstructure:"provider"`
	Source      Source     `json:"source" db:"-" mapstructure:"source"`
	Engine      string     `json:"engine,omitempty" db:"-" mapstructure:"engine"`
	Score       float64    `json:"score" db:"-" mapstructure:"score"`
	Credibility int        `json:"credibility" db:"-" mapstructure:"credibility"`
	Skill       string     `json:"skill,omitempty" db:"skill" mapstructure:"skill"`
	Level       string     `json:"level,omitempty" db:"level" mapstructure:"level"`
	AISummary   string     `json:"ai_summary,omitempty" db:"-" mapstructure:"ai_summary"`
	CreatedAt   *time.Time `json:"created_at,omitempty" db:"created_at" mapstructure:"created_at"`
}

// platformWeights is the educational-domain allow list. Results whose
// host matches no entry are discarded; the weight dominates ranking.
var platformWeights = map[string]int{
	"coursera.org":                  5,
	"edx.org":                       5,
	"aws.amazon.com":                5,
	"deeplearning.ai":               5,
	"online.stanford.edu":           5,
	"online.hbs.edu":                5,
	"training.linuxfoundation.org":  5,
	"udacity.com":                   4,
	"pluralsight.com":               4,
	"freecodecamp.org":              4,
	"grow.google":                   4,
	"ocw.mit.edu":                   4,
	"corporatefinanceinstitute.com": 4,
	"khanacademy.org":               3,
	"udemy.com":                     3,
	"futurelearn.com":               3,
	"linkedin.com":                  2,
	"openclassrooms.com":            2,
	"youtube.com":                   2,
	"medium.com":                    1,
}

// providerNames maps a matched domain to its display name
var providerNames = map[string]string{
	"coursera.org":                  "Coursera",
	"edx.org":                       "edX",
	"aws.amazon.com":                "AWS Training",
	"deeplearning.ai":               "DeepLearning.AI",
	"online.stanford.edu":           "Stanford Online",
	"online.hbs.edu":                "Harvard Business School Online",
	"training.linuxfoundation.org":  "Linux Foundation",
	"udacity.com":                   "Udacity",
	"pluralsight.com":               "Pluralsight",
	"freecodecamp.org":              "freeCodeCamp",
	"grow.google":                   "Google Career Certificates",
	"ocw.mit.edu":                   "MIT OpenCourseWare",
	"corporatefinanceinstitute.com": "CFI",
	"khanacademy.org":               "Khan Academy",
	"udemy.com":                     "Udemy",
	"futurelearn.com":               "FutureLearn",
	"linkedin.com":                  "LinkedIn Learning",
	"openclassrooms.com":            "OpenClassrooms",
	"youtube.com":                   "YouTube",
	"medium.com":                    "Medium",
}

// CredibilityWeight returns the allow-list weight for a URL, or 0 when
// the host is not an approved learning platform
func CredibilityWeight(rawURL string) int {
	lower := strings.ToLower(rawURL)
	for domain, weight := range platformWeights {
		if strings.Contains(lower, domain) {
			return weight
		}
	}
	return 0
}

// ProviderFor extracts the display name of the platform hosting a URL
func ProviderFor(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for domain, name := range providerNames {
		if strings.Contains(lower, domain) {
			return name
		}
	}
	return "Web"
}
