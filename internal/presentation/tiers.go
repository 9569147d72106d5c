// Package presentation maps feedback scores to display tiers and builds the
// report view model. Every threshold used for display lives here.
package presentation

// Tier is the display bucket for a score.
type Tier string

const (
	TierGood Tier = "good"
	TierOK   Tier = "ok"
	TierPoor Tier = "poor"
)

// Each context keeps its own cutoffs. A score must be strictly greater than
// a cutoff to reach the tier above it.
const (
	atsGoodAbove = 69
	atsOKAbove   = 49

	categoryGoodAbove = 70
	categoryOKAbove   = 49

	detailGoodAbove = 69
	detailOKAbove   = 39

	gaugeGoodAbove = 70
	gaugeOKAbove   = 49
)

func tier(score, goodAbove, okAbove int) Tier {
	switch {
	case score > goodAbove:
		return TierGood
	case score > okAbove:
		return TierOK
	default:
		return TierPoor
	}
}

// ATSTier is the tier of the ATS banner.
func ATSTier(score int) Tier { return tier(score, atsGoodAbove, atsOKAbove) }

// CategoryTier is the tier of a summary category badge.
func CategoryTier(score int) Tier { return tier(score, categoryGoodAbove, categoryOKAbove) }

// DetailTier is the tier of a detail section badge.
func DetailTier(score int) Tier { return tier(score, detailGoodAbove, detailOKAbove) }

// GaugeTier is the tier of the overall score gauge.
func GaugeTier(score int) Tier { return tier(score, gaugeGoodAbove, gaugeOKAbove) }

// Color returns the palette name for a tier.
func (t Tier) Color() string {
	switch t {
	case TierGood:
		return "green"
	case TierOK:
		return "yellow"
	default:
		return "red"
	}
}

// Banner is the headline block of the ATS section.
type Banner struct {
	Score    int    `json:"score"`
	Tier     Tier   `json:"tier"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Subtitle string `json:"subtitle"`
}

// ATSBanner returns the ATS headline for score.
func ATSBanner(score int) Banner {
	t := ATSTier(score)
	b := Banner{Score: score, Tier: t, Color: t.Color()}
	switch t {
	case TierGood:
		b.Icon, b.Subtitle = "trophy", "Great Job!"
	case TierOK:
		b.Icon, b.Subtitle = "trending-up", "Good Start"
	default:
		b.Icon, b.Subtitle = "alert-circle", "Needs Improvement"
	}
	return b
}

// Badge is a small labeled score marker.
type Badge struct {
	Score int    `json:"score"`
	Tier  Tier   `json:"tier"`
	Color string `json:"color"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// CategoryBadge returns the summary badge for a category score.
func CategoryBadge(score int) Badge {
	t := CategoryTier(score)
	b := Badge{Score: score, Tier: t, Color: t.Color()}
	switch t {
	case TierGood:
		b.Label = "Strong"
	case TierOK:
		b.Label = "Good Start"
	default:
		b.Label = "Needs Work"
	}
	return b
}

// DetailBadge returns the "<score>/100" badge shown on detail sections. Only
// the good tier gets a check icon.
func DetailBadge(score int) Badge {
	t := DetailTier(score)
	b := Badge{Score: score, Tier: t, Color: t.Color(), Label: scoreLabel(score), Icon: "alert-triangle"}
	if t == TierGood {
		b.Icon = "check"
	}
	return b
}

// Gauge is the overall score dial.
type Gauge struct {
	Score   int     `json:"score"`
	Percent float64 `json:"percent"`
	Tier    Tier    `json:"tier"`
	Color   string  `json:"color"`
}

// OverallGauge returns the dial for the overall score, clamped to [0,100].
func OverallGauge(score int) Gauge {
	t := GaugeTier(score)
	pct := float64(score)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return Gauge{Score: score, Percent: pct, Tier: t, Color: t.Color()}
}
