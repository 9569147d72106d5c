package presentation

import (
	"fmt"

	"resume-review/internal/feedback"
)

// Report is the view model for one reviewed resume.
type Report struct {
	Summary Summary   `json:"summary"`
	ATS     ATSView   `json:"ats"`
	Details []Section `json:"details"`
}

// Summary holds the gauge plus one badge per category.
type Summary struct {
	Gauge      Gauge          `json:"gauge"`
	Categories []CategoryView `json:"categories"`
}

// CategoryView is one summary row.
type CategoryView struct {
	Title string `json:"title"`
	Score int    `json:"score"`
	Badge Badge  `json:"badge"`
}

// ATSView is the ATS section with its suggestions.
type ATSView struct {
	Banner      Banner    `json:"banner"`
	Suggestions []TipView `json:"suggestions"`
}

// Section is one expandable detail block.
type Section struct {
	Title string    `json:"title"`
	Badge Badge     `json:"badge"`
	Tips  []TipView `json:"tips"`
}

// TipView is a tip with its display decoration.
type TipView struct {
	Type        string `json:"type"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation,omitempty"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// BuildReport derives the full view model from fb. It has no side effects.
func BuildReport(fb feedback.Feedback) Report {
	cats := []struct {
		title string
		cat   feedback.Category
	}{
		{"Tone & Style", fb.ToneAndStyle},
		{"Content", fb.Content},
		{"Structure", fb.Structure},
		{"Skills", fb.Skills},
	}

	r := Report{
		Summary: Summary{Gauge: OverallGauge(fb.OverallScore)},
		ATS: ATSView{
			Banner:      ATSBanner(fb.ATS.Score),
			Suggestions: tipViews(fb.ATS.Tips),
		},
	}
	for _, c := range cats {
		r.Summary.Categories = append(r.Summary.Categories, CategoryView{
			Title: c.title,
			Score: c.cat.Score,
			Badge: CategoryBadge(c.cat.Score),
		})
		r.Details = append(r.Details, Section{
			Title: c.title,
			Badge: DetailBadge(c.cat.Score),
			Tips:  tipViews(c.cat.Tips),
		})
	}
	return r
}

func tipViews(tips []feedback.Tip) []TipView {
	out := make([]TipView, 0, len(tips))
	for _, t := range tips {
		v := TipView{Type: t.Type, Tip: t.Tip, Explanation: t.Explanation, Icon: "alert-triangle", Color: "yellow"}
		if t.Type == feedback.TipGood {
			v.Icon, v.Color = "check", "green"
		}
		out = append(out, v)
	}
	return out
}

func scoreLabel(score int) string {
	return fmt.Sprintf("%d/100", score)
}
