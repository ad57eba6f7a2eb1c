package bot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/righthome-ai/property-analyzer/internal/property"
	"github.com/righthome-ai/property-analyzer/internal/scoring"
)

// analysisPrompt builds the text-generation prompt for one property. The
// property is serialized in full so the model sees every field, and the
// numbered sections steer the output toward a structured review.
func analysisPrompt(p *property.Property, prefs scoring.Weights) string {
	details, err := json.Marshal(p.Document())
	if err != nil {
		details = []byte(fmt.Sprintf("{%q: %q}", "id", p.ID))
	}

	preferences := "default weighting"
	if len(prefs) > 0 {
		if raw, err := json.Marshal(prefs); err == nil {
			preferences = string(raw)
		}
	}

	var b strings.Builder
	b.WriteString("Task: Analyze a property based on user preferences and provide a detailed recommendation.\n\n")
	fmt.Fprintf(&b, "Property Details: %s\n", details)
	fmt.Fprintf(&b, "User Preferences: %s\n\n", preferences)
	b.WriteString("Please provide a comprehensive analysis covering:\n")
	b.WriteString("1. Location & accessibility\n")
	b.WriteString("2. Market dynamics\n")
	b.WriteString("3. Property features\n")
	b.WriteString("4. Amenities & facilities\n")
	b.WriteString("5. Environmental factors\n")
	b.WriteString("6. Financial aspects\n")
	b.WriteString("7. Developer reputation\n")
	b.WriteString("8. Technology features\n")
	b.WriteString("9. Risk factors\n")
	b.WriteString("10. Economic indicators\n\n")
	b.WriteString("End with a clear recommendation and an overall score out of 100.\n")
	b.WriteString("Keep the response concise but informative.")
	return b.String()
}

// templateAnalysis renders a deterministic summary from the computed score
// when no language model is available. The strongest and weakest categories
// come straight from the breakdown, so the text always agrees with the
// numbers.
func templateAnalysis(res scoring.ScoreResult) string {
	type entry struct {
		name  string
		value float64
	}
	entries := make([]entry, 0, len(res.Breakdown))
	for name, value := range res.Breakdown {
		entries = append(entries, entry{name, value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].name < entries[j].name
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Overall score %.2f/100 (%s).", res.Score, res.Recommendation)
	if len(entries) > 0 {
		best := entries[0]
		worst := entries[len(entries)-1]
		fmt.Fprintf(&b, " Strongest category: %s (%.1f).", best.name, best.value)
		if worst.name != best.name {
			fmt.Fprintf(&b, " Weakest category: %s (%.1f).", worst.name, worst.value)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, " No data for: %s.", strings.Join(res.Skipped, ", "))
	}
	return b.String()
}
