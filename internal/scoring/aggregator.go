// Package scoring combines per-category property metrics and user-supplied
// importance weights into an overall 0-100 score and a recommendation label.
// All operations are pure functions; they are safe to call concurrently.
package scoring

import (
	"errors"
	"fmt"
	"maps"
	"sort"
)

var (
	// ErrInvalidRecord is returned when a record has no populated categories.
	ErrInvalidRecord = errors.New("record has no populated categories")
	// ErrInvalidWeights is returned when any weight is negative.
	ErrInvalidWeights = errors.New("weights must be non-negative")
	// ErrInsufficientInput is returned when a comparison is requested with
	// fewer than two records.
	ErrInsufficientInput = errors.New("comparison requires at least two records")
)

// neutralWeight applies to categories the caller did not weight explicitly.
const neutralWeight = 1.0

type band struct {
	min   float64
	label string
}

// recommendationBands map score ranges to labels. Bounds are inclusive on the
// lower end; the highest matching band wins.
var recommendationBands = []band{
	{80, "Highly Recommended"},
	{60, "Recommended"},
	{40, "Consider with Caution"},
	{0, "Not Recommended"},
}

// Recommendation returns the label for an overall score. It is a
// non-decreasing function of the score.
func Recommendation(score float64) string {
	for _, b := range recommendationBands {
		if score >= b.min {
			return b.label
		}
	}
	return recommendationBands[len(recommendationBands)-1].label
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

// categoryMean averages a category's metrics, clamping each to [0, 100].
// The mean of clamped values is itself within [0, 100].
func categoryMean(metrics map[string]float64) float64 {
	if len(metrics) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range metrics {
		sum += clamp(v, 0, 100)
	}
	return sum / float64(len(metrics))
}

// Score turns a record and weights into a ScoreResult. The overall score is
// the weighted mean of per-category means, with weights re-normalized over
// the categories present in the record. Categories that were weighted but
// absent are reported in Skipped. The Analysis field is left empty; filling
// it belongs to the recommendation collaborator.
func Score(r Record, w Weights) (ScoreResult, error) {
	if err := validateWeights(w); err != nil {
		return ScoreResult{}, err
	}

	populated := make([]string, 0, len(r.Categories))
	for name, metrics := range r.Categories {
		if len(metrics) > 0 {
			populated = append(populated, name)
		}
	}
	if len(populated) == 0 {
		return ScoreResult{}, fmt.Errorf("property %q: %w", r.PropertyID, ErrInvalidRecord)
	}
	sort.Strings(populated)

	breakdown := make(map[string]float64, len(populated))
	contributors := make([]Contributor, 0, len(populated)*2)
	for _, name := range populated {
		breakdown[name] = categoryMean(r.Categories[name])

		metricNames := make([]string, 0, len(r.Categories[name]))
		for m := range r.Categories[name] {
			metricNames = append(metricNames, m)
		}
		sort.Strings(metricNames)
		for _, m := range metricNames {
			contributors = append(contributors, Contributor{
				Name:  name + "." + m,
				Value: clamp(r.Categories[name][m], 0, 100),
			})
		}
	}

	weightSum := 0.0
	for _, name := range populated {
		weightSum += weightFor(w, name)
	}

	overall := 0.0
	if weightSum > 0 {
		for _, name := range populated {
			overall += weightFor(w, name) / weightSum * breakdown[name]
		}
	} else {
		// Every present category was explicitly zero-weighted; fall back
		// to a plain mean so the result still honors the score invariant.
		for _, name := range populated {
			overall += breakdown[name]
		}
		overall /= float64(len(populated))
	}
	overall = clamp(overall, 0, 100)

	return ScoreResult{
		Score:          overall,
		Recommendation: Recommendation(overall),
		Breakdown:      breakdown,
		Contributors:   contributors,
		Skipped:        skippedCategories(r, w),
		Details: Details{
			PropertyID: r.PropertyID,
			Location:   copyMetrics(r.Categories["location"]),
			Features:   copyMetrics(r.Categories["features"]),
		},
	}, nil
}

// Compare scores each record independently with the same weights and ranks
// them. Results are ordered by score descending; equal scores keep their
// input order, so the best match on a tie is the earliest record supplied.
func Compare(records []Record, w Weights) (Comparison, error) {
	if len(records) < 2 {
		return Comparison{}, fmt.Errorf("got %d records: %w", len(records), ErrInsufficientInput)
	}

	results := make([]ScoreResult, 0, len(records))
	for _, r := range records {
		res, err := Score(r, w)
		if err != nil {
			return Comparison{}, err
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return Comparison{
		Results:         results,
		BestMatch:       results[0],
		ScoreDifference: results[0].Score - results[len(results)-1].Score,
		Summary:         fmt.Sprintf("Analyzed %d properties based on your preferences.", len(results)),
	}, nil
}

func validateWeights(w Weights) error {
	for name, weight := range w {
		if weight < 0 {
			return fmt.Errorf("category %q has weight %v: %w", name, weight, ErrInvalidWeights)
		}
	}
	return nil
}

// weightFor resolves a category's effective weight: explicit value if the
// caller set one, neutral otherwise. An entirely empty map means uniform.
func weightFor(w Weights, category string) float64 {
	if len(w) == 0 {
		return neutralWeight
	}
	if weight, ok := w[category]; ok {
		return weight
	}
	return neutralWeight
}

func skippedCategories(r Record, w Weights) []string {
	var skipped []string
	for name, weight := range w {
		if weight <= 0 {
			continue
		}
		if len(r.Categories[name]) == 0 {
			skipped = append(skipped, name)
		}
	}
	sort.Strings(skipped)
	return skipped
}

func copyMetrics(m map[string]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	maps.Copy(out, m)
	return out
}
