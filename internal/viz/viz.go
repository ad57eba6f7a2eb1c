// Package viz builds chart payloads from scored properties. The service does
// not draw anything itself; each builder returns a JSON-serializable figure
// spec (traces plus layout) that any plotting front-end can render directly.
// Category scores come from the aggregator's breakdown and metric values from
// the serialized property document, never re-derived here.
package viz

import (
	"fmt"
	"sort"
	"strings"
)

// colorScheme cycles across traces so multi-property charts stay readable.
var colorScheme = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3",
	"#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd",
}

// Trace is one data series inside a figure.
type Trace struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	X          []string    `json:"x,omitempty"`
	Y          []float64   `json:"y,omitempty"`
	R          []float64   `json:"r,omitempty"`
	Theta      []string    `json:"theta,omitempty"`
	Z          [][]float64 `json:"z,omitempty"`
	Text       []string    `json:"text,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Fill       string      `json:"fill,omitempty"`
	Color      string      `json:"color,omitempty"`
	Colors     []string    `json:"colors,omitempty"`
	Colorscale string      `json:"colorscale,omitempty"`
}

// Layout carries presentation hints for the front-end.
type Layout struct {
	Title      string   `json:"title"`
	Height     int      `json:"height,omitempty"`
	XAxisTitle string   `json:"xaxis_title,omitempty"`
	YAxisTitle string   `json:"yaxis_title,omitempty"`
	RadialMax  float64  `json:"radial_max,omitempty"`
	Dimensions []string `json:"dimensions,omitempty"`
	ShowLegend bool     `json:"show_legend"`
}

// Figure is a complete chart payload.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// MetricValue resolves a dotted path like "location.walkability_score"
// against a serialized property document. Missing or non-numeric leaves
// resolve to zero, matching how charts treat absent data.
func MetricValue(doc map[string]any, path string) float64 {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return 0
		}
		current = m[part]
	}
	if v, ok := current.(float64); ok {
		return v
	}
	return 0
}

func propertyLabel(doc map[string]any, index int) string {
	if id, ok := doc["id"].(string); ok && id != "" {
		return "Property " + id
	}
	return fmt.Sprintf("Property %d", index+1)
}

// RadarChart compares properties across the given metric paths on a 0-100
// polar axis, one filled trace per property.
func RadarChart(docs []map[string]any, metrics []string) Figure {
	traces := make([]Trace, 0, len(docs))
	for i, doc := range docs {
		values := make([]float64, len(metrics))
		for j, metric := range metrics {
			values[j] = MetricValue(doc, metric)
		}
		traces = append(traces, Trace{
			Type:  "scatterpolar",
			Name:  propertyLabel(doc, i),
			R:     values,
			Theta: metrics,
			Fill:  "toself",
			Color: colorScheme[i%len(colorScheme)],
		})
	}
	return Figure{
		Data: traces,
		Layout: Layout{
			Title:      "Property Comparison Radar Chart",
			Height:     600,
			RadialMax:  100,
			ShowLegend: true,
		},
	}
}

// Heatmap renders one property's category scores as a single-row heatmap.
// The breakdown comes straight from the aggregator.
func Heatmap(breakdown map[string]float64) Figure {
	categories := make([]string, 0, len(breakdown))
	for name := range breakdown {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	scores := make([]float64, len(categories))
	labels := make([]string, len(categories))
	for i, name := range categories {
		scores[i] = breakdown[name]
		labels[i] = fmt.Sprintf("%.1f%%", breakdown[name])
	}

	return Figure{
		Data: []Trace{{
			Type:       "heatmap",
			X:          categories,
			Z:          [][]float64{scores},
			Text:       labels,
			Colorscale: "RdYlGn",
		}},
		Layout: Layout{
			Title:      "Property Score Heatmap",
			Height:     300,
			XAxisTitle: "Categories",
			YAxisTitle: "Property",
		},
	}
}

// BarComparison charts one metric across properties.
func BarComparison(docs []map[string]any, metric, title string) Figure {
	ids := make([]string, len(docs))
	values := make([]float64, len(docs))
	labels := make([]string, len(docs))
	colors := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = propertyLabel(doc, i)
		values[i] = MetricValue(doc, metric)
		labels[i] = fmt.Sprintf("%.1f", values[i])
		colors[i] = colorScheme[i%len(colorScheme)]
	}

	metricLabel := titleCase(metric)
	if title == "" {
		title = metricLabel + " Comparison"
	}
	return Figure{
		Data: []Trace{{
			Type:   "bar",
			X:      ids,
			Y:      values,
			Text:   labels,
			Colors: colors,
		}},
		Layout: Layout{
			Title:      title,
			Height:     400,
			XAxisTitle: "Properties",
			YAxisTitle: metricLabel,
		},
	}
}

// ScatterMatrix compares several metrics pairwise across properties. Each
// trace holds one metric's values in property order; the front-end builds
// the matrix from the listed dimensions.
func ScatterMatrix(docs []map[string]any, metrics []string) Figure {
	traces := make([]Trace, 0, len(metrics))
	for _, metric := range metrics {
		values := make([]float64, len(docs))
		for i, doc := range docs {
			values[i] = MetricValue(doc, metric)
		}
		traces = append(traces, Trace{
			Type: "splom_dimension",
			Name: metric,
			Y:    values,
		})
	}
	return Figure{
		Data: traces,
		Layout: Layout{
			Title:      "Property Metrics Scatter Matrix",
			Height:     800,
			Dimensions: metrics,
		},
	}
}

// TimelineEvent is one dated point on a property's history.
type TimelineEvent struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Timeline charts a property's history. Without explicit events it falls
// back to the listing and last-update dates.
func Timeline(doc map[string]any, events []TimelineEvent) Figure {
	if len(events) == 0 {
		if created, ok := doc["created_at"].(string); ok && created != "" {
			events = append(events, TimelineEvent{Date: created, Description: "Property Listed"})
		}
		if updated, ok := doc["updated_at"].(string); ok && updated != "" {
			events = append(events, TimelineEvent{Date: updated, Description: "Last Updated"})
		}
	}

	dates := make([]string, len(events))
	descriptions := make([]string, len(events))
	ones := make([]float64, len(events))
	for i, ev := range events {
		dates[i] = ev.Date
		descriptions[i] = ev.Description
		ones[i] = 1
	}

	return Figure{
		Data: []Trace{{
			Type: "scatter",
			Mode: "markers+text",
			X:    dates,
			Y:    ones,
			Text: descriptions,
		}},
		Layout: Layout{
			Title:  "Property Timeline",
			Height: 200,
		},
	}
}

func titleCase(metric string) string {
	parts := strings.FieldsFunc(metric, func(r rune) bool {
		return r == '.' || r == '_'
	})
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
