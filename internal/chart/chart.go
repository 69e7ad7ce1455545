// Package chart derives donut-chart segments from a ranked photo list.
package chart

import "picwedding/internal/models"

// Palette is the chart color cycle, matching the app's design.
var Palette = []string{
	"#d4a4b9",
	"#c07696",
	"#ac4873",
	"#5a0332",
	"#3b0221",
	"#1a010f",
	"#0d0007",
}

// Segment is one drawable arc of the donut chart.
type Segment struct {
	Photo      models.Photo `json:"photo"`
	Percentage float64      `json:"percentage"`
	StartAngle float64      `json:"start_angle"`
	EndAngle   float64      `json:"end_angle"`
	Color      string       `json:"color"`
	Top3       bool         `json:"top3"`
}

// Segments maps photos to proportional angular segments via cumulative-angle
// partitioning. It is pure and order-sensitive: callers pre-sort by like count
// descending. A zero like total yields no segments.
func Segments(photos []models.Photo) []Segment {
	total := 0
	for _, p := range photos {
		total += p.Likes
	}
	if total == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(photos))
	currentAngle := 0.0
	for i, p := range photos {
		percentage := float64(p.Likes) / float64(total)
		angle := percentage * 360
		segments = append(segments, Segment{
			Photo:      p,
			Percentage: percentage,
			StartAngle: currentAngle,
			EndAngle:   currentAngle + angle,
			Color:      Palette[i%len(Palette)],
			Top3:       i < 3,
		})
		currentAngle += angle
	}
	return segments
}
