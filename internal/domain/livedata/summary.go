package livedata

import "fmt"

// sliceSize bounds the head/tail slices of a chart summary. The wire fields
// keep their legacy first10/last10 names.
const sliceSize = 100

// ChartSummary is the compact prompt-injectable form of a series: a textual
// summary plus head and tail slices instead of a full dump.
type ChartSummary struct {
	Summary string  `json:"summary"`
	First   []Point `json:"first10"`
	Last    []Point `json:"last10"`
}

// Summarize produces the chart summary for a series (newest-first order is
// preserved in the slices).
func Summarize(points []Point) ChartSummary {
	if len(points) == 0 {
		return ChartSummary{Summary: "No data points in the requested range.", First: []Point{}, Last: []Point{}}
	}

	minVal, maxVal := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < minVal {
			minVal = p.Value
		}
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}

	head := points
	if len(head) > sliceSize {
		head = head[:sliceSize]
	}
	tail := points
	if len(tail) > sliceSize {
		tail = tail[len(tail)-sliceSize:]
	}

	return ChartSummary{
		Summary: fmt.Sprintf("%d data points, min %g, max %g", len(points), minVal, maxVal),
		First:   head,
		Last:    tail,
	}
}
