// Package intent extracts structured decisions from free-text user turns:
// does the operator want a time-series chart, an alert listing, or a plain
// conversational answer. Each decision is one single-shot structured-output
// chat completion; ambiguity resolves to "no intent" so a false positive
// never routes the user away from conversational help.
package intent

import "time"

// Window is a relative time window extracted from phrases like "last 3 days".
type Window struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"` // m | h | d | w
}

// Duration converts the window to a time.Duration. Returns false for
// unknown units or non-positive values.
func (w Window) Duration() (time.Duration, bool) {
	if w.Value <= 0 {
		return 0, false
	}
	switch w.Unit {
	case "m":
		return time.Duration(w.Value) * time.Minute, true
	case "h":
		return time.Duration(w.Value) * time.Hour, true
	case "d":
		return time.Duration(w.Value) * 24 * time.Hour, true
	case "w":
		return time.Duration(w.Value) * 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// ChartIntent is the structured result of chart-intent classification.
// AssetURN is copied verbatim from the user's text, never invented.
type ChartIntent struct {
	WantsChart bool    `json:"wants_chart"`
	AssetURN   string  `json:"asset_urn"`
	Metric     string  `json:"metric"`
	Last       *Window `json:"last,omitempty"`
	From       string  `json:"from,omitempty"` // ISO-8601
	To         string  `json:"to,omitempty"`   // ISO-8601
}

// ResolveRange resolves the intent's time bounds to absolute values.
// Explicit from/to bounds win; otherwise a relative window is anchored at
// now. Returns ok=false when no resolvable range was extracted.
func (in ChartIntent) ResolveRange(now time.Time) (from, to time.Time, ok bool) {
	if in.From != "" && in.To != "" {
		f, errF := time.Parse(time.RFC3339, in.From)
		t, errT := time.Parse(time.RFC3339, in.To)
		if errF == nil && errT == nil && f.Before(t) {
			return f, t, true
		}
	}
	if in.Last != nil {
		if d, valid := in.Last.Duration(); valid {
			return now.Add(-d), now, true
		}
	}
	return time.Time{}, time.Time{}, false
}

// Actionable reports whether the chart path may run: intent, asset and a
// resolvable time range must all be present.
func (in ChartIntent) Actionable(now time.Time) bool {
	if !in.WantsChart || in.AssetURN == "" {
		return false
	}
	_, _, ok := in.ResolveRange(now)
	return ok
}

// AlertIntent is the structured result of alert-intent classification.
type AlertIntent struct {
	WantsAlert bool   `json:"wants_alert"`
	AssetURN   string `json:"asset_urn"`
}

// Actionable reports whether the alert path may run (2-of-2 gating).
func (in AlertIntent) Actionable() bool {
	return in.WantsAlert && in.AssetURN != ""
}
