package intent

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
)

const classifierMaxTokens = 256

const chartInstruction = `You classify operator messages for an industrial-machine assistant.
Decide whether the MOST RECENT user message asks for a time-series chart of a machine metric.
Only set wants_chart to true when the user clearly asks for a chart, trend, plot or history of a metric.
When in doubt, set wants_chart to false.
Copy asset_urn verbatim from the message; never invent one. Leave it empty if no asset is named.
Normalize metric into lowercase metric_unit style tokens when units are mentioned (e.g. "pressure_bar").
Extract a relative window into last {value, unit} with unit one of m, h, d, w, and/or explicit ISO-8601 from/to bounds.
Respond with JSON only.`

const alertInstruction = `You classify operator messages for an industrial-machine assistant.
Decide whether the MOST RECENT user message asks to list or check active alerts for a machine.
Only set wants_alert to true when the user clearly asks about alerts, alarms or warnings.
When in doubt, set wants_alert to false.
Copy asset_urn verbatim from the message; never invent one. Leave it empty if no asset is named.
Respond with JSON only.`

// chartSchema is the strict JSON schema attached to the chart classification call.
var chartSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "chart_intent",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"wants_chart": map[string]any{"type": "boolean"},
				"asset_urn":   map[string]any{"type": "string"},
				"metric":      map[string]any{"type": "string"},
				"last": map[string]any{
					"type": []string{"object", "null"},
					"properties": map[string]any{
						"value": map[string]any{"type": "integer"},
						"unit":  map[string]any{"type": "string", "enum": []string{"m", "h", "d", "w"}},
					},
					"required": []string{"value", "unit"},
				},
				"from": map[string]any{"type": "string"},
				"to":   map[string]any{"type": "string"},
			},
			"required": []string{"wants_chart", "asset_urn", "metric"},
		},
	},
}

// alertSchema is the strict JSON schema attached to the alert classification call.
var alertSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "alert_intent",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"wants_alert": map[string]any{"type": "boolean"},
				"asset_urn":   map[string]any{"type": "string"},
			},
			"required": []string{"wants_alert", "asset_urn"},
		},
	},
}

// Classifier issues structured-output classification calls against a routed
// provider. It holds no mutable state; one instance serves all requests.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ChartIntent classifies the latest user turn for chart intent. Returns the
// zero intent without any provider call when no user turn exists, and on any
// provider or parse failure (logged, never raised).
func (c *Classifier) ChartIntent(ctx context.Context, p llm.Provider, msgs []llm.Message) ChartIntent {
	payload, ok := c.classify(ctx, p, msgs, chartInstruction, chartSchema, "chart")
	if !ok {
		return ChartIntent{}
	}
	var out ChartIntent
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		log.Warn().Err(err).Str("intent", "chart").Str("payload", payload).Msg("intent payload unparsable, defaulting to no intent")
		return ChartIntent{}
	}
	return out
}

// AlertIntent classifies the latest user turn for alert intent, with the
// same no-intent defaulting as ChartIntent.
func (c *Classifier) AlertIntent(ctx context.Context, p llm.Provider, msgs []llm.Message) AlertIntent {
	payload, ok := c.classify(ctx, p, msgs, alertInstruction, alertSchema, "alert")
	if !ok {
		return AlertIntent{}
	}
	var out AlertIntent
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		log.Warn().Err(err).Str("intent", "alert").Str("payload", payload).Msg("intent payload unparsable, defaulting to no intent")
		return AlertIntent{}
	}
	return out
}

// classify runs one single-shot classification call and returns the fenced-
// stripped completion payload. ok is false when there was no user turn to
// classify or the provider call failed.
func (c *Classifier) classify(ctx context.Context, p llm.Provider, msgs []llm.Message, instruction string, schema map[string]any, kind string) (string, bool) {
	latest, ok := latestUserMessage(msgs)
	if !ok {
		return "", false
	}

	resp, err := p.ChatCompletion(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: instruction},
			{Role: llm.RoleUser, Content: latest},
		},
		Temperature: 0,
		MaxTokens:   classifierMaxTokens,
		Extra:       map[string]any{"response_format": schema},
	})
	if err != nil {
		log.Warn().Err(err).Str("intent", kind).Msg("intent classification call failed, defaulting to no intent")
		return "", false
	}
	return llm.StripFences(resp.Content), true
}

// latestUserMessage returns the content of the most recent user-role turn.
func latestUserMessage(msgs []llm.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleUser {
			return msgs[i].Content, true
		}
	}
	return "", false
}
