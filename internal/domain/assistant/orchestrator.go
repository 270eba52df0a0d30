// Package assistant implements the query orchestrator: the top-level state
// machine that takes one operator conversation through validation, intent
// checks, retrieval and generation. States run in a fixed order and each is
// a short-circuit exit point; none is revisited within a request.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plantcopilot/plantcopilot/internal/domain/intent"
	"github.com/plantcopilot/plantcopilot/internal/domain/livedata"
	"github.com/plantcopilot/plantcopilot/internal/domain/retrieval"
	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
)

// maxSources caps the citation list on conversational replies.
const maxSources = 3

var (
	// ErrEmptyConversation is a client input error: no messages to answer.
	ErrEmptyConversation = errors.New("assistant: conversation is empty")

	// ErrGenerationFailed hides provider detail from the client; the full
	// error is logged server-side.
	ErrGenerationFailed = errors.New("assistant: chat completion failed")
)

const systemPrompt = `You are PlantCopilot, an assistant for industrial-machine operators.
Answer questions about machine operation, maintenance and troubleshooting.
Base your answers on the provided documentation excerpts and live data. When the
excerpts do not cover the question, say so instead of guessing.
Never invent asset identifiers or measurement values.
Never give instructions that bypass machine safety interlocks or documented procedures.`

// Asset names a machine the operator works with.
type Asset struct {
	URN  string `json:"urn"`
	Name string `json:"name"`
}

// Request is one orchestration call.
type Request struct {
	Messages       []llm.Message
	VectorStoreIDs []string
	HostProvider   string
	Assets         []Asset
}

// ReplyResponse is the conversational terminal state.
type ReplyResponse struct {
	Reply   string    `json:"reply"`
	Sources []llm.Hit `json:"sources"`
}

// ChartResponse is the chart-summary terminal state.
type ChartResponse struct {
	Chart   bool             `json:"chart"`
	Summary string           `json:"summary"`
	First10 []livedata.Point `json:"first10"`
	Last10  []livedata.Point `json:"last10"`
}

// AlertResponse is the alert terminal state.
type AlertResponse struct {
	Reply  string           `json:"reply"`
	Alerts []livedata.Alert `json:"alerts"`
}

// ClarifyResponse asks the operator to complete an under-specified chart
// request (intent and asset present, time range unresolvable).
type ClarifyResponse struct {
	Message string `json:"message"`
}

// TimeSeriesFetcher fetches measurements for the chart path.
type TimeSeriesFetcher interface {
	Fetch(ctx context.Context, assetURN, metric string, from, to time.Time) []livedata.Point
}

// AlertFetcher fetches active alerts for the alert path.
type AlertFetcher interface {
	Fetch(ctx context.Context, assetURN string) []livedata.Alert
}

// Retriever runs the retrieval pipeline for the conversational path.
type Retriever interface {
	Retrieve(ctx context.Context, msgs []llm.Message, collection, providerKey string) (*retrieval.Result, error)
}

// IntentClassifier extracts chart and alert intents from the conversation.
type IntentClassifier interface {
	ChartIntent(ctx context.Context, p llm.Provider, msgs []llm.Message) intent.ChartIntent
	AlertIntent(ctx context.Context, p llm.Provider, msgs []llm.Message) intent.AlertIntent
}

// Options configures an Orchestrator.
type Options struct {
	ChartIntentEnabled bool
	DefaultCollection  string
}

// Orchestrator sequences intent checks, live-data fetches, retrieval and
// generation for one request. Stateless across requests.
type Orchestrator struct {
	router     *llm.Router
	classifier IntentClassifier
	series     TimeSeriesFetcher
	alerts     AlertFetcher
	retriever  Retriever
	opts       Options
	now        func() time.Time
}

// New creates an Orchestrator.
func New(router *llm.Router, classifier IntentClassifier, series TimeSeriesFetcher, alerts AlertFetcher, retriever Retriever, opts Options) *Orchestrator {
	return &Orchestrator{
		router:     router,
		classifier: classifier,
		series:     series,
		alerts:     alerts,
		retriever:  retriever,
		opts:       opts,
		now:        time.Now,
	}
}

// Handle runs the state machine. The result is one of ReplyResponse,
// ChartResponse, AlertResponse or ClarifyResponse; errors are either
// ErrEmptyConversation (client input) or ErrGenerationFailed (internal).
func (o *Orchestrator) Handle(ctx context.Context, req Request) (any, error) {
	// Validate
	if len(req.Messages) == 0 {
		return nil, ErrEmptyConversation
	}

	p, err := o.router.Route(req.HostProvider)
	if err != nil {
		log.Error().Err(err).Str("provider", req.HostProvider).Msg("no provider for request")
		return nil, ErrGenerationFailed
	}

	// Enhance
	msgs := enhance(req)

	// Chart check
	if o.opts.ChartIntentEnabled {
		if resp, done := o.chartCheck(ctx, p, msgs); done {
			return resp, nil
		}
	}

	// Alert check
	if resp, done := o.alertCheck(ctx, p, msgs); done {
		return resp, nil
	}

	// Retrieve
	res := o.retrieve(ctx, msgs, req)
	spliced := spliceContext(msgs, res.Context)

	// Generate
	full := make([]llm.Message, 0, len(spliced)+1)
	full = append(full, llm.Message{Role: llm.RoleSystem, Content: o.systemPrompt(req.Assets)})
	full = append(full, spliced...)

	completion, err := p.ChatCompletion(ctx, llm.ChatRequest{Messages: full})
	if err != nil {
		log.Error().Err(err).Str("provider", req.HostProvider).Msg("chat completion failed")
		return nil, ErrGenerationFailed
	}

	// Respond
	sources := res.Hits
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return ReplyResponse{Reply: completion.Content, Sources: sources}, nil
}

// chartCheck runs the chart path. done is true when a terminal response was
// produced: an actionable intent yields the chart summary, an intent with an
// asset but no resolvable range yields a clarification. Anything less falls
// through to the remaining states.
func (o *Orchestrator) chartCheck(ctx context.Context, p llm.Provider, msgs []llm.Message) (any, bool) {
	ci := o.classifier.ChartIntent(ctx, p, msgs)
	now := o.now()

	if ci.Actionable(now) {
		from, to, _ := ci.ResolveRange(now)
		points := o.series.Fetch(ctx, ci.AssetURN, ci.Metric, from, to)
		sum := livedata.Summarize(points)
		return ChartResponse{Chart: true, Summary: sum.Summary, First10: sum.First, Last10: sum.Last}, true
	}

	if ci.WantsChart && ci.AssetURN != "" {
		return ClarifyResponse{
			Message: fmt.Sprintf("I can chart %s for %s, but I need a time range. Try something like \"over the last 3 days\" or explicit start and end times.",
				metricOrDefault(ci.Metric), ci.AssetURN),
		}, true
	}
	return nil, false
}

// alertCheck runs the alert path. Zero alerts is still a terminal state with
// a distinct "no live data" reply.
func (o *Orchestrator) alertCheck(ctx context.Context, p llm.Provider, msgs []llm.Message) (any, bool) {
	ai := o.classifier.AlertIntent(ctx, p, msgs)
	if !ai.Actionable() {
		return nil, false
	}

	alerts := o.alerts.Fetch(ctx, ai.AssetURN)
	if len(alerts) == 0 {
		return AlertResponse{
			Reply:  fmt.Sprintf("No live data available for %s.", ai.AssetURN),
			Alerts: []livedata.Alert{},
		}, true
	}
	return AlertResponse{
		Reply:  fmt.Sprintf("%d active alerts for %s.", len(alerts), ai.AssetURN),
		Alerts: alerts,
	}, true
}

// retrieve runs retrieval and degrades to an empty result on failure: the
// model still answers, just without documentation context.
func (o *Orchestrator) retrieve(ctx context.Context, msgs []llm.Message, req Request) *retrieval.Result {
	collection := o.opts.DefaultCollection
	if len(req.VectorStoreIDs) > 0 {
		collection = req.VectorStoreIDs[0]
	}

	res, err := o.retriever.Retrieve(ctx, msgs, collection, req.HostProvider)
	if err != nil {
		log.Warn().Err(err).Str("collection", collection).Msg("retrieval failed, answering without context")
		return &retrieval.Result{Hits: []llm.Hit{}}
	}
	return res
}

// systemPrompt extends the base policy with the operator's asset names.
func (o *Orchestrator) systemPrompt(assets []Asset) string {
	if len(assets) == 0 {
		return systemPrompt
	}
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = assetLabel(a)
	}
	return systemPrompt + "\nThe operator works with these machines: " + strings.Join(names, ", ") + "."
}

// enhance prepends a synthetic user turn naming the request's assets and
// vector stores so intent extraction and retrieval both see them. The input
// slice is never mutated.
func enhance(req Request) []llm.Message {
	if len(req.Assets) == 0 && len(req.VectorStoreIDs) == 0 {
		return req.Messages
	}

	var b strings.Builder
	b.WriteString("Context for this conversation.")
	if len(req.Assets) > 0 {
		names := make([]string, len(req.Assets))
		for i, a := range req.Assets {
			names[i] = assetLabel(a)
		}
		b.WriteString(" I am working with: " + strings.Join(names, ", ") + ".")
	}
	if len(req.VectorStoreIDs) > 0 {
		b.WriteString(" Relevant document collections: " + strings.Join(req.VectorStoreIDs, ", ") + ".")
	}

	out := make([]llm.Message, 0, len(req.Messages)+1)
	out = append(out, llm.Message{Role: llm.RoleUser, Content: b.String()})
	out = append(out, req.Messages...)
	return out
}

// spliceContext appends the rendered context onto the content of the most
// recent user turn. The message count is unchanged; context rides along with
// the question it answers instead of arriving as a separate message.
func spliceContext(msgs []llm.Message, context string) []llm.Message {
	if context == "" {
		return msgs
	}
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Role == llm.RoleUser {
			out[i].Content += "\n\nDocumentation excerpts that may be relevant:\n" + context
			break
		}
	}
	return out
}

func assetLabel(a Asset) string {
	if a.Name != "" && a.URN != "" {
		return a.Name + " (" + a.URN + ")"
	}
	if a.Name != "" {
		return a.Name
	}
	return a.URN
}

func metricOrDefault(metric string) string {
	if metric == "" {
		return "that metric"
	}
	return metric
}
