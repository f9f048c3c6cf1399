package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/casebot/casebot/internal/common/apperrors"
	"github.com/casebot/casebot/internal/relay/assistant"
	"github.com/casebot/casebot/internal/relay/search"
)

// Fixed tool output strings. Tool output is always produced, never omitted:
// failures inside one call degrade to one of these instead of aborting the
// batch.
const (
	outputUnknownTool = "Unknown tool."
	outputInvalidArgs = "Invalid tool arguments."
	outputSearchError = "Error fetching search results."
	outputNoResults   = "No relevant results found."
)

// RelayOptions configures the conversation relay.
type RelayOptions struct {
	AssistantID       string // hosted assistant identifier; required before upstream calls
	VectorStoreID     string // document store identifier; required before upstream calls
	RejectionMessage  string // fixed response for moderation rejections
	NoMessageFallback string // response when extraction yields no text
	MaxToolRounds     int    // cap on tool-call cycles within one run
}

// Relay drives one chat turn through the assistant service: it resolves the
// conversation thread, appends the user message, runs the assistant to a
// stable state, satisfies tool-call pauses through the search collaborator,
// and extracts the final assistant text. The relay holds no state between
// turns; the thread identifier round-trips through the client.
type Relay struct {
	assistant assistant.Service
	search    search.Searcher
	moderator *Moderator
	opts      RelayOptions
}

// TurnResult is the outcome of one accepted or rejected chat turn.
type TurnResult struct {
	ThreadID ThreadID
	Response string
	Rejected bool
}

// NewRelay creates a Relay with the given collaborators and options.
func NewRelay(svc assistant.Service, searcher search.Searcher, moderator *Moderator, opts RelayOptions) *Relay {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = 5
	}
	return &Relay{
		assistant: svc,
		search:    searcher,
		moderator: moderator,
		opts:      opts,
	}
}

// RunTurn processes one inbound chat message. The query is trimmed and
// moderated before any upstream call; rejected turns short-circuit with the
// fixed rejection message and echo the supplied thread identifier without
// creating a session. All upstream waits are bounded by ctx.
func (r *Relay) RunTurn(ctx context.Context, query string, tid ThreadID) (*TurnResult, apperrors.Error) {
	query = strings.TrimSpace(query)

	log.Ctx(ctx).Debug().
		Str("thread_id", tid.Value()).
		Str("query", query).
		Msg("chat turn started")

	if query == "" || !r.moderator.IsValid(query) {
		log.Ctx(ctx).Info().Str("thread_id", tid.Value()).Msg("query rejected by moderation gate")
		return &TurnResult{
			ThreadID: tid,
			Response: r.opts.RejectionMessage,
			Rejected: true,
		}, nil
	}

	if r.opts.AssistantID == "" || r.opts.VectorStoreID == "" {
		return nil, ErrMissingConfiguration.Msg("missing ASSISTANT_ID or VECTOR_STORE_ID")
	}

	threadID := tid.Value()
	if !tid.IsPresent() {
		created, err := r.assistant.CreateThread(ctx)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("unable to create conversation thread")
			return nil, ErrAssistantService.MsgErr("unable to create conversation thread", err)
		}
		threadID = strings.TrimSpace(created)
		log.Ctx(ctx).Info().Str("thread_id", threadID).Msg("new conversation thread created")
	}

	if err := r.assistant.AppendUserMessage(ctx, threadID, query); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("thread_id", threadID).Msg("unable to append user message")
		return nil, ErrAssistantService.MsgErr("unable to append user message", err)
	}

	run, err := r.assistant.RunToStableState(ctx, threadID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("thread_id", threadID).Msg("assistant run failed to stabilize")
		return nil, ErrAssistantService.MsgErr("assistant run failed", err)
	}

	// The assistant may issue further tool calls after resuming, so this
	// loops rather than assuming a single round. The round budget keeps a
	// misbehaving run from pinning the request forever.
	for rounds := 0; run.Status == assistant.RunStatusRequiresAction; rounds++ {
		if rounds >= r.opts.MaxToolRounds {
			log.Ctx(ctx).Error().
				Str("thread_id", threadID).
				Int("rounds", rounds).
				Msg("tool call budget exhausted")
			return nil, ErrToolBudgetExceeded
		}

		outputs := r.executeToolCalls(ctx, run.ToolCalls)
		run, err = r.assistant.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("thread_id", threadID).Msg("unable to submit tool outputs")
			return nil, ErrAssistantService.MsgErr("unable to submit tool outputs", err)
		}
	}

	if run.Status != assistant.RunStatusCompleted {
		log.Ctx(ctx).Error().
			Str("thread_id", threadID).
			Str("run_status", string(run.Status)).
			Str("reason", run.FailureReason).
			Msg("assistant run ended without completing")
		msg := "assistant run ended with status " + string(run.Status)
		if run.FailureReason != "" {
			msg += ": " + run.FailureReason
		}
		return nil, ErrRunNotCompleted.Msg(msg)
	}

	texts, err := r.assistant.AssistantMessageTexts(ctx, threadID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("thread_id", threadID).Msg("unable to list assistant messages")
		return nil, ErrAssistantService.MsgErr("unable to list assistant messages", err)
	}

	response := strings.TrimSpace(StripCitations(strings.Join(texts, "\n")))
	if response == "" {
		response = r.opts.NoMessageFallback
	}

	return &TurnResult{
		ThreadID: SomeThreadID(threadID),
		Response: response,
	}, nil
}

// executeToolCalls satisfies one tool-call pause. Calls within the pause run
// concurrently; all outputs are collected before the single batched
// submission, each keyed to its originating call id.
func (r *Relay) executeToolCalls(ctx context.Context, calls []assistant.ToolCall) []assistant.ToolOutput {
	outputs := make([]assistant.ToolOutput, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call assistant.ToolCall) {
			defer wg.Done()
			outputs[i] = assistant.ToolOutput{
				CallID: call.ID,
				Output: r.executeToolCall(ctx, call),
			}
		}(i, call)
	}
	wg.Wait()
	return outputs
}

// executeToolCall produces the output for a single declared tool call.
// A parse failure or unknown tool name degrades to a fixed output string
// for that call only.
func (r *Relay) executeToolCall(ctx context.Context, call assistant.ToolCall) string {
	args := map[string]any{}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		log.Ctx(ctx).Warn().
			Str("tool", call.Name).
			Str("call_id", call.ID).
			Msg("unable to parse tool arguments")
		return outputInvalidArgs
	}

	switch call.Name {
	case assistant.WebSearchToolName:
		query, _ := args["query"].(string)
		return r.runWebSearch(ctx, query)
	default:
		log.Ctx(ctx).Warn().Str("tool", call.Name).Msg("assistant requested unknown tool")
		return outputUnknownTool
	}
}

// runWebSearch invokes the search collaborator and maps its response to tool
// output: the synthesized answer when present, otherwise a "title: url"
// listing of ranked results, otherwise a fixed no-results string. Errors are
// captured inline, never thrown past this boundary.
func (r *Relay) runWebSearch(ctx context.Context, query string) string {
	result, err := r.search.Search(ctx, query)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("query", query).Msg("web search failed")
		return outputSearchError
	}
	if result.Answer != "" {
		return result.Answer
	}
	if len(result.Results) > 0 {
		lines := make([]string, 0, len(result.Results))
		for _, res := range result.Results {
			lines = append(lines, res.Title+": "+res.URL)
		}
		return strings.Join(lines, "\n")
	}
	return outputNoResults
}
