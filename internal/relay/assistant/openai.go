package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIService implements Service against the OpenAI Assistants v2 API.
type OpenAIService struct {
	client         openai.Client
	assistantID    string
	pollIntervalMs int
}

// Options configures the OpenAI-backed assistant service.
type Options struct {
	APIKey         string
	AssistantID    string
	PollIntervalMs int    // run status poll interval; defaults to 1000
	BaseURL        string // overrides the API endpoint; used by tests
}

// NewOpenAIService creates a Service backed by the OpenAI Assistants API.
func NewOpenAIService(opts Options) *OpenAIService {
	if opts.PollIntervalMs <= 0 {
		opts.PollIntervalMs = 1000
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &OpenAIService{
		client:         openai.NewClient(reqOpts...),
		assistantID:    opts.AssistantID,
		pollIntervalMs: opts.PollIntervalMs,
	}
}

// CreateThread creates a new conversation thread upstream.
func (s *OpenAIService) CreateThread(ctx context.Context) (string, error) {
	thread, err := s.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return thread.ID, nil
}

// AppendUserMessage appends a user-authored message to the thread.
func (s *OpenAIService) AppendUserMessage(ctx context.Context, threadID, text string) error {
	_, err := s.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return fmt.Errorf("appending user message: %w", err)
	}
	return nil
}

// RunToStableState starts a run and polls until it stabilizes. The poll loop
// is bounded by the context deadline.
func (s *OpenAIService) RunToStableState(ctx context.Context, threadID string) (*Run, error) {
	run, err := s.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: s.assistantID,
	})
	if err != nil {
		return nil, fmt.Errorf("running assistant turn: %w", err)
	}
	run, err = s.waitForStableState(ctx, threadID, run)
	if err != nil {
		return nil, fmt.Errorf("running assistant turn: %w", err)
	}
	return translateRun(run), nil
}

// SubmitToolOutputs submits the batch of tool outputs for a paused run and
// polls until the run stabilizes again.
func (s *OpenAIService) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	params := openai.BetaThreadRunSubmitToolOutputsParams{}
	for _, out := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(out.CallID),
			Output:     openai.String(out.Output),
		})
	}
	run, err := s.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, params)
	if err != nil {
		return nil, fmt.Errorf("submitting tool outputs: %w", err)
	}
	run, err = s.waitForStableState(ctx, threadID, run)
	if err != nil {
		return nil, fmt.Errorf("submitting tool outputs: %w", err)
	}
	return translateRun(run), nil
}

// waitForStableState polls the run at the configured interval until it leaves
// the queued/in_progress states. The wait ends early when the context is
// cancelled, so the per-request deadline bounds it.
func (s *OpenAIService) waitForStableState(ctx context.Context, threadID string, run *openai.Run) (*openai.Run, error) {
	interval := time.Duration(s.pollIntervalMs) * time.Millisecond
	for run.Status == openai.RunStatusQueued || run.Status == openai.RunStatusInProgress {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		var err error
		run, err = s.client.Beta.Threads.Runs.Get(ctx, threadID, run.ID)
		if err != nil {
			return nil, err
		}
	}
	return run, nil
}

// AssistantMessageTexts lists messages on the thread (newest first) and
// returns the text segments of the latest assistant-authored message block,
// stopping at the first user-authored message.
func (s *OpenAIService) AssistantMessageTexts(ctx context.Context, threadID string) ([]string, error) {
	page, err := s.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	var texts []string
	for _, msg := range page.Data {
		if msg.Role != openai.MessageRoleAssistant {
			break
		}
		for _, content := range msg.Content {
			if content.Type == "text" {
				texts = append(texts, content.Text.Value)
			}
		}
	}
	return texts, nil
}

// translateRun maps the upstream run to the domain Run.
func translateRun(run *openai.Run) *Run {
	r := &Run{ID: run.ID}

	switch run.Status {
	case openai.RunStatusCompleted:
		r.Status = RunStatusCompleted
	case openai.RunStatusRequiresAction:
		r.Status = RunStatusRequiresAction
	case openai.RunStatusCancelled, openai.RunStatusCancelling:
		r.Status = RunStatusCancelled
		r.FailureReason = string(run.Status)
	case openai.RunStatusExpired:
		r.Status = RunStatusExpired
		r.FailureReason = string(run.Status)
	case openai.RunStatusIncomplete:
		r.Status = RunStatusIncomplete
		r.FailureReason = run.IncompleteDetails.Reason
	default:
		r.Status = RunStatusFailed
		r.FailureReason = string(run.Status)
		if run.LastError.Message != "" {
			r.FailureReason = fmt.Sprintf("%s: %s", run.Status, run.LastError.Message)
		}
	}

	if r.Status == RunStatusRequiresAction &&
		run.RequiredAction.Type == "submit_tool_outputs" {
		for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			r.ToolCalls = append(r.ToolCalls, ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
	}

	return r
}
