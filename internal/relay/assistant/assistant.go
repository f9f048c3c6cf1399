// Package assistant defines the contract with the hosted assistant service
// and its production implementation. The relay only depends on the Service
// interface; the upstream wire types never leak past this package.
package assistant

import (
	"context"
)

// RunStatus is the stable outcome of an assistant run.
type RunStatus string

const (
	// RunStatusCompleted indicates the run produced a final message.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusRequiresAction indicates the run paused requesting tool output.
	RunStatusRequiresAction RunStatus = "requires_action"
	// RunStatusFailed indicates the run ended in failure.
	RunStatusFailed RunStatus = "failed"
	// RunStatusCancelled indicates the run was cancelled upstream.
	RunStatusCancelled RunStatus = "cancelled"
	// RunStatusExpired indicates the run expired before stabilizing.
	RunStatusExpired RunStatus = "expired"
	// RunStatusIncomplete indicates the run stopped before a final message.
	RunStatusIncomplete RunStatus = "incomplete"
)

// ToolCall is a tool execution request declared by a paused run.
type ToolCall struct {
	ID        string // call identifier the output must be keyed to
	Name      string // declared function name
	Arguments string // JSON-encoded arguments
}

// ToolOutput is the result of one tool call, keyed to its originating call.
type ToolOutput struct {
	CallID string
	Output string
}

// Run describes a run that has reached a stable state.
type Run struct {
	ID            string
	Status        RunStatus
	ToolCalls     []ToolCall // pending calls when Status is RunStatusRequiresAction
	FailureReason string     // populated for failed/cancelled/expired runs
}

// Service is the assistant-service collaborator contract. All operations
// block until the upstream reaches a stable state; callers bound the wait
// through the context deadline.
type Service interface {
	// CreateThread creates a new conversation thread and returns its identifier.
	CreateThread(ctx context.Context) (string, error)

	// AppendUserMessage appends a user-authored message to the thread.
	AppendUserMessage(ctx context.Context, threadID, text string) error

	// RunToStableState starts a run on the thread and polls until it reaches
	// a stable state: completed, paused requesting tool output, or failed.
	RunToStableState(ctx context.Context, threadID string) (*Run, error)

	// SubmitToolOutputs submits all collected tool outputs for a paused run
	// in one batch and polls until the run is stable again.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)

	// AssistantMessageTexts returns the text segments of the most recent
	// assistant-authored message(s) on the thread, in service order.
	AssistantMessageTexts(ctx context.Context, threadID string) ([]string, error)
}
