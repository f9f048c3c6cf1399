package chat

import (
	"net/http"

	"github.com/casebot/casebot/internal/common/apperrors"
)

var (
	// ErrRelayError is the base error for all relay-level failures.
	ErrRelayError apperrors.Error = apperrors.New("error in processing chat turn").SetStatusCode(http.StatusInternalServerError)

	// ErrBadRequest is returned for malformed or unparseable request bodies.
	ErrBadRequest apperrors.Error = ErrRelayError.New("bad request").SetStatusCode(http.StatusBadRequest)

	// ErrMissingConfiguration is returned when required upstream settings are
	// absent. Fatal for the request, never silently defaulted.
	ErrMissingConfiguration apperrors.Error = ErrRelayError.New("missing upstream configuration").SetStatusCode(http.StatusInternalServerError)

	// ErrAssistantService is returned when a call to the assistant service fails.
	ErrAssistantService apperrors.Error = ErrRelayError.New("assistant service request failed").SetStatusCode(http.StatusInternalServerError)

	// ErrRunNotCompleted is returned when a run reaches a terminal state
	// other than success.
	ErrRunNotCompleted apperrors.Error = ErrRelayError.New("assistant run did not complete").SetStatusCode(http.StatusInternalServerError)

	// ErrToolBudgetExceeded is returned when a run keeps requesting tool
	// output past the configured round budget.
	ErrToolBudgetExceeded apperrors.Error = ErrRelayError.New("assistant run exceeded tool call budget").SetStatusCode(http.StatusInternalServerError)
)
