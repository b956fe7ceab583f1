package services

import (
	"context"
	"errors"
	"strings"

	"github.com/courtside-app/courtside-server/repositories"
)

// IssueCode identifies a validation or propagation outcome. Codes travel to
// the client unchanged, so they are stable strings rather than error values.
type IssueCode string

const (
	CodeInvalidScores      IssueCode = "INVALID_SCORES"
	CodePlaceholderTeams   IssueCode = "PLACEHOLDER_TEAMS"
	CodeTieGame            IssueCode = "TIE_GAME"
	CodeDependenciesNotMet IssueCode = "DEPENDENCIES_NOT_MET"

	CodeTooManyDestinations IssueCode = "TOO_MANY_DESTINATIONS"
	CodeSelfReference       IssueCode = "SELF_REFERENCE"
	CodeDifferentDivision   IssueCode = "DIFFERENT_DIVISION"
	CodeGameAtCapacity      IssueCode = "GAME_AT_CAPACITY"
	CodeInvalidGameID       IssueCode = "INVALID_GAME_ID"
	CodeCircularDependency  IssueCode = "CIRCULAR_DEPENDENCY"

	CodeGameNotFound      IssueCode = "GAME_NOT_FOUND"
	CodePermissionDenied  IssueCode = "PERMISSION_DENIED"
	CodeNetworkError      IssueCode = "NETWORK_ERROR"
	CodeCascadeFailed     IssueCode = "CASCADE_FAILED"
	CodeAdvancementFailed IssueCode = "ADVANCEMENT_FAILED"
	CodeValidationFailed  IssueCode = "VALIDATION_FAILED"
	CodeUnknownError      IssueCode = "UNKNOWN_ERROR"
)

// ValidationIssue is one violated rule; all violations are collected, never
// short-circuited.
type ValidationIssue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

var (
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email address is already in use")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrUploadsDisabled        = errors.New("image uploads are not configured")
	ErrInvalidInput           = errors.New("invalid input")
	ErrTieUnresolved          = errors.New("game ended in a tie, winner cannot be determined")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
)

// networkErrorMarkers classify store failures that are worth retrying. All
// other errors (not-found, permission-denied, constraint violations) fail
// fast.
var networkErrorMarkers = []string{"network", "timeout", "connection", "unavailable", "deadline-exceeded", "fetch"}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, repositories.ErrGameNotFound) || errors.Is(err, repositories.ErrPermissionDenied) {
		return false
	}
	if errors.Is(err, repositories.ErrStoreUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range networkErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// classifyError buckets a store error for the user-facing errors array.
func classifyError(err error) IssueCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, repositories.ErrGameNotFound):
		return CodeGameNotFound
	case errors.Is(err, repositories.ErrPermissionDenied):
		return CodePermissionDenied
	case isRetryableError(err):
		return CodeNetworkError
	default:
		return CodeUnknownError
	}
}
