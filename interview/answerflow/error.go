package answerflow

import (
	"net/http"

	"github.com/Abraxas-365/gapflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ANSWERFLOW")

var (
	CodeValidation         = ErrRegistry.Register("VALIDATION", errx.TypeValidation, http.StatusBadRequest, "Invalid workflow input")
	CodeLLMFailure         = ErrRegistry.Register("LLM_FAILURE", errx.TypeUnavailable, http.StatusBadGateway, "All language model providers failed")
	CodeTimeout            = ErrRegistry.Register("TIMEOUT", errx.TypeTimeout, http.StatusGatewayTimeout, "Operation exceeded its time budget")
	CodeRateLimitAdmission = ErrRegistry.Register("RATE_LIMIT_ADMISSION", errx.TypeRateLimit, http.StatusTooManyRequests, "Too many concurrent model calls, admission timed out")
	CodeSnapshotError      = ErrRegistry.Register("SNAPSHOT_ERROR", errx.TypeInternal, http.StatusInternalServerError, "Snapshot operation failed")
	CodeSnapshotNotFound   = ErrRegistry.Register("SNAPSHOT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "No snapshot for this session and question")
	CodeUserCancelled      = ErrRegistry.Register("USER_CANCELLED", errx.TypeBusiness, http.StatusConflict, "Workflow cancelled by the caller")
)

func ErrValidation(reason string) *errx.Error {
	return ErrRegistry.New(CodeValidation).WithDetail("reason", reason)
}

func ErrLLMFailure(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeLLMFailure, cause)
}

func ErrTimeout(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeTimeout, cause)
}

func ErrRateLimitAdmission() *errx.Error {
	return ErrRegistry.New(CodeRateLimitAdmission)
}

func ErrSnapshotError(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeSnapshotError, cause)
}

func ErrSnapshotNotFound() *errx.Error {
	return ErrRegistry.New(CodeSnapshotNotFound)
}

func ErrUserCancelled() *errx.Error {
	return ErrRegistry.New(CodeUserCancelled)
}
