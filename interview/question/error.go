package question

import (
	"net/http"

	"github.com/Abraxas-365/gapflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("QUESTION")

var (
	CodeInvalidBatchRequest = ErrRegistry.Register("INVALID_BATCH_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid batch generation request")
	CodeGenerationFailed    = ErrRegistry.Register("GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate question")
	CodeNoGapsProvided      = ErrRegistry.Register("NO_GAPS", errx.TypeValidation, http.StatusBadRequest, "At least one gap is required")
)

func ErrInvalidBatchRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidBatchRequest)
}

func ErrGenerationFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeGenerationFailed, cause)
}

func ErrNoGapsProvided() *errx.Error {
	return ErrRegistry.New(CodeNoGapsProvided)
}
