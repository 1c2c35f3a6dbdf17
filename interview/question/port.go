package question

import (
	"context"

	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// BatchGenerator produces interview questions for a set of gaps.
// Output order always matches input order; per-gap failures surface as
// placeholder entries, never as a batch error.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context, gaps []Gap, parsedCV, parsedJD map[string]any, language kernel.Language) []Question
}
