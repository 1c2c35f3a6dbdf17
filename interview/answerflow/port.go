package answerflow

import (
	"context"
	"time"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

// TextGenerator is the slice of the LLM router the workflow needs
type TextGenerator interface {
	Generate(ctx context.Context, req llmrouter.Request) (string, string, error)
}

// SnapshotStore persists workflow state across request boundaries so a
// paused workflow can be resumed, possibly by another process.
type SnapshotStore interface {
	// Save creates or replaces the snapshot for (sessionID, questionID)
	Save(ctx context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID, state *WorkflowState, ttl time.Duration) error

	// Load returns the stored state, or a SNAPSHOT_NOT_FOUND error
	Load(ctx context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID) (*WorkflowState, error)

	// Delete removes a snapshot; removing a missing one is not an error
	Delete(ctx context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID) (bool, error)

	// List returns the question IDs that have snapshots for a session
	List(ctx context.Context, sessionID kernel.SessionID) ([]kernel.QuestionID, error)

	// Cleanup removes snapshots older than maxAge and reports how many
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}

// ResourceSearcher finds learning resources for a gap the user is
// willing to close by studying
type ResourceSearcher interface {
	SearchForGap(ctx context.Context, gap question.Gap, language kernel.Language) ([]resource.LearningResource, error)
}
