package answerflowsrv

import (
	"context"
	"errors"
	"time"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/Abraxas-365/gapflow/pkg/errx"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/Abraxas-365/gapflow/pkg/logx"
	"github.com/google/uuid"
)

// Engine drives one question's workflow through the graph:
//
//	start -> experience_check -[yes]-> deep_dive -> collect -> generate -> evaluate
//	evaluate -[acceptable or iter>=2]-> complete
//	evaluate -[needs improvement]-> refine -> evaluate
//	experience_check -[willing_to_learn]-> learning -> complete
//	experience_check -[no]-> complete (skip, no generative or search calls)
//
// Every transition writes a snapshot before the next node runs, so a
// crashed or paused workflow resumes from its recorded step.
type Engine struct {
	deepDive  *DeepDiveGenerator
	generator *AnswerGenerator
	evaluator *Evaluator
	refiner   *Refiner

	snapshots answerflow.SnapshotStore
	resources answerflow.ResourceSearcher

	snapshotTTL time.Duration
}

// Config assembles a workflow Engine
type Config struct {
	DeepDive    *DeepDiveGenerator
	Generator   *AnswerGenerator
	Evaluator   *Evaluator
	Refiner     *Refiner
	Snapshots   answerflow.SnapshotStore
	Resources   answerflow.ResourceSearcher
	SnapshotTTL time.Duration
}

func NewEngine(cfg Config) *Engine {
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 24 * time.Hour
	}
	return &Engine{
		deepDive:    cfg.DeepDive,
		generator:   cfg.Generator,
		evaluator:   cfg.Evaluator,
		refiner:     cfg.Refiner,
		snapshots:   cfg.Snapshots,
		resources:   cfg.Resources,
		snapshotTTL: cfg.SnapshotTTL,
	}
}

// Run executes the workflow until it reaches a terminal step or pauses
// waiting for user input. A paused run returns the non-terminal state;
// callers continue it through Resume once inputs arrive. A node failure
// returns the classified error alongside the error-step state, whose
// snapshot stays stored for inspection.
func (e *Engine) Run(ctx context.Context, state *answerflow.WorkflowState) (*answerflow.WorkflowState, error) {
	if state.CurrentStep == "" {
		state.CurrentStep = answerflow.StepStart
	}
	if state.CurrentStep == answerflow.StepStart {
		if err := state.Validate(); err != nil {
			return state, err
		}
	}

	for !state.IsTerminal() {
		if ctx.Err() != nil {
			// Leave the snapshot in place so the workflow can resume
			return state, answerflow.ErrUserCancelled().WithDetail("cause", ctx.Err().Error())
		}

		e.snapshot(ctx, state)

		if state.CurrentStep == answerflow.StepCollect && !state.HasCollectedInputs() {
			// Pause: the collected inputs arrive through Resume
			return state, nil
		}

		if err := e.step(ctx, state); err != nil {
			e.finish(ctx, state)
			return state, err
		}
	}

	e.finish(ctx, state)
	return state, nil
}

// RunDetached starts the workflow in the background. The first snapshot
// is written synchronously so the returned session ID is immediately
// pollable; progress and the final state live in the snapshot store.
func (e *Engine) RunDetached(state *answerflow.WorkflowState) kernel.SessionID {
	if state.CurrentStep == "" {
		state.CurrentStep = answerflow.StepStart
	}
	e.snapshot(context.Background(), state)

	go func() {
		if _, err := e.Run(context.Background(), state); err != nil {
			logx.Errorf("detached workflow %s/%s failed: %v", state.SessionID, state.QuestionID, err)
		}
	}()

	return state.SessionID
}

// Resume loads a paused workflow, merges the newly supplied inputs and
// continues from the recorded step.
func (e *Engine) Resume(ctx context.Context, req answerflow.ResumeRequest) (*answerflow.WorkflowState, error) {
	state, err := e.snapshots.Load(ctx, req.SessionID, req.QuestionID)
	if err != nil {
		return nil, err
	}

	if len(req.StructuredInputs) > 0 {
		if state.StructuredInputs == nil {
			state.StructuredInputs = make(map[string]any, len(req.StructuredInputs))
		}
		for k, v := range req.StructuredInputs {
			state.StructuredInputs[k] = v
		}
	}
	if req.RawAnswer != "" {
		state.RawAnswer = req.RawAnswer
	}
	if len(req.AdditionalData) > 0 {
		if state.AdditionalData == nil {
			state.AdditionalData = make(map[string]any, len(req.AdditionalData))
		}
		for k, v := range req.AdditionalData {
			state.AdditionalData[k] = v
		}
	}

	return e.Run(ctx, state)
}

// step executes the node for the current step and records the next one.
// A non-nil return means the workflow just moved to the error step.
func (e *Engine) step(ctx context.Context, state *answerflow.WorkflowState) error {
	switch state.CurrentStep {
	case answerflow.StepStart:
		state.CurrentStep = answerflow.StepExperienceCheck

	case answerflow.StepExperienceCheck:
		e.experienceCheck(state)

	case answerflow.StepDeepDive:
		return e.generateDeepDivePrompts(ctx, state)

	case answerflow.StepCollect:
		state.CurrentStep = answerflow.StepGenerate

	case answerflow.StepGenerate:
		return e.generateAnswer(ctx, state)

	case answerflow.StepEvaluate:
		e.evaluateQuality(ctx, state)

	case answerflow.StepRefine:
		e.refineAnswer(ctx, state)

	case answerflow.StepLearning:
		e.searchLearningResources(ctx, state)

	default:
		return e.fail(state, answerflow.ErrValidation("unknown workflow step: "+string(state.CurrentStep)))
	}
	return nil
}

// experienceCheck is a pure router over the user's reply. The skip path
// terminates immediately without any model or search calls.
func (e *Engine) experienceCheck(state *answerflow.WorkflowState) {
	response := answerflow.ParseExperienceResponse(string(state.ExperienceCheckResponse))
	state.ExperienceCheckResponse = response

	switch response {
	case answerflow.ExperienceYes:
		state.HasExperience = ptr(true)
		state.ChosenPath = answerflow.PathDeepDive
		state.CurrentStep = answerflow.StepDeepDive
	case answerflow.ExperienceWillingToLearn:
		state.HasExperience = ptr(false)
		state.ChosenPath = answerflow.PathLearningResources
		state.CurrentStep = answerflow.StepLearning
	default:
		state.HasExperience = ptr(false)
		state.ChosenPath = answerflow.PathSkip
		state.CurrentStep = answerflow.StepComplete
	}
}

func (e *Engine) generateDeepDivePrompts(ctx context.Context, state *answerflow.WorkflowState) error {
	prompts, err := e.deepDive.Generate(ctx, state)
	if err != nil {
		return e.fail(state, classifyLLMError(err))
	}
	state.ImprovementSuggestions = prompts
	state.CurrentStep = answerflow.StepCollect
	return nil
}

func (e *Engine) generateAnswer(ctx context.Context, state *answerflow.WorkflowState) error {
	answer, err := e.generator.Generate(ctx, state)
	if err != nil {
		if state.RawAnswer != "" {
			// The candidate's own words still beat no answer at all
			logx.Warnf("answer generation failed, keeping raw answer: %v", err)
			state.GeneratedAnswer = state.RawAnswer
			state.CurrentStep = answerflow.StepEvaluate
			return nil
		}
		return e.fail(state, classifyLLMError(err))
	}
	state.GeneratedAnswer = answer
	state.CurrentStep = answerflow.StepEvaluate
	return nil
}

func (e *Engine) evaluateQuality(ctx context.Context, state *answerflow.WorkflowState) {
	answer := state.GeneratedAnswer
	if answer == "" {
		answer = state.RawAnswer
	}

	eval, err := e.evaluator.Evaluate(ctx, state.QuestionText, answer)
	if err != nil {
		// An unevaluated answer is still an answer; accept it rather
		// than throwing the candidate's work away
		logx.Warnf("quality evaluation failed, accepting current answer: %v", err)
		state.FinalAnswer = answer
		state.CurrentStep = answerflow.StepComplete
		return
	}

	state.QualityScore = ptr(eval.Score)
	state.QualityIssues = eval.Issues
	state.QualityStrengths = eval.Strengths

	// Acceptance is recomputed from score and gap priority; the
	// evaluator's own is_acceptable flag is advisory only
	threshold := state.Threshold()
	acceptable := eval.Score >= threshold

	if acceptable || state.RefinementIteration >= answerflow.MaxRefinementIterations {
		state.FinalAnswer = answer
		state.AnswerAccepted = ptr(acceptable)
		if acceptable {
			state.ImprovementSuggestions = nil
		} else {
			// Forced accept at the iteration cap: keep the suggestions
			// so callers can show what was still missing
			state.ImprovementSuggestions = eval.Suggestions
		}
		state.CurrentStep = answerflow.StepComplete
		return
	}

	state.ImprovementSuggestions = eval.Suggestions
	state.CurrentStep = answerflow.StepRefine
}

func (e *Engine) refineAnswer(ctx context.Context, state *answerflow.WorkflowState) {
	state.RefinementIteration++

	refined, improvements, err := e.refiner.Refine(ctx, state)
	if err != nil {
		logx.Warnf("answer refinement failed, accepting current answer: %v", err)
		state.FinalAnswer = state.GeneratedAnswer
		state.CurrentStep = answerflow.StepComplete
		return
	}

	if len(improvements) > 0 {
		logx.Infof("refinement %d applied %d improvements", state.RefinementIteration, len(improvements))
	}
	state.RefinedAnswer = refined
	state.GeneratedAnswer = refined
	state.CurrentStep = answerflow.StepEvaluate
}

// searchLearningResources tolerates search failure: the workflow still
// completes, just without suggestions.
func (e *Engine) searchLearningResources(ctx context.Context, state *answerflow.WorkflowState) {
	if e.resources != nil {
		found, err := e.resources.SearchForGap(ctx, state.GapInfo, state.Language)
		if err != nil {
			logx.Warnf("learning resource search failed for %q: %v", state.GapInfo.Title, err)
		} else {
			state.LearningResources = found
		}
	}
	state.FinalAnswer = "Currently expanding " + state.GapInfo.Title + " expertise through hands-on learning"
	state.CurrentStep = answerflow.StepComplete
}

// fail records the terminal error on the state and hands it back so the
// caller can surface it
func (e *Engine) fail(state *answerflow.WorkflowState, err error) error {
	state.Error = err.Error()
	state.CurrentStep = answerflow.StepError
	return err
}

// classifyLLMError maps transport-level failures onto the workflow's
// error codes: admission timeouts and deadline overruns keep their own
// identity, everything else counts as provider exhaustion.
func classifyLLMError(err error) *errx.Error {
	switch {
	case errors.Is(err, llmrouter.ErrAdmissionTimeout):
		return answerflow.ErrRateLimitAdmission().WithDetail("cause", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return answerflow.ErrTimeout(err)
	default:
		return answerflow.ErrLLMFailure(err)
	}
}

// finish stamps terminal bookkeeping and settles the snapshot: deleted
// after a clean completion, kept for inspection after an error.
func (e *Engine) finish(ctx context.Context, state *answerflow.WorkflowState) {
	now := time.Now().UTC()
	state.CompletedAt = &now
	if !state.StartedAt.IsZero() {
		state.TotalTimeSeconds = now.Sub(state.StartedAt).Seconds()
	}

	if e.snapshots == nil || state.SessionID.IsEmpty() {
		return
	}
	if state.CurrentStep == answerflow.StepComplete && state.Error == "" {
		if _, err := e.snapshots.Delete(ctx, state.SessionID, state.QuestionID); err != nil {
			logx.Warnf("failed to delete snapshot %s/%s: %v", state.SessionID, state.QuestionID, err)
		}
		return
	}
	e.snapshot(ctx, state)
}

// snapshot persists the current state, assigning the session ID on
// first write. Persistence failures never stop the workflow.
func (e *Engine) snapshot(ctx context.Context, state *answerflow.WorkflowState) {
	if state.SessionID.IsEmpty() {
		state.SessionID = kernel.NewSessionID(uuid.NewString())
	}
	if e.snapshots == nil {
		return
	}
	if err := e.snapshots.Save(ctx, state.SessionID, state.QuestionID, state, e.snapshotTTL); err != nil {
		logx.Warnf("failed to snapshot %s/%s at %s: %v", state.SessionID, state.QuestionID, state.CurrentStep, err)
	}
}

func ptr[T any](v T) *T { return &v }
