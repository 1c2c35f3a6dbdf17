package answerflowinfra

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/Abraxas-365/gapflow/interview/question"
	"github.com/Abraxas-365/gapflow/pkg/errx"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
)

func sampleState() *answerflow.WorkflowState {
	score := 7
	accepted := false
	return &answerflow.WorkflowState{
		SessionID:    kernel.NewSessionID("s-1"),
		QuestionID:   kernel.NewQuestionID("q1_kafka"),
		QuestionText: "Tell me about Kafka",
		GapInfo: question.Gap{
			ID:       kernel.NewGapID("gap_1"),
			Title:    "Kafka",
			Priority: question.PriorityHigh,
			Impact:   12.5,
		},
		UserID:              kernel.NewUserID("u1"),
		Language:            kernel.LanguageEnglish,
		StartedAt:           time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		CurrentStep:         answerflow.StepEvaluate,
		ChosenPath:          answerflow.PathDeepDive,
		StructuredInputs:    map[string]any{"context": "Work", "duration": "2 years"},
		GeneratedAnswer:     "**Kafka Platform**\n  * Built it.",
		QualityScore:        &score,
		QualityIssues:       []answerflow.QualityIssue{{Label: "Lacks Metrics", Description: "No numbers"}},
		RefinementIteration: 1,
		AnswerAccepted:      &accepted,
	}
}

func TestFileSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	state := sampleState()

	if err := store.Save(ctx, state.SessionID, state.QuestionID, state, time.Hour); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, state.SessionID, state.QuestionID)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.QuestionText != state.QuestionText {
		t.Errorf("question_text = %q", loaded.QuestionText)
	}
	if loaded.CurrentStep != answerflow.StepEvaluate {
		t.Errorf("current_step = %s", loaded.CurrentStep)
	}
	if loaded.GapInfo.Priority != question.PriorityHigh || loaded.GapInfo.Impact != 12.5 {
		t.Errorf("gap_info = %+v", loaded.GapInfo)
	}
	if loaded.QualityScore == nil || *loaded.QualityScore != 7 {
		t.Errorf("quality_score = %v", loaded.QualityScore)
	}
	if loaded.AnswerAccepted == nil || *loaded.AnswerAccepted {
		t.Errorf("answer_accepted = %v", loaded.AnswerAccepted)
	}
	if !loaded.StartedAt.Equal(state.StartedAt) {
		t.Errorf("started_at = %s, want %s", loaded.StartedAt, state.StartedAt)
	}
	if got := loaded.StructuredInputs["duration"]; got != "2 years" {
		t.Errorf("structured_inputs[duration] = %v", got)
	}
	if len(loaded.QualityIssues) != 1 || loaded.QualityIssues[0].Label != "Lacks Metrics" {
		t.Errorf("quality_issues = %+v", loaded.QualityIssues)
	}
}

func TestFileSnapshotPreservesUnknownFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileSnapshotStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	state := sampleState()

	// Simulate a snapshot written by a newer version with extra fields
	raw, err := encodeState(state)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	doc["experimental_field"] = "keep me"
	doc["nested_extra"] = map[string]any{"k": float64(1)}
	augmented, _ := json.Marshal(doc)
	path := filepath.Join(dir, state.SessionID.String()+"_"+state.QuestionID.String()+".json")
	if err := os.WriteFile(path, augmented, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, state.SessionID, state.QuestionID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Extra["experimental_field"] != "keep me" {
		t.Fatalf("unknown field dropped on load: %+v", loaded.Extra)
	}

	// Saving the loaded state must write the unknown fields back out
	if err := store.Save(ctx, state.SessionID, state.QuestionID, loaded, time.Hour); err != nil {
		t.Fatal(err)
	}
	rewritten, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var round map[string]any
	if err := json.Unmarshal(rewritten, &round); err != nil {
		t.Fatal(err)
	}
	if round["experimental_field"] != "keep me" {
		t.Error("unknown field dropped on save")
	}
	if _, ok := round["nested_extra"]; !ok {
		t.Error("nested unknown field dropped on save")
	}
}

func TestFileSnapshotNotFound(t *testing.T) {
	t.Parallel()

	store, err := NewFileSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Load(context.Background(), kernel.NewSessionID("nope"), kernel.NewQuestionID("q"))
	if !errx.IsCode(err, answerflow.CodeSnapshotNotFound) {
		t.Errorf("err = %v, want SNAPSHOT_NOT_FOUND", err)
	}
}

func TestFileSnapshotDeleteAndList(t *testing.T) {
	t.Parallel()

	store, err := NewFileSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	state := sampleState()

	for _, qid := range []string{"q1_kafka", "q2_redis"} {
		if err := store.Save(ctx, state.SessionID, kernel.NewQuestionID(qid), state, time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	listed, err := store.List(ctx, state.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d snapshots, want 2", len(listed))
	}

	removed, err := store.Delete(ctx, state.SessionID, kernel.NewQuestionID("q1_kafka"))
	if err != nil || !removed {
		t.Fatalf("delete = (%v, %v)", removed, err)
	}
	removed, err = store.Delete(ctx, state.SessionID, kernel.NewQuestionID("q1_kafka"))
	if err != nil || removed {
		t.Fatalf("second delete = (%v, %v), want (false, nil)", removed, err)
	}
}

func TestFileSnapshotCleanup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileSnapshotStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	state := sampleState()

	// Fresh snapshot survives the sweep
	if err := store.Save(ctx, state.SessionID, state.QuestionID, state, time.Hour); err != nil {
		t.Fatal(err)
	}

	// Stale snapshot: rewrite the stamp two days into the past
	stale := filepath.Join(dir, "old_q.json")
	doc := map[string]any{
		"question_id":         "q",
		"snapshot_created_at": time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339),
	}
	raw, _ := json.Marshal(doc)
	if err := os.WriteFile(stale, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale snapshot must be gone")
	}
	if _, err := store.Load(ctx, state.SessionID, state.QuestionID); err != nil {
		t.Error("fresh snapshot must survive the sweep")
	}
}
