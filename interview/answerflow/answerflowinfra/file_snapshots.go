package answerflowinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// FileSnapshotStore keeps workflow snapshots as JSON files named
// "{session_id}_{question_id}.json". It is the single-process fallback
// when Redis is not configured; TTL is approximated by Cleanup.
type FileSnapshotStore struct {
	dir string
}

func NewFileSnapshotStore(dir string) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir %s: %w", dir, err)
	}
	return &FileSnapshotStore{dir: dir}, nil
}

func (s *FileSnapshotStore) path(sessionID kernel.SessionID, questionID kernel.QuestionID) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", sessionID, questionID))
}

func (s *FileSnapshotStore) Save(_ context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID, state *answerflow.WorkflowState, _ time.Duration) error {
	raw, err := encodeState(state)
	if err != nil {
		return answerflow.ErrSnapshotError(err)
	}

	// Write-then-rename keeps a concurrent Load from seeing a torn file
	target := s.path(sessionID, questionID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return answerflow.ErrSnapshotError(err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return answerflow.ErrSnapshotError(err)
	}
	return nil
}

func (s *FileSnapshotStore) Load(_ context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID) (*answerflow.WorkflowState, error) {
	raw, err := os.ReadFile(s.path(sessionID, questionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, answerflow.ErrSnapshotNotFound().
				WithDetail("session_id", sessionID.String()).
				WithDetail("question_id", questionID.String())
		}
		return nil, answerflow.ErrSnapshotError(err)
	}
	state, err := decodeState(raw)
	if err != nil {
		return nil, answerflow.ErrSnapshotError(err)
	}
	return state, nil
}

func (s *FileSnapshotStore) Delete(_ context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID) (bool, error) {
	err := os.Remove(s.path(sessionID, questionID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, answerflow.ErrSnapshotError(err)
	}
	return true, nil
}

func (s *FileSnapshotStore) List(_ context.Context, sessionID kernel.SessionID) ([]kernel.QuestionID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, answerflow.ErrSnapshotError(err)
	}

	prefix := sessionID.String() + "_"
	var questionIDs []kernel.QuestionID
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		qid := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		questionIDs = append(questionIDs, kernel.NewQuestionID(qid))
	}
	return questionIDs, nil
}

// Cleanup removes snapshot files whose write stamp is older than maxAge
func (s *FileSnapshotStore) Cleanup(_ context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, answerflow.ErrSnapshotError(err)
	}

	now := time.Now().UTC()
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		full := filepath.Join(s.dir, entry.Name())
		raw, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		age, ok := snapshotAge(raw, now)
		if !ok {
			// No stamp: fall back to the file's modification time
			info, err := entry.Info()
			if err != nil {
				continue
			}
			age = now.Sub(info.ModTime())
		}
		if age <= maxAge {
			continue
		}
		if err := os.Remove(full); err != nil {
			logx.Warnf("snapshot cleanup: failed to remove %s: %v", full, err)
			continue
		}
		removed++
	}
	return removed, nil
}
