package answerflowinfra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/Abraxas-365/gapflow/pkg/kernel"
	"github.com/Abraxas-365/gapflow/pkg/logx"
	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore keeps workflow snapshots in Redis under
// "session:{session_id}:question:{question_id}", shared across
// processes. Entries carry a TTL; Cleanup handles stragglers written
// without one.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func redisSnapshotKey(sessionID kernel.SessionID, questionID kernel.QuestionID) string {
	return fmt.Sprintf("session:%s:question:%s", sessionID, questionID)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID, state *answerflow.WorkflowState, ttl time.Duration) error {
	raw, err := encodeState(state)
	if err != nil {
		return answerflow.ErrSnapshotError(err)
	}
	if err := s.client.SetEx(ctx, redisSnapshotKey(sessionID, questionID), raw, ttl).Err(); err != nil {
		return answerflow.ErrSnapshotError(err)
	}
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID) (*answerflow.WorkflowState, error) {
	raw, err := s.client.Get(ctx, redisSnapshotKey(sessionID, questionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
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

func (s *RedisSnapshotStore) Delete(ctx context.Context, sessionID kernel.SessionID, questionID kernel.QuestionID) (bool, error) {
	removed, err := s.client.Del(ctx, redisSnapshotKey(sessionID, questionID)).Result()
	if err != nil {
		return false, answerflow.ErrSnapshotError(err)
	}
	return removed > 0, nil
}

func (s *RedisSnapshotStore) List(ctx context.Context, sessionID kernel.SessionID) ([]kernel.QuestionID, error) {
	pattern := fmt.Sprintf("session:%s:question:*", sessionID)
	var questionIDs []kernel.QuestionID

	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		idx := strings.LastIndex(key, ":question:")
		if idx < 0 {
			continue
		}
		questionIDs = append(questionIDs, kernel.NewQuestionID(key[idx+len(":question:"):]))
	}
	if err := iter.Err(); err != nil {
		return nil, answerflow.ErrSnapshotError(err)
	}
	return questionIDs, nil
}

// Cleanup removes snapshots whose write stamp is older than maxAge.
// TTL expiry covers the normal case; this sweep catches the rest.
func (s *RedisSnapshotStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	now := time.Now().UTC()
	removed := 0

	iter := s.client.Scan(ctx, 0, "session:*:question:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		age, ok := snapshotAge(raw, now)
		if !ok || age <= maxAge {
			continue
		}
		if err := s.client.Del(ctx, key).Err(); err != nil {
			logx.Warnf("snapshot cleanup: failed to delete %s: %v", key, err)
			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, answerflow.ErrSnapshotError(err)
	}
	return removed, nil
}
