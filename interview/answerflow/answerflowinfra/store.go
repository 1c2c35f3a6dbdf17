package answerflowinfra

import (
	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/Abraxas-365/gapflow/pkg/logx"
	"github.com/redis/go-redis/v9"
)

// NewSnapshotStore picks the backing store: Redis when a client is
// configured (snapshots shared across processes), files otherwise.
func NewSnapshotStore(client *redis.Client, fileDir string) (answerflow.SnapshotStore, error) {
	if client != nil {
		logx.Info("snapshot store: using redis backend")
		return NewRedisSnapshotStore(client), nil
	}
	logx.Infof("snapshot store: using file backend at %s", fileDir)
	return NewFileSnapshotStore(fileDir)
}
