package answerflowinfra

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/go-viper/mapstructure/v2"
)

// snapshotCreatedAtKey stamps when the snapshot was written, separate
// from the workflow's own started_at
const snapshotCreatedAtKey = "snapshot_created_at"

// encodeState serializes a workflow state for storage. Unknown fields
// carried in Extra are written back at the top level so snapshots taken
// by a newer version survive a round trip through this one.
func encodeState(state *answerflow.WorkflowState) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow state: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	for key, value := range state.Extra {
		if _, known := doc[key]; !known {
			doc[key] = value
		}
	}
	doc[snapshotCreatedAtKey] = time.Now().UTC().Format(time.RFC3339)

	return json.Marshal(doc)
}

// decodeState parses a stored snapshot. Fields this version does not
// know about land in Extra instead of being dropped.
func decodeState(raw []byte) (*answerflow.WorkflowState, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	var state answerflow.WorkflowState
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &state,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &state, nil
}

// snapshotAge reads the write stamp out of a raw snapshot without a
// full decode; zero time when the stamp is missing or malformed
func snapshotAge(raw []byte, now time.Time) (time.Duration, bool) {
	var doc struct {
		SnapshotCreatedAt string `json:"snapshot_created_at"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || doc.SnapshotCreatedAt == "" {
		return 0, false
	}
	created, err := time.Parse(time.RFC3339, doc.SnapshotCreatedAt)
	if err != nil {
		return 0, false
	}
	return now.Sub(created), true
}
