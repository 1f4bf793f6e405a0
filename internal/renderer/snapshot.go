package renderer

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/nao1215/slideshot/internal/model"
)

// snapshotJS walks the rendered document and returns the snapshot as a
// JSON string in the wire form of model.Snapshot.
//
//go:embed snapshot.js
var snapshotJS string

// DecodeSnapshot parses the JSON produced by the snapshot script, or a
// snapshot file written by an earlier run.
func DecodeSnapshot(data []byte) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Nodes == nil {
		snap.Nodes = []model.RenderedNode{}
	}
	for i, n := range snap.Nodes {
		if !n.Rect.IsFinite() {
			return nil, fmt.Errorf("decode snapshot: node %d has a non-finite rectangle", i)
		}
	}
	return &snap, nil
}
