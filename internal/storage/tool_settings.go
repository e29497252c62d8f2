package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"mushaf/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Tool Settings Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves the inking tool when the app goes to the background and
// restores it on return. Stored as one JSON value.

const settingTool = "settings/tool"

// ToolStore implements domain.ToolStore on a KV.
type ToolStore struct {
	kv KV
}

func NewToolStore(kv KV) *ToolStore {
	return &ToolStore{kv: kv}
}

// SaveTool persists tool. Invalid tools are rejected.
func (s *ToolStore) SaveTool(ctx context.Context, tool domain.ToolConfig) error {
	if !tool.Valid() {
		return fmt.Errorf("save tool: invalid tool %+v", tool)
	}
	data, err := json.Marshal(tool)
	if err != nil {
		return fmt.Errorf("encode tool: %w", err)
	}
	return s.kv.Set(ctx, settingTool, data)
}

// LoadTool returns the saved tool, or false when none is stored or the
// stored value is unusable.
func (s *ToolStore) LoadTool(ctx context.Context) (domain.ToolConfig, bool) {
	data, err := s.kv.Get(ctx, settingTool)
	if err != nil || data == nil {
		return domain.ToolConfig{}, false
	}
	var tool domain.ToolConfig
	if err := json.Unmarshal(data, &tool); err != nil || !tool.Valid() {
		return domain.ToolConfig{}, false
	}
	tool.Ink = domain.ParseInk(string(tool.Ink))
	return tool, true
}
