package templating

import (
	"encoding/json"
	"fmt"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

// JSONStore implements ports.ConfigStore by writing indented JSON.
type JSONStore struct{}

// NewJSONStore creates a store.
func NewJSONStore() *JSONStore {
	return &JSONStore{}
}

// Save writes cfg to path, replacing any previous file.
func (s *JSONStore) Save(path string, cfg domain.NcpConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := writeFile(path, append(data, '\n')); err != nil {
		return &domain.RenderError{Path: path, Err: err}
	}
	return nil
}
