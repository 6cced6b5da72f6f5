package datasource

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yourusername/vector-bt/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// CSVSourceType reads timestamp,value files
	CSVSourceType SourceType = "csv"
)

// NewSource creates a Source from the data configuration, chosen by file extension
func NewSource(cfg config.DataConfig) (Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("data path is required")
	}
	switch SourceType(strings.TrimPrefix(strings.ToLower(filepath.Ext(cfg.Path)), ".")) {
	case CSVSourceType:
		return NewCSVSource(cfg.Path, cfg.TimeFormat), nil
	default:
		return nil, fmt.Errorf("unsupported data source: %s", cfg.Path)
	}
}

// ListAvailableSources returns all supported source types
func ListAvailableSources() []SourceType {
	return []SourceType{CSVSourceType}
}
