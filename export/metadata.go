package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jenshnielsen/nanotune/npy"
)

// RecordInfo is the provenance of one record row of a tensor.
type RecordInfo struct {
	Source    string `json:"source"`
	ID        int    `json:"id"`
	Flipped   bool   `json:"flipped"`
	Corrected bool   `json:"corrected"`
	Label     int    `json:"label"`
}

// Metadata describes an exported tensor. It is stored next to the array so
// later passes know the per-record shape without guessing it.
type Metadata struct {
	RunID          string         `json:"run_id"`
	CreatedAt      time.Time      `json:"created_at"`
	Category       string         `json:"category"`
	Stages         []string       `json:"stages"`
	Dimensionality int            `json:"dimensionality"`
	Shape          []int          `json:"shape"`
	DataTypes      map[string]int `json:"data_types"`
	FillValue      float64        `json:"fill_value"`
	Readout        string         `json:"readout"`
	Records        []RecordInfo   `json:"records"`
}

// MetadataPath returns the sidecar path of a tensor file.
func MetadataPath(tensorPath string) string {
	return strings.TrimSuffix(tensorPath, ".npy") + ".meta.json"
}

// ReadMetadata loads the sidecar of tensorPath. A missing sidecar is
// reported as os.ErrNotExist.
func ReadMetadata(tensorPath string) (*Metadata, error) {
	data, err := os.ReadFile(MetadataPath(tensorPath))
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", MetadataPath(tensorPath), err)
	}
	return &m, nil
}

// persist writes the tensor and, when meta is non-nil, its sidecar. Both go
// through a temporary file in the same directory and are renamed into place.
func persist(path string, t *Tensor, meta *Metadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := npy.Save(tmp, t.Array()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	if meta == nil {
		return nil
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	metaPath := MetadataPath(path)
	if err := os.WriteFile(metaPath+".tmp", data, 0o644); err != nil {
		return err
	}
	return os.Rename(metaPath+".tmp", metaPath)
}
