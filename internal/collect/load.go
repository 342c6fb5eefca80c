package collect

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/leadscope/prospect-cli/internal/model"
)

// LoadDirectory reads a directory-source collection from a JSON file.
func LoadDirectory(path string) ([]model.DirectoryRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: read directory file %s", path)
	}
	var records []model.DirectoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "collect: parse directory file %s", path)
	}
	return records, nil
}

// LoadPOIs reads a POI-source collection from a JSON file.
func LoadPOIs(path string) ([]model.POIRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: read poi file %s", path)
	}
	var records []model.POIRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "collect: parse poi file %s", path)
	}
	return records, nil
}

// WriteDirectory writes a directory collection as indented JSON.
func WriteDirectory(path string, records []model.DirectoryRecord) error {
	return writeJSON(path, records, "directory")
}

// WritePOIs writes a POI collection as indented JSON.
func WritePOIs(path string, records []model.POIRecord) error {
	return writeJSON(path, records, "poi")
}

func writeJSON(path string, v any, kind string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "collect: marshal %s collection", kind)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "collect: write %s file %s", kind, path)
	}
	return nil
}
