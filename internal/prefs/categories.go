// Package prefs keeps a JSON copy of the account and category tree outside
// the database so a reset can be undone for the taxonomy.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jask/cashflow/internal/database/repository"
)

// File is the backup name, stored next to the database.
const File = "categories.json"

// Taxonomy is the saved tree.
type Taxonomy struct {
	Accounts   []repository.Account  `json:"accounts"`
	Categories []repository.Category `json:"categories"`
}

// PathFor returns the backup location for a database path.
func PathFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), File)
}

// SaveTaxonomy writes t to path atomically.
func SaveTaxonomy(path string, t Taxonomy) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadTaxonomy reads a saved tree. A missing file yields an empty tree.
func LoadTaxonomy(path string) (Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Taxonomy{}, nil
		}
		return Taxonomy{}, err
	}
	var t Taxonomy
	if err := json.Unmarshal(data, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}
