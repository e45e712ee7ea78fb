package store

import (
	"fmt"
	"log"
	"os"
	"time"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/mrovira/fieldops/internal/model"
)

// CurrentSchemaVersion is the newest state file layout this build writes.
const CurrentSchemaVersion = 1

const stateFileType = "fieldops_state"

// StateFile is the full operational snapshot written to disk.
type StateFile struct {
	SchemaVersion int       `yaml:"schema_version"`
	FileType      string    `yaml:"file_type"`
	SavedAt       time.Time `yaml:"saved_at"`

	Tasks     []model.Task                `yaml:"tasks,omitempty"`
	Stores    []model.Store               `yaml:"stores,omitempty"`
	Equipment []model.Equipment           `yaml:"equipment,omitempty"`
	Users     []model.User                `yaml:"users,omitempty"`
	Tools     []model.Tool                `yaml:"tools,omitempty"`
	Catalog   []model.MaterialCatalogItem `yaml:"catalog,omitempty"`
	Inventory []model.InventoryItem       `yaml:"inventory,omitempty"`
	Purchases []model.Purchase            `yaml:"purchases,omitempty"`
}

// Save writes the snapshot atomically, stamping the schema header.
func Save(path string, state *StateFile) error {
	state.SchemaVersion = CurrentSchemaVersion
	state.FileType = stateFileType
	state.SavedAt = time.Now().UTC()
	return atomicWrite(path, state)
}

// Load reads and validates a snapshot. A corrupted file is quarantined and,
// when a valid backup exists, restored and re-read; only then does Load fail.
func Load(path string, logger *log.Logger) (*StateFile, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	state, err := readState(path)
	if err == nil {
		return state, nil
	}
	if os.IsNotExist(err) {
		return nil, err
	}

	qPath, qErr := quarantine(path)
	if qErr != nil {
		return nil, fmt.Errorf("state file corrupted (%v) and quarantine failed: %w", err, qErr)
	}
	logger.Printf("WARN store: quarantined corrupted state file %s as %s", path, qPath)

	if rErr := restoreFromBackup(path); rErr != nil {
		return nil, fmt.Errorf("state file corrupted and not recoverable: %w", err)
	}
	logger.Printf("INFO store: restored %s from backup", path)
	return readState(path)
}

func readState(path string) (*StateFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var header struct {
		SchemaVersion int    `yaml:"schema_version"`
		FileType      string `yaml:"file_type"`
	}
	if err := yamlv3.Unmarshal(content, &header); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if header.SchemaVersion < 1 {
		return nil, fmt.Errorf("invalid schema_version %d (must be >= 1)", header.SchemaVersion)
	}
	if header.SchemaVersion > CurrentSchemaVersion {
		return nil, fmt.Errorf("unsupported schema_version %d (max supported: %d)", header.SchemaVersion, CurrentSchemaVersion)
	}
	if header.FileType != stateFileType {
		return nil, fmt.Errorf("unexpected file_type %q", header.FileType)
	}

	var state StateFile
	if err := yamlv3.Unmarshal(content, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &state, nil
}
