package unit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestEventContractArtifactsAreValid(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(root, "contracts/events/v1/*.json"))
	if err != nil {
		t.Fatalf("invalid glob pattern: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no event contract artifacts found")
	}

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		var contract struct {
			EventType     string `json:"event_type"`
			SchemaVersion int    `json:"schema_version"`
			SourceService string `json:"source_service"`
		}
		if err := json.Unmarshal(data, &contract); err != nil {
			t.Fatalf("invalid json contract file %s: %v", path, err)
		}
		if contract.EventType == "" {
			t.Fatalf("%s: missing event_type", path)
		}
		if contract.SchemaVersion != 1 {
			t.Fatalf("%s: unexpected schema_version %d", path, contract.SchemaVersion)
		}
		if contract.SourceService != "revenue-sharing-engine" {
			t.Fatalf("%s: unexpected source_service %q", path, contract.SourceService)
		}
		expected := contract.EventType + ".json"
		if filepath.Base(path) != expected {
			t.Fatalf("%s: file name does not match event type %q", path, contract.EventType)
		}
	}
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	current := wd
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("go.mod not found from %s", wd)
		}
		current = parent
	}
}
