package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/google/uuid"
)

const reportFile = "report.json"

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// artifactStore lays a run out on disk as
//
//	<root>/state/<portal>.json
//	<root>/runs/<run id>/report.json
//	<root>/runs/<run id>/screenshots/<n>-<name>.png
type artifactStore struct {
	root   string
	runID  string
	mu     sync.Mutex
	serial int
}

// NewArtifactStore - creates the artifact layout for a new run
func NewArtifactStore(root string) (interfaces.ArtifactStore, string, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, "", err
	}

	runID := uuid.NewString()
	s := &artifactStore{root: root, runID: runID}
	for _, dir := range []string{s.stateDir(), s.screenshotDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return s, runID, nil
}

// OpenArtifactStore - opens an existing layout for reading reports of past
// runs. Nothing is created on disk.
func OpenArtifactStore(root string) (interfaces.ArtifactStore, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	return &artifactStore{root: root}, nil
}

func resolveRoot(root string) (string, error) {
	if root != "" {
		return root, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".portal_automation"), nil
}

func (s *artifactStore) stateDir() string {
	return filepath.Join(s.root, "state")
}

func (s *artifactStore) runDir(runID string) string {
	return filepath.Join(s.root, "runs", runID)
}

func (s *artifactStore) screenshotDir() string {
	return filepath.Join(s.runDir(s.runID), "screenshots")
}

// ScreenshotPath - returns a fresh numbered path so retries never overwrite
func (s *artifactStore) ScreenshotPath(name string) (string, error) {
	s.mu.Lock()
	s.serial++
	n := s.serial
	s.mu.Unlock()

	file := fmt.Sprintf("%03d-%s.png", n, sanitize(name))
	return filepath.Join(s.screenshotDir(), file), nil
}

// StatePath - returns where the login state of a portal lives
func (s *artifactStore) StatePath(portal string) string {
	return filepath.Join(s.stateDir(), sanitize(portal)+".json")
}

// SaveReport - writes the report of the current run
func (s *artifactStore) SaveReport(report entities.Report) (string, error) {
	if report.RunID == "" {
		report.RunID = s.runID
	}
	if report.StartedAt.IsZero() {
		report.StartedAt = time.Now()
	}

	dir := s.runDir(report.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, reportFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// LoadReport - loads the report of a previous run
func (s *artifactStore) LoadReport(runID string) (entities.Report, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return entities.Report{}, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	data, err := os.ReadFile(filepath.Join(s.runDir(runID), reportFile))
	if err != nil {
		return entities.Report{}, err
	}

	var report entities.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return entities.Report{}, err
	}
	return report, nil
}

func sanitize(name string) string {
	name = strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if name == "" {
		return "unnamed"
	}
	return name
}
