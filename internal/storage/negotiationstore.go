// Package storage persists completed negotiations as YAML files under
// negotiations/ in the base directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/valter-silva-au/parley/pkg/models"
	"gopkg.in/yaml.v3"
)

// NegotiationStoreManager defines the interface for the workspace-level
// negotiation store under negotiations/.
type NegotiationStoreManager interface {
	Add(rec models.RecordedNegotiation, turns []models.Turn, events []models.AppliedEvent, report string) (string, error)
	Get(id string) (*models.RecordedNegotiation, error)
	List(filter models.NegotiationFilter) ([]models.RecordedNegotiation, error)
	GetTurns(id string) ([]models.Turn, error)
	GetEvents(id string) ([]models.AppliedEvent, error)
	GetRecent(limit int) ([]models.RecordedNegotiation, error)
	GenerateID() (string, error)
	Load() error
	Save() error
}

type fileNegotiationStore struct {
	basePath string
	index    models.NegotiationIndex
}

// NewNegotiationStoreManager creates a NegotiationStoreManager backed by
// YAML files under negotiations/ in the given base directory.
func NewNegotiationStoreManager(basePath string) NegotiationStoreManager {
	return &fileNegotiationStore{
		basePath: basePath,
		index: models.NegotiationIndex{
			Version:      "1.0",
			Negotiations: nil,
		},
	}
}

func (s *fileNegotiationStore) storeDir() string {
	return filepath.Join(s.basePath, "negotiations")
}

func (s *fileNegotiationStore) indexPath() string {
	return filepath.Join(s.storeDir(), "index.yaml")
}

func (s *fileNegotiationStore) counterPath() string {
	return filepath.Join(s.storeDir(), ".negotiation_counter")
}

func (s *fileNegotiationStore) recordDir(id string) string {
	return filepath.Join(s.storeDir(), id)
}

// GenerateID reads and increments the negotiation counter file, returning the
// next sequential ID in N-XXXXX format.
func (s *fileNegotiationStore) GenerateID() (string, error) {
	if err := os.MkdirAll(s.storeDir(), 0o755); err != nil {
		return "", fmt.Errorf("generating negotiation ID: creating directory: %w", err)
	}

	unlock, err := s.lockCounter()
	if err != nil {
		return "", fmt.Errorf("generating negotiation ID: acquiring lock: %w", err)
	}
	defer unlock()

	counter := 0
	data, err := os.ReadFile(s.counterPath())
	if err == nil {
		trimmed := strings.TrimSpace(string(data))
		if trimmed != "" {
			counter, err = strconv.Atoi(trimmed)
			if err != nil {
				return "", fmt.Errorf("generating negotiation ID: parsing counter: %w", err)
			}
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("generating negotiation ID: reading counter: %w", err)
	}

	counter++
	id := fmt.Sprintf("N-%05d", counter)

	if err := os.WriteFile(s.counterPath(), []byte(strconv.Itoa(counter)), 0o600); err != nil {
		return "", fmt.Errorf("generating negotiation ID: writing counter: %w", err)
	}
	return id, nil
}

// lockCounter acquires an exclusive lock on the counter file.
func (s *fileNegotiationStore) lockCounter() (unlock func() error, err error) {
	f, err := os.OpenFile(s.counterPath(), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening counter lock file: %w", err)
	}

	// syscall.Flock is Unix-specific.
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring counter lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}

// Add stores a recorded negotiation, its turns, its events, and the rendered
// final report. The record must have an ID already assigned via GenerateID.
func (s *fileNegotiationStore) Add(rec models.RecordedNegotiation, turns []models.Turn, events []models.AppliedEvent, report string) (string, error) {
	if rec.ID == "" {
		return "", fmt.Errorf("adding negotiation: ID must not be empty")
	}

	for _, existing := range s.index.Negotiations {
		if existing.ID == rec.ID {
			return "", fmt.Errorf("adding negotiation: %s already exists", rec.ID)
		}
	}

	dir := s.recordDir(rec.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("adding negotiation: creating directory: %w", err)
	}

	if err := s.saveYAML(filepath.Join(dir, "negotiation.yaml"), &rec); err != nil {
		return "", fmt.Errorf("adding negotiation: writing metadata: %w", err)
	}

	turnsWrapper := struct {
		Turns  []models.Turn         `yaml:"turns"`
		Events []models.AppliedEvent `yaml:"events,omitempty"`
	}{Turns: turns, Events: events}
	if err := s.saveYAML(filepath.Join(dir, "turns.yaml"), &turnsWrapper); err != nil {
		return "", fmt.Errorf("adding negotiation: writing turns: %w", err)
	}

	reportContent := fmt.Sprintf("# Negotiation %s\n\n```\n%s```\n", rec.ID, report)
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(reportContent), 0o644); err != nil {
		return "", fmt.Errorf("adding negotiation: writing report: %w", err)
	}

	s.index.Negotiations = append(s.index.Negotiations, rec)

	return rec.ID, nil
}

// Get returns the stored metadata for a negotiation by ID.
func (s *fileNegotiationStore) Get(id string) (*models.RecordedNegotiation, error) {
	for _, rec := range s.index.Negotiations {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("negotiation %s not found", id)
}

// List returns negotiations matching the given filter criteria.
func (s *fileNegotiationStore) List(filter models.NegotiationFilter) ([]models.RecordedNegotiation, error) {
	var result []models.RecordedNegotiation

	for _, rec := range s.index.Negotiations {
		if filter.Outcome != "" && rec.Outcome != filter.Outcome {
			continue
		}
		if filter.Since != nil && rec.EndedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && rec.EndedAt.After(*filter.Until) {
			continue
		}
		if filter.MinRounds > 0 && rec.Rounds < filter.MinRounds {
			continue
		}
		result = append(result, rec)
	}

	return result, nil
}

func (s *fileNegotiationStore) loadTurnsFile(id string) (*struct {
	Turns  []models.Turn         `yaml:"turns"`
	Events []models.AppliedEvent `yaml:"events,omitempty"`
}, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.recordDir(id), "turns.yaml"))
	if err != nil {
		return nil, fmt.Errorf("reading negotiation turns: %w", err)
	}

	wrapper := &struct {
		Turns  []models.Turn         `yaml:"turns"`
		Events []models.AppliedEvent `yaml:"events,omitempty"`
	}{}
	if err := yaml.Unmarshal(data, wrapper); err != nil {
		return nil, fmt.Errorf("parsing negotiation turns: %w", err)
	}
	return wrapper, nil
}

// GetTurns loads the transcript from disk for the given negotiation ID.
func (s *fileNegotiationStore) GetTurns(id string) ([]models.Turn, error) {
	wrapper, err := s.loadTurnsFile(id)
	if err != nil {
		return nil, err
	}
	return wrapper.Turns, nil
}

// GetEvents loads the applied events from disk for the given negotiation ID.
func (s *fileNegotiationStore) GetEvents(id string) ([]models.AppliedEvent, error) {
	wrapper, err := s.loadTurnsFile(id)
	if err != nil {
		return nil, err
	}
	return wrapper.Events, nil
}

// GetRecent returns the most recent negotiations, ordered newest first,
// limited to the given count.
func (s *fileNegotiationStore) GetRecent(limit int) ([]models.RecordedNegotiation, error) {
	if len(s.index.Negotiations) == 0 {
		return nil, nil
	}

	sorted := make([]models.RecordedNegotiation, len(s.index.Negotiations))
	copy(sorted, s.index.Negotiations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EndedAt.After(sorted[j].EndedAt)
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted, nil
}

// Load reads the negotiation index from disk. Missing files are treated as
// an empty store.
func (s *fileNegotiationStore) Load() error {
	if err := s.loadYAML(s.indexPath(), &s.index); err != nil {
		return fmt.Errorf("loading negotiation index: %w", err)
	}
	if s.index.Version == "" {
		s.index.Version = "1.0"
	}
	return nil
}

// Save persists the negotiation index to disk.
func (s *fileNegotiationStore) Save() error {
	if err := os.MkdirAll(s.storeDir(), 0o755); err != nil {
		return fmt.Errorf("saving negotiation store: creating directory: %w", err)
	}

	if err := s.saveYAML(s.indexPath(), &s.index); err != nil {
		return fmt.Errorf("saving negotiation index: %w", err)
	}
	return nil
}

func (s *fileNegotiationStore) loadYAML(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Missing files are initialized to zero values.
		}
		return err
	}
	return yaml.Unmarshal(data, target)
}

func (s *fileNegotiationStore) saveYAML(path string, source interface{}) error {
	data, err := yaml.Marshal(source)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
