package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DictatorXP/ExamWeb/internal/model"
)

const (
	questionsFile = "exam-questions.json"
	answersFile   = "exam-answers.json"
)

// ArtifactStore persists the question list and answer key as two JSON files
// under a data directory. Both files are rewritten wholesale on every update
// and loaded wholesale at process start. A missing file is not an error.
type ArtifactStore struct {
	dataDir string
}

// NewArtifactStore creates the store and ensures the data directory exists.
func NewArtifactStore(dataDir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &ArtifactStore{dataDir: dataDir}, nil
}

func (s *ArtifactStore) questionsPath() string {
	return filepath.Join(s.dataDir, questionsFile)
}

func (s *ArtifactStore) answersPath() string {
	return filepath.Join(s.dataDir, answersFile)
}

// SaveQuestions rewrites the questions artifact.
func (s *ArtifactStore) SaveQuestions(questions []model.Question) error {
	return writeJSON(s.questionsPath(), questions)
}

// LoadQuestions reads the questions artifact. Returns (nil, nil) when the
// artifact does not exist.
func (s *ArtifactStore) LoadQuestions() ([]model.Question, error) {
	var questions []model.Question
	ok, err := readJSON(s.questionsPath(), &questions)
	if err != nil || !ok {
		return nil, err
	}
	return questions, nil
}

// SaveAnswerKey rewrites the answer key artifact.
func (s *ArtifactStore) SaveAnswerKey(key []string) error {
	return writeJSON(s.answersPath(), key)
}

// LoadAnswerKey reads the answer key artifact. Returns (nil, nil) when the
// artifact does not exist.
func (s *ArtifactStore) LoadAnswerKey() ([]string, error) {
	var key []string
	ok, err := readJSON(s.answersPath(), &key)
	if err != nil || !ok {
		return nil, err
	}
	return key, nil
}

// Remove deletes both artifacts. Missing files are ignored.
func (s *ArtifactStore) Remove() error {
	for _, path := range []string{s.questionsPath(), s.answersPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove artifact %s: %w", path, err)
		}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// readJSON unmarshals path into v. The boolean reports whether the file
// existed.
func readJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return true, nil
}
