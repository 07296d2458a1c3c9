package roster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mouthwatch/platform/pkg/common/models"
	"gopkg.in/yaml.v3"
)

type File struct {
	Patients []models.Patient `yaml:"patients" json:"patients"`
}

// LoadFile reads a YAML roster. An empty path yields the mock roster.
func LoadFile(path string) ([]models.Patient, error) {
	if path == "" {
		return Mock(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	return Parse(content)
}

func Parse(content []byte) ([]models.Patient, error) {
	var f File
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	if len(f.Patients) == 0 {
		return nil, errors.New("roster file has no patients")
	}
	return normalize(f.Patients), nil
}
