package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed quiz/questions.yaml
var defaultQuestions []byte

// Question is one immutable catalog entry. The correct index is never sent
// to clients before the reveal step.
type Question struct {
	Prompt       string   `yaml:"question"`
	Options      []string `yaml:"options"`
	CorrectIndex int      `yaml:"correctIndex"`
	Image        string   `yaml:"image,omitempty"`
	RevealImage  string   `yaml:"revealImage,omitempty"`
	IsBonus      bool     `yaml:"isBonus,omitempty"`
}

type catalogFile struct {
	Main  []Question `yaml:"main"`
	Bonus []Question `yaml:"bonus"`
}

// loadCatalog reads the YAML catalog at path, or the embedded default set
// when path is empty, and returns the assembled question sequence.
func loadCatalog(path string) ([]Question, error) {
	data := defaultQuestions
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing question catalog: %w", err)
	}

	catalog := buildCatalog(file.Main, file.Bonus)
	if err := validateCatalog(catalog); err != nil {
		return nil, err
	}

	return catalog, nil
}

// buildCatalog interleaves the bonus questions into the main sequence, one
// after every third main question, appending any leftovers of either kind.
// Bonus entries are tagged regardless of how the file marked them.
func buildCatalog(main, bonus []Question) []Question {
	catalog := make([]Question, 0, len(main)+len(bonus))

	next := 0
	for i, q := range main {
		catalog = append(catalog, q)
		if (i+1)%3 == 0 && next < len(bonus) {
			b := bonus[next]
			b.IsBonus = true
			catalog = append(catalog, b)
			next++
		}
	}

	for ; next < len(bonus); next++ {
		b := bonus[next]
		b.IsBonus = true
		catalog = append(catalog, b)
	}

	return catalog
}

func validateCatalog(catalog []Question) error {
	if len(catalog) == 0 {
		return fmt.Errorf("question catalog is empty")
	}

	for i, q := range catalog {
		if q.Prompt == "" {
			return fmt.Errorf("question %d has no prompt", i+1)
		}
		if len(q.Options) < 2 || len(q.Options) > 4 {
			return fmt.Errorf("question %d must have 2-4 options, has %d", i+1, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %d has correct index %d out of range", i+1, q.CorrectIndex)
		}
	}

	return nil
}
