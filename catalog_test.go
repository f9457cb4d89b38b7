package main

import (
	"os"
	"path/filepath"
	"testing"
)

func mainQuestions(n int) []Question {
	questions := make([]Question, n)
	for i := range questions {
		questions[i] = Question{
			Prompt:       "main",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
		}
	}
	return questions
}

func bonusQuestions(n int) []Question {
	questions := make([]Question, n)
	for i := range questions {
		questions[i] = Question{
			Prompt:       "bonus",
			Options:      []string{"a", "b"},
			CorrectIndex: 0,
		}
	}
	return questions
}

func TestBuildCatalogInterleave(t *testing.T) {
	catalog := buildCatalog(mainQuestions(15), bonusQuestions(5))

	if len(catalog) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(catalog))
	}

	// One bonus after every third main question: positions 4, 8, 12, 16, 20.
	for i, q := range catalog {
		wantBonus := (i+1)%4 == 0
		if q.IsBonus != wantBonus {
			t.Errorf("question %d: IsBonus = %t, want %t", i, q.IsBonus, wantBonus)
		}
	}
}

func TestBuildCatalogLeftovers(t *testing.T) {
	// Too few mains to place every bonus inline; the rest trail.
	catalog := buildCatalog(mainQuestions(2), bonusQuestions(2))

	wantBonus := []bool{false, false, true, true}
	if len(catalog) != len(wantBonus) {
		t.Fatalf("expected %d questions, got %d", len(wantBonus), len(catalog))
	}
	for i, q := range catalog {
		if q.IsBonus != wantBonus[i] {
			t.Errorf("question %d: IsBonus = %t, want %t", i, q.IsBonus, wantBonus[i])
		}
	}
}

func TestBuildCatalogTagsBonus(t *testing.T) {
	bonus := bonusQuestions(1)
	bonus[0].IsBonus = false

	catalog := buildCatalog(nil, bonus)
	if !catalog[0].IsBonus {
		t.Error("bonus question not tagged")
	}
}

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name    string
		catalog []Question
		wantErr bool
	}{
		{"valid", mainQuestions(1), false},
		{"empty", nil, true},
		{"no prompt", []Question{{Options: []string{"a", "b"}}}, true},
		{"one option", []Question{{Prompt: "q", Options: []string{"a"}}}, true},
		{"five options", []Question{{Prompt: "q", Options: []string{"a", "b", "c", "d", "e"}}}, true},
		{"correct index too high", []Question{{Prompt: "q", Options: []string{"a", "b"}, CorrectIndex: 2}}, true},
		{"correct index negative", []Question{{Prompt: "q", Options: []string{"a", "b"}, CorrectIndex: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCatalog(tt.catalog)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCatalog() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCatalogDefault(t *testing.T) {
	catalog, err := loadCatalog("")
	if err != nil {
		t.Fatalf("loading embedded catalog: %v", err)
	}
	if len(catalog) == 0 {
		t.Fatal("embedded catalog is empty")
	}
	if !catalog[3].IsBonus {
		t.Error("expected a bonus question in position 4")
	}
}

func TestLoadCatalogFile(t *testing.T) {
	data := `
main:
  - question: "Pick one"
    options: ["yes", "no"]
    correctIndex: 0
  - question: "Pick another"
    options: ["left", "right", "up"]
    correctIndex: 2
  - question: "Last main"
    options: ["a", "b"]
    correctIndex: 1
bonus:
  - question: "Hidden picture"
    options: ["x", "y", "z"]
    correctIndex: 1
    image: "/before.png"
    revealImage: "/after.png"
`

	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := loadCatalog(path)
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if len(catalog) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(catalog))
	}

	bonus := catalog[3]
	if !bonus.IsBonus {
		t.Error("bonus question not tagged")
	}
	if bonus.Image != "/before.png" || bonus.RevealImage != "/after.png" {
		t.Errorf("images did not pass through: %q, %q", bonus.Image, bonus.RevealImage)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	if _, err := loadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("main: [not: valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCatalog(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	data := "main:\n  - question: \"q\"\n    options: [\"a\", \"b\"]\n    correctIndex: 5\n"
	if err := os.WriteFile(invalid, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCatalog(invalid); err == nil {
		t.Error("expected error for out-of-range correct index")
	}
}
