package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"personquiz/internal/domain"
)

func TestLoadContentPrefersLanguageFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions.sv.json", `[{"id":1,"text":"sv?","options":{"1":"a","X":"b","2":"c"},"correct":"X"}]`)
	writeFile(t, dir, "questions.json", `[{"id":9,"text":"fallback?","options":{"1":"a","X":"b","2":"c"},"correct":"1"}]`)
	writeFile(t, dir, "challenge.sv.json", `[{"id":5,"label":"sv item","correct":true}]`)

	loader := NewContentLoader(dir)
	content, err := loader.LoadContent(context.Background(), domain.LangSwedish)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(content.Questions) != 1 || content.Questions[0].ID != 1 {
		t.Fatalf("expected language-specific questions, got %+v", content.Questions)
	}
	if content.Questions[0].Correct != domain.OptionDraw {
		t.Fatalf("expected correct X, got %q", content.Questions[0].Correct)
	}
	if len(content.Challenge) != 1 || !content.Challenge[0].Correct {
		t.Fatalf("expected challenge item, got %+v", content.Challenge)
	}
}

func TestLoadContentFallsBackThroughChain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions_pl.json", `[{"id":2,"text":"pl?","options":{"1":"a","X":"b","2":"c"},"correct":"2"}]`)

	loader := NewContentLoader(dir)
	content, err := loader.LoadContent(context.Background(), domain.LangPolish)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(content.Questions) != 1 || content.Questions[0].ID != 2 {
		t.Fatalf("expected underscore-style file used, got %+v", content.Questions)
	}
	// No challenge file at all is fine: empty challenge round.
	if len(content.Challenge) != 0 {
		t.Fatalf("expected no challenge items, got %+v", content.Challenge)
	}
}

func TestLoadContentMissingQuestions(t *testing.T) {
	loader := NewContentLoader(t.TempDir())
	if _, err := loader.LoadContent(context.Background(), domain.LangSwedish); err != domain.ErrContentNotFound {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
