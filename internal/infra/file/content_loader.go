// Package file loads quiz content from per-language JSON files on disk,
// e.g. questions.sv.json and challenge.pl.json.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"personquiz/internal/domain"
)

// ContentLoader reads questions and challenge items from a directory.
// Per language it tries questions.<lang>.json then questions_<lang>.json
// and finally the unsuffixed questions.json; challenge files follow the
// same chain but are optional (no file means no challenge round).
type ContentLoader struct {
	dir string
}

func NewContentLoader(dir string) *ContentLoader {
	return &ContentLoader{dir: dir}
}

func (l *ContentLoader) LoadContent(_ context.Context, lang domain.Lang) (domain.Content, error) {
	var questions []domain.SourceQuestion
	found, err := l.readFirst("questions", lang, &questions)
	if err != nil {
		return domain.Content{}, err
	}
	if !found {
		return domain.Content{}, domain.ErrContentNotFound
	}

	var challenge []domain.SourceChallengeItem
	if _, err := l.readFirst("challenge", lang, &challenge); err != nil {
		return domain.Content{}, err
	}

	return domain.Content{Questions: questions, Challenge: challenge}, nil
}

// readFirst decodes the first existing candidate file into v and reports
// whether any file was found.
func (l *ContentLoader) readFirst(base string, lang domain.Lang, v interface{}) (bool, error) {
	candidates := []string{
		fmt.Sprintf("%s.%s.json", base, lang),
		fmt.Sprintf("%s_%s.json", base, lang),
		base + ".json",
	}
	for _, name := range candidates {
		path := filepath.Join(l.dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("read %s: %w", name, err)
		}
		if err := json.Unmarshal(data, v); err != nil {
			return false, fmt.Errorf("parse %s: %w", name, err)
		}
		return true, nil
	}
	return false, nil
}
