package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"

	"github.com/kart-io/naughty-assistant/pkg/infra/pool"
)

const (
	// DefaultTag is the only tag ever assigned to knowledge entries.
	DefaultTag = "example"

	// NoMatches is returned in place of an empty result list.
	NoMatches = "No matches found."

	knowledgeSuffix = ".txt"
	previewRunes    = 100
)

// Knowledge is a directory of tagged plain-text entries.
type Knowledge struct {
	dir  string
	pool *pool.Pool
}

// NewKnowledge creates a knowledge store rooted at dir. Files are read on
// p when it is non-nil, otherwise sequentially.
func NewKnowledge(dir string, p *pool.Pool) *Knowledge {
	return &Knowledge{dir: dir, pool: p}
}

// Dir returns the knowledge directory.
func (k *Knowledge) Dir() string {
	return k.dir
}

// Search returns one "Found in <file>: <preview>..." line per .txt file
// whose content contains query, ignoring case, ordered by file name.
// A missing directory yields no results.
func (k *Knowledge) Search(ctx context.Context, query string) ([]string, error) {
	entries, err := os.ReadDir(k.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), knowledgeSuffix) {
			names = append(names, e.Name())
		}
	}

	needle := strings.ToLower(query)
	matches := make([]string, len(names))
	match := func(_ context.Context, i int) error {
		data, err := os.ReadFile(filepath.Join(k.dir, names[i]))
		if err != nil {
			return fmt.Errorf("read %s: %w", names[i], err)
		}
		content := string(data)
		if strings.Contains(strings.ToLower(content), needle) {
			matches[i] = fmt.Sprintf("Found in %s: %s...", names[i], preview(content))
		}
		return nil
	}

	if k.pool != nil {
		err = k.pool.Map(ctx, len(names), match)
	} else {
		for i := range names {
			if err = match(ctx, i); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	results := matches[:0]
	for _, m := range matches {
		if m != "" {
			results = append(results, m)
		}
	}
	return results, nil
}

// TagAndSave writes content under filename with a tag header, replacing
// any existing entry.
func (k *Knowledge) TagAndSave(content, filename string) (string, error) {
	tagged := fmt.Sprintf("Tags: %s\n%s", DefaultTag, content)
	if err := os.WriteFile(filepath.Join(k.dir, filename), []byte(tagged), 0o644); err != nil {
		return "", err
	}
	return "Tagged and saved as " + filename, nil
}

// Watch calls onChange with the file name whenever a .txt entry is created,
// written, removed or renamed. It blocks until ctx is done.
func (k *Knowledge) Watch(ctx context.Context, onChange func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(k.dir); err != nil {
		return fmt.Errorf("watch %s: %w", k.dir, err)
	}
	logger.Infow("Watching knowledge directory", "dir", k.dir)

	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevant == 0 || !strings.HasSuffix(event.Name, knowledgeSuffix) {
				continue
			}
			logger.Debugw("Knowledge entry changed", "file", event.Name, "op", event.Op.String())
			onChange(filepath.Base(event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Knowledge watcher error", "error", err.Error())
		}
	}
}

func preview(s string) string {
	i := 0
	for pos := range s {
		if i == previewRunes {
			return s[:pos]
		}
		i++
	}
	return s
}
