package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

func checkStore(storePath string) error {
	stat, err := os.Stat(storePath)
	if err != nil {
		return fmt.Errorf("export: cannot stat '%s': %w", storePath, err)
	}

	if !stat.IsDir() {
		return fmt.Errorf("export: local store path not a directory: '%s'", storePath)
	}
	return nil
}

func (e *Exporter) write(relPath string, content string) error {
	abs := filepath.Join(e.StorePath, relPath)
	directory := filepath.Dir(abs)

	if err := os.MkdirAll(directory, 0750); err != nil {
		return fmt.Errorf("export: couldn't create directory %s: %w", directory, err)
	}

	if err := os.WriteFile(abs, []byte(content), 0640); err != nil {
		return fmt.Errorf("export: couldn't write to file %s: %w", abs, err)
	}

	return nil
}

// prune removes Markdown files under StorePath that aren't in fresh.  fresh must be sorted.
func (e *Exporter) prune(fresh []string) (int, error) {
	localFiles, err := ListMarkdownFiles(e.StorePath)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, file := range localFiles {
		relative, err := filepath.Rel(e.StorePath, file)
		if err != nil {
			return pruned, fmt.Errorf("export: failed to get relative path: %w", err)
		}

		if _, ok := slices.BinarySearch(fresh, relative); ok {
			continue
		}

		e.Logger.Info().Str("path", relative).Msg("pruning")
		if err := os.Remove(file); err != nil {
			return pruned, fmt.Errorf("export: failed to delete: %w", err)
		}
		pruned++
	}

	return pruned, nil
}

// ListMarkdownFiles returns absolute paths of every *.md file below inFolder.  A missing folder
// just means nothing has been exported yet.
func ListMarkdownFiles(inFolder string) ([]string, error) {
	if _, err := os.Stat(inFolder); errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("export: error opening %s for file tree walk: %w", inFolder, err)
	}

	filenames := []string{}
	err := filepath.WalkDir(inFolder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("export: error during file tree walk: %w", err)
		}
		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			filenames = append(filenames, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return filenames, nil
}

// ReadFrontMatter parses the YAML header of an exported file.
func ReadFrontMatter(path string) (FrontMatter, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return FrontMatter{}, fmt.Errorf("export: couldn't read file %s: %w", path, err)
	}

	// The file opens with "---", so the header is the first YAML document.
	var header FrontMatter
	if err := yaml.NewDecoder(bytes.NewReader(source)).Decode(&header); err != nil {
		return FrontMatter{}, fmt.Errorf("export: couldn't parse header of file %s: %w", path, err)
	}
	if header.ObjectID == "" {
		return FrontMatter{}, fmt.Errorf("export: header seems broken in %s", path)
	}

	return header, nil
}
