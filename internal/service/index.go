package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var errNotText = errors.New("not valid UTF-8 text")

// collectFiles walks dir and returns indexable files in lexical order
func (s *serviceImpl) collectFiles(ctx context.Context, dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil // Skip files we can't access
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip ignored patterns, but never the root itself
		if path != dir && s.ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !s.indexable(strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	return files, nil
}

func (s *serviceImpl) ignored(name string) bool {
	for _, pattern := range s.config.IndexIgnore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func (s *serviceImpl) indexable(ext string) bool {
	if len(s.config.IndexExtensions) == 0 {
		return isIndexableFile(ext)
	}
	for _, allowed := range s.config.IndexExtensions {
		if !strings.HasPrefix(allowed, ".") {
			allowed = "." + allowed
		}
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// readPayload reads a file as one text payload
func (s *serviceImpl) readPayload(path string) (string, error) {
	if s.config.MaxFileBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat file: %w", err)
		}
		if info.Size() > s.config.MaxFileBytes {
			return "", fmt.Errorf("file %s is %d bytes, limit is %d", path, info.Size(), s.config.MaxFileBytes)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, errNotText)
	}

	return string(data), nil
}

// isIndexableFile returns true if the file extension is indexable
func isIndexableFile(ext string) bool {
	indexable := map[string]bool{
		".go":    true,
		".py":    true,
		".js":    true,
		".ts":    true,
		".rs":    true,
		".java":  true,
		".c":     true,
		".h":     true,
		".rb":    true,
		".md":    true,
		".txt":   true,
		".rst":   true,
		".csv":   true,
		".tsv":   true,
		".log":   true,
		".html":  true,
		".xml":   true,
		".yaml":  true,
		".yml":   true,
		".toml":  true,
		".json":  true,
		".sql":   true,
		".sh":    true,
		".fasta": true,
		".fa":    true,
	}
	return indexable[ext]
}
