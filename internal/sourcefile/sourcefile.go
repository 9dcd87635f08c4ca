// Package sourcefile finds, reads and rewrites source files for batch runs.
package sourcefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// errNotRegular indicates a path that is neither a file nor a directory.
var errNotRegular = errors.New("not a regular file or directory")

// skippedDirs are never descended into.
var skippedDirs = []string{"node_modules", "vendor", "dist", "build"}

// ParseExtensions splits a comma-separated extension list such as
// "go,.js" into normalised extensions (".go", ".js").
func ParseExtensions(s string) []string {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}
	return exts
}

// Expand resolves files and directories into a sorted, de-duplicated file
// list. Files named explicitly are always included; files found inside
// directories must match exts when exts is non-empty.
func Expand(paths []string, recursive bool, exts []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		switch {
		case info.Mode().IsRegular():
			add(filepath.Clean(p))
		case info.IsDir():
			found, err := Find(p, recursive, exts)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		default:
			return nil, fmt.Errorf("%s: %w", p, errNotRegular)
		}
	}

	slices.Sort(files)
	return files, nil
}

// shouldSkipDir determines if a directory should be skipped during the walk.
func shouldSkipDir(name, path, rootDir string, recursive bool) bool {
	if path == rootDir {
		return false
	}
	if slices.Contains(skippedDirs, name) {
		return true
	}
	if name != "" && name[0] == '.' {
		return true
	}
	return !recursive
}

// Find lists regular files in dir matching exts (all files when exts is
// empty). Hidden files and directories are skipped.
func Find(dir string, recursive bool, exts []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("path is not a directory")
	}

	root := filepath.Clean(dir)
	var files []string

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip inaccessible paths within the directory
		}

		if d.IsDir() {
			if shouldSkipDir(d.Name(), path, root, recursive) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && !strings.HasPrefix(d.Name(), ".") && matchesExt(d.Name(), exts) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, err
	}
	return files, nil
}

func matchesExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
}

// Read returns a file's contents and permissions.
func Read(path string) (string, fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	// #nosec G304 -- path was chosen by the user on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	return string(data), info.Mode().Perm(), nil
}

// Write replaces a file's contents atomically, keeping its permissions.
func Write(path, content string, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
