package ingest

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileFilter decides whether a relative path is ingested. Returning false
// for a directory skips its whole subtree.
type FileFilter func(relPath string, isDir bool) bool

// BuildFileFilter creates a FileFilter that:
// 1. Always excludes VCS metadata directories
// 2. Checks the excludes list (force-exclude, highest priority)
// 3. Checks the includes list (force-include, overrides gitignore)
// 4. Applies gitignore rules collected from the source tree
func BuildFileFilter(sourceDir string, gitignoreEnabled bool, includes, excludes []string) FileFilter {
	var matcher *gitignoreMatcher
	if gitignoreEnabled {
		matcher, _ = newGitignoreMatcher(sourceDir)
	}

	return func(relPath string, isDir bool) bool {
		base := filepath.Base(relPath)
		if base == ".git" || base == ".gitignore" {
			return false
		}

		for _, exc := range excludes {
			if relPath == exc || strings.HasPrefix(relPath, exc+"/") {
				return false
			}
		}

		for _, inc := range includes {
			if relPath == inc || strings.HasPrefix(relPath, inc+"/") {
				return true
			}
		}

		if matcher != nil && matcher.isIgnored(relPath, isDir) {
			return false
		}
		return true
	}
}

// gitignoreMatcher collects .gitignore rules from a source tree
type gitignoreMatcher struct {
	matchers []scopedMatcher
}

type scopedMatcher struct {
	dirPrefix string
	ignore    *ignore.GitIgnore
}

func newGitignoreMatcher(sourceDir string) (*gitignoreMatcher, error) {
	m := &gitignoreMatcher{}

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if filepath.Base(path) == ".git" && path != sourceDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(path) != ".gitignore" {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		relDir, relErr := filepath.Rel(sourceDir, filepath.Dir(path))
		if relErr != nil {
			return nil
		}
		if relDir == "." {
			relDir = ""
		}

		gi := ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
		m.matchers = append(m.matchers, scopedMatcher{
			dirPrefix: relDir,
			ignore:    gi,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *gitignoreMatcher) isIgnored(relPath string, isDir bool) bool {
	if m == nil || len(m.matchers) == 0 {
		return false
	}

	checkPath := relPath
	if isDir {
		checkPath = relPath + "/"
	}

	for _, sm := range m.matchers {
		var pathToCheck string
		if sm.dirPrefix == "" {
			pathToCheck = checkPath
		} else {
			prefix := sm.dirPrefix + "/"
			if !strings.HasPrefix(relPath, prefix) {
				continue
			}
			pathToCheck = strings.TrimPrefix(checkPath, prefix)
		}

		if sm.ignore.MatchesPath(pathToCheck) {
			return true
		}
	}
	return false
}
