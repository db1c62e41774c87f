package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/rolodex/internal/config"
	"github.com/hpungsan/rolodex/internal/errors"
)

// PathCheckMode selects the rules applied to an import or export path.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import source
	PathCheckWrite                      // export target
)

// pathRule lists what a mode accepts. Subdirs are relative to ~/.rolodex.
type pathRule struct {
	extensions []string
	subdirs    []string
	mustExist  bool
}

var pathRules = map[PathCheckMode]pathRule{
	PathCheckRead: {
		extensions: []string{".jsonl", ".ndjson"},
		subdirs:    []string{"imports", "exports"},
		mustExist:  true,
	},
	PathCheckWrite: {
		extensions: []string{".vcf", ".vcard"},
		subdirs:    []string{"exports"},
	},
}

// Extensions returns the file extensions accepted for the mode, preferred
// first.
func (m PathCheckMode) Extensions() []string {
	return pathRules[m].extensions
}

func (r pathRule) allowsExtension(path string) bool {
	ext := filepath.Ext(path)
	return slices.ContainsFunc(r.extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// ValidatePath checks an import or export path before it is opened.
//
// The file must sit directly in one of the mode's directories under
// ~/.rolodex or in cfg.AllowedPaths; subdirectories are refused so no
// intermediate component can be swapped for a symlink. AllowUnsafePaths
// lifts the directory rule only. The final component must never be a
// symlink or anything other than a regular file.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	rule, ok := pathRules[mode]
	if !ok {
		return errors.NewInvalidRequest(fmt.Sprintf("unknown path mode %d", mode))
	}
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	if !rule.allowsExtension(absPath) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must end in %s", strings.Join(rule.extensions, " or ")))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		dirs, err := allowedDirs(rule, cfg)
		if err != nil {
			return err
		}
		parent := filepath.Dir(absPath)
		if !slices.Contains(dirs, parent) {
			return errors.NewInvalidRequest(fmt.Sprintf(
				"file must be directly in one of %s (no subdirectories)", strings.Join(dirs, ", ")))
		}
		if isSymlink(parent) {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	info, err := os.Lstat(absPath)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		return errors.NewInvalidRequest("path must not be a symlink")
	case err == nil && !info.Mode().IsRegular():
		return errors.NewInvalidRequest("path is not a regular file")
	case os.IsNotExist(err) && rule.mustExist:
		return errors.NewFileNotFound(path)
	}
	return nil
}

// allowedDirs returns the mode's directories followed by configured
// allowed_paths, absolute and with symlinked entries resolved.
func allowedDirs(rule pathRule, cfg *config.Config) ([]string, error) {
	var dirs []string
	for _, sub := range rule.subdirs {
		dir, err := rolodexDir(sub)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	for i, d := range dirs {
		if !isSymlink(d) {
			continue
		}
		resolved, err := filepath.EvalSymlinks(d)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
		}
		dirs[i] = resolved
	}
	return dirs, nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// rolodexDir returns ~/.rolodex/<sub>.
func rolodexDir(sub string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(home, config.DirName, sub), nil
}

// DefaultExportsDir returns ~/.rolodex/exports.
func DefaultExportsDir() (string, error) {
	return rolodexDir("exports")
}

// ExportFilename turns base into a safe vCard file name.
func ExportFilename(base string) string {
	return SanitizeForFilename(base) + PathCheckWrite.Extensions()[0]
}

// defaultExportPath is ~/.rolodex/exports/contacts-<timestamp>.vcf.
func defaultExportPath(now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ExportFilename("contacts-"+now.Format("2006-01-02T150405"))), nil
}

// containsTraversal reports whether any component of path is "..". Both
// separators are checked so Windows-style input is caught everywhere.
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// SanitizeForFilename makes s safe as a single file name component, such as
// the name of a downloaded vCard. Separators and characters Windows rejects
// become dashes; control characters are dropped.
func SanitizeForFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r < 32 || r == 127:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '-'
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "..", "-")

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' })
	s = strings.Trim(strings.Join(parts, "-"), " .")
	if s == "" {
		return "unnamed"
	}
	return s
}
