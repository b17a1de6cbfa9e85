// Package hookdir installs and removes the wrapper scripts Gerrit executes
// from its site hooks directory.
package hookdir

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/gofrs/flock"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/hooks"
	"github.com/grovetools/gerrit-hooks/version"
	"github.com/moby/patternmatcher"
)

const (
	// Marker identifies wrappers written by this package.
	Marker = "gerrit-hooks managed wrapper"

	// BackupSuffix is appended to an unmanaged hook replaced by a wrapper.
	BackupSuffix = ".pre-gerrit-hooks"

	lockName    = ".gerrit-hooks.lock"
	lockRetry   = 50 * time.Millisecond
	lockTimeout = 10 * time.Second
	wrapperPerm = 0o755
)

var wrapperTemplate = template.Must(template.New("wrapper").
	Funcs(template.FuncMap{"shquote": shellQuote}).
	Parse(`#!/bin/sh
# {{.Marker}} - {{.Hook}}
# Auto-generated, do not edit directly
exec {{shquote .Binary}} run {{.Hook}} "$@"
`))

// Action is what Install or Uninstall did to one hook file.
type Action string

const (
	Installed Action = "installed"
	Updated   Action = "updated"
	BackedUp  Action = "backed-up"
	Removed   Action = "removed"
	Restored  Action = "restored"
	Skipped   Action = "skipped"
)

// Result reports the action taken for one hook.
type Result struct {
	Hook   hooks.Hook
	Path   string
	Action Action
	Backup string
}

// Status describes the file for one hook in the directory.
type Status struct {
	Hook    hooks.Hook
	Path    string
	Exists  bool
	Managed bool
	Backup  bool
}

// Manager manages wrapper scripts in one hooks directory.
type Manager struct {
	dir    string
	binary string
}

// NewManager creates a manager for dir whose wrappers exec binary.
func NewManager(dir, binary string) *Manager {
	if binary == "" {
		binary = version.Binary
	}
	return &Manager{dir: dir, binary: binary}
}

// Dir returns the hooks directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns where h's wrapper lives.
func (m *Manager) Path(h hooks.Hook) string {
	return filepath.Join(m.dir, h.External())
}

// EnsureDir checks that the hooks directory exists, creating it if create is set.
func (m *Manager) EnsureDir(create bool) error {
	info, err := os.Stat(m.dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errors.HooksDirNotFound(m.dir).WithDetail("reason", "not a directory")
	case os.IsNotExist(err) && create:
		if err := os.MkdirAll(m.dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ErrCodePermissionDenied, "create hooks directory").
				WithDetail("dir", m.dir)
		}
		return nil
	case os.IsNotExist(err):
		return errors.HooksDirNotFound(m.dir)
	default:
		return errors.Wrap(err, errors.ErrCodePermissionDenied, "stat hooks directory").
			WithDetail("dir", m.dir)
	}
}

// Select returns the catalog hooks whose external names match only (all
// hooks when empty) and do not match exclude, in catalog order.
func Select(only, exclude []string) ([]hooks.Hook, error) {
	patterns := append([]string(nil), only...)
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	for _, p := range exclude {
		patterns = append(patterns, "!"+p)
	}

	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid hook pattern").
			WithDetail("patterns", patterns)
	}

	var selected []hooks.Hook
	for h := range hooks.Seq() {
		ok, err := pm.MatchesOrParentMatches(h.External())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid hook pattern")
		}
		if ok {
			selected = append(selected, h)
		}
	}
	return selected, nil
}

// Install writes a wrapper for every hook in hs. An existing unmanaged
// file is renamed to <name>.pre-gerrit-hooks first; if that backup already
// exists the hook is left alone and Install fails with BACKUP_EXISTS.
func (m *Manager) Install(ctx context.Context, hs []hooks.Hook) ([]Result, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	results := make([]Result, 0, len(hs))
	for _, h := range hs {
		res, err := m.installHook(h)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *Manager) installHook(h hooks.Hook) (Result, error) {
	path := m.Path(h)
	res := Result{Hook: h, Path: path, Action: Installed}

	content, err := m.render(h)
	if err != nil {
		return res, err
	}

	if existing, err := os.ReadFile(path); err == nil {
		switch {
		case bytes.Equal(existing, content):
			res.Action = Skipped
			return res, nil
		case isManaged(existing):
			res.Action = Updated
		default:
			backup := path + BackupSuffix
			if _, err := os.Lstat(backup); err == nil {
				return res, errors.BackupExists(path, backup)
			}
			if err := os.Rename(path, backup); err != nil {
				return res, errors.Wrap(err, errors.ErrCodePermissionDenied, "backup existing hook").
					WithDetail("path", path)
			}
			res.Action = BackedUp
			res.Backup = backup
		}
	}

	// #nosec G306 - Gerrit executes hooks directly
	if err := os.WriteFile(path, content, wrapperPerm); err != nil {
		return res, errors.Wrap(err, errors.ErrCodePermissionDenied, "write hook file").
			WithDetail("path", path)
	}
	// WriteFile keeps the mode of a file it truncates.
	if err := os.Chmod(path, wrapperPerm); err != nil {
		return res, errors.Wrap(err, errors.ErrCodePermissionDenied, "chmod hook file").
			WithDetail("path", path)
	}
	return res, nil
}

// Uninstall removes managed wrappers for hs and restores any backup.
// Unmanaged files are left alone.
func (m *Manager) Uninstall(ctx context.Context, hs []hooks.Hook) ([]Result, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	results := make([]Result, 0, len(hs))
	for _, h := range hs {
		path := m.Path(h)
		res := Result{Hook: h, Path: path, Action: Skipped}

		content, err := os.ReadFile(path)
		if err != nil || !isManaged(content) {
			results = append(results, res)
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return results, errors.Wrap(err, errors.ErrCodePermissionDenied, "remove hook file").
				WithDetail("path", path)
		}
		res.Action = Removed

		backup := path + BackupSuffix
		if _, err := os.Stat(backup); err == nil {
			if err := os.Rename(backup, path); err != nil {
				return results, errors.Wrap(err, errors.ErrCodePermissionDenied, "restore hook backup").
					WithDetail("path", backup)
			}
			res.Action = Restored
			res.Backup = backup
		}
		results = append(results, res)
	}
	return results, nil
}

// Status reports the state of every catalog hook in the directory.
func (m *Manager) Status() []Status {
	out := make([]Status, 0, hooks.Len())
	for h := range hooks.Seq() {
		st := Status{Hook: h, Path: m.Path(h)}
		if content, err := os.ReadFile(st.Path); err == nil {
			st.Exists = true
			st.Managed = isManaged(content)
		}
		if _, err := os.Stat(st.Path + BackupSuffix); err == nil {
			st.Backup = true
		}
		out = append(out, st)
	}
	return out
}

func (m *Manager) render(h hooks.Hook) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Marker string
		Hook   string
		Binary string
	}{
		Marker: Marker,
		Hook:   h.External(),
		Binary: m.binary,
	}
	if err := wrapperTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "render hook wrapper")
	}
	return buf.Bytes(), nil
}

// lock takes an exclusive lock on the hooks directory so concurrent
// installs do not interleave backups.
func (m *Manager) lock(ctx context.Context) (func(), error) {
	if err := m.EnsureDir(false); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	fileLock := flock.New(filepath.Join(m.dir, lockName))
	locked, err := fileLock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePermissionDenied, "acquire hooks directory lock").
			WithDetail("dir", m.dir)
	}
	if !locked {
		return nil, errors.New(errors.ErrCodePermissionDenied, fmt.Sprintf("hooks directory %s is locked by another process", m.dir))
	}
	return func() { _ = fileLock.Unlock() }, nil
}

func isManaged(content []byte) bool {
	return bytes.Contains(content, []byte(Marker))
}

// shellQuote quotes s for POSIX sh.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r == '/' || r == '.' || r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
