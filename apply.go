// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

const (
	fileMode       os.FileMode = 0644
	executableMode os.FileMode = 0755
	dirMode        os.FileMode = 0755
)

// FileAction represents the change a file would undergo when applying a plan
type FileAction string

const (
	FileActionAdd      FileAction = "add"
	FileActionUpdate   FileAction = "update"
	FileActionConflict FileAction = "conflict"
)

// PlannedChange is a file and the action applying the plan would take on it
type PlannedChange struct {
	Path   string
	Action FileAction
	// Reason explains conflicts
	Reason string
}

// Apply writes every file in plan to fs, which is rooted at the project root.
//
// All destinations are checked before anything is written. Existing empty files
// may be replaced, anything else at a destination is a conflict. When a write
// fails every file and directory created by this call is removed and replaced
// empty files are restored, leaving fs as it was.
func Apply(plan *Plan, fs billy.Filesystem) (err error) {
	for _, f := range plan.Files {
		_, perr := checkDestination(fs, f.Path)
		if perr != nil {
			return perr
		}
	}

	tx := &transaction{fs: fs}
	defer func() {
		if err == nil {
			return
		}

		rbErr := tx.rollback()
		if rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
	}()

	for _, f := range plan.Files {
		err = tx.write(f)
		if err != nil {
			return err
		}
	}

	return nil
}

// ApplyDir applies plan to the directory root, creating it when needed. A root
// created by this call is removed again if the plan cannot be applied.
func ApplyDir(plan *Plan, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return &IOFailureError{Path: root, Err: err}
	}

	created, err := createRoot(abs)
	if err != nil {
		return err
	}

	err = Apply(plan, osfs.New(abs, osfs.WithBoundOS()))
	if err != nil {
		for i := len(created) - 1; i >= 0; i-- {
			os.Remove(created[i])
		}
	}

	return err
}

// Preview reports the action applying plan to fs would take on every file without writing anything
func Preview(plan *Plan, fs billy.Filesystem) ([]PlannedChange, error) {
	var res []PlannedChange

	for _, f := range plan.Files {
		exists, err := checkDestination(fs, f.Path)
		var conflict *TargetConflictError
		switch {
		case errors.As(err, &conflict):
			res = append(res, PlannedChange{Path: f.Path, Action: FileActionConflict, Reason: conflict.Reason})
		case err != nil:
			return nil, err
		case exists:
			res = append(res, PlannedChange{Path: f.Path, Action: FileActionUpdate})
		default:
			res = append(res, PlannedChange{Path: f.Path, Action: FileActionAdd})
		}
	}

	return res, nil
}

// PreviewDir previews plan against the directory root, which need not exist
func PreviewDir(plan *Plan, root string) ([]PlannedChange, error) {
	st, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		res := make([]PlannedChange, len(plan.Files))
		for i, f := range plan.Files {
			res[i] = PlannedChange{Path: f.Path, Action: FileActionAdd}
		}
		return res, nil
	case err != nil:
		return nil, &IOFailureError{Path: root, Err: err}
	case !st.IsDir():
		return nil, &TargetConflictError{Path: root, Reason: "not a directory"}
	}

	return Preview(plan, osfs.New(root, osfs.WithBoundOS()))
}

// createRoot makes root and returns the directories it had to create, shallowest first
func createRoot(root string) ([]string, error) {
	var missing []string
	for dir := root; ; dir = filepath.Dir(dir) {
		st, err := os.Stat(dir)
		if err == nil {
			if !st.IsDir() {
				return nil, &TargetConflictError{Path: dir, Reason: "not a directory"}
			}
			break
		}
		if !os.IsNotExist(err) {
			return nil, &IOFailureError{Path: dir, Err: err}
		}

		missing = append([]string{dir}, missing...)

		if filepath.Dir(dir) == dir {
			break
		}
	}

	if len(missing) == 0 {
		return nil, nil
	}

	err := os.MkdirAll(root, dirMode)
	if err != nil {
		for i := len(missing) - 1; i >= 0; i-- {
			os.Remove(missing[i])
		}
		return nil, &IOFailureError{Path: root, Err: err}
	}

	return missing, nil
}

// ancestors lists the parent directories of a slash path, shallowest first
func ancestors(p string) []string {
	var res []string
	dir := path.Dir(p)
	for dir != "." && dir != "/" {
		res = append([]string{dir}, res...)
		dir = path.Dir(dir)
	}

	return res
}

// checkDestination reports whether an empty file already exists at p, or why p cannot be written
func checkDestination(fs billy.Filesystem, p string) (bool, error) {
	for _, dir := range ancestors(p) {
		st, err := fs.Lstat(filepath.FromSlash(dir))
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, &IOFailureError{Path: dir, Err: err}
		}
		if !st.IsDir() {
			return false, &TargetConflictError{Path: p, Reason: fmt.Sprintf("%s is not a directory", dir)}
		}
	}

	st, err := fs.Lstat(filepath.FromSlash(p))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, &IOFailureError{Path: p, Err: err}
	case st.IsDir():
		return false, &TargetConflictError{Path: p, Reason: "a directory exists at this path"}
	case !st.Mode().IsRegular():
		return false, &TargetConflictError{Path: p, Reason: "a non regular file exists at this path"}
	case st.Size() > 0:
		return false, &TargetConflictError{Path: p, Reason: "a file with content already exists"}
	}

	return true, nil
}

type writtenFile struct {
	path    string
	existed bool
	mode    os.FileMode
}

// transaction records what a single Apply call changed so it can be undone
type transaction struct {
	fs    billy.Filesystem
	files []writtenFile
	dirs  []string
}

func (t *transaction) mkdirs(p string) error {
	for _, dir := range ancestors(p) {
		native := filepath.FromSlash(dir)

		_, err := t.fs.Lstat(native)
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return &IOFailureError{Path: dir, Err: err}
		}

		err = t.fs.MkdirAll(native, dirMode)
		if err != nil {
			return &IOFailureError{Path: dir, Err: err}
		}
		t.dirs = append(t.dirs, native)
	}

	return nil
}

func (t *transaction) write(f PlannedFile) error {
	err := t.mkdirs(f.Path)
	if err != nil {
		return err
	}

	native := filepath.FromSlash(f.Path)
	record := writtenFile{path: native}

	st, err := t.fs.Lstat(native)
	if err == nil {
		record.existed = true
		record.mode = st.Mode().Perm()
	}

	perm := fileMode
	if f.Executable {
		perm = executableMode
	}

	fh, err := t.fs.OpenFile(native, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return &IOFailureError{Path: f.Path, Err: err}
	}
	t.files = append(t.files, record)

	_, err = fh.Write(f.Content)
	cerr := fh.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		return &IOFailureError{Path: f.Path, Err: err}
	}

	if f.Executable {
		err = chmod(t.fs, native, executableMode)
		if err != nil {
			return &IOFailureError{Path: f.Path, Err: err}
		}
	}

	return nil
}

func (t *transaction) rollback() error {
	var errs []error

	for i := len(t.files) - 1; i >= 0; i-- {
		w := t.files[i]

		if !w.existed {
			err := t.fs.Remove(w.path)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}

		fh, err := t.fs.OpenFile(w.path, os.O_WRONLY|os.O_TRUNC, w.mode)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = fh.Close()
		if err != nil {
			errs = append(errs, err)
		}

		err = chmod(t.fs, w.path, w.mode)
		if err != nil {
			errs = append(errs, err)
		}
	}

	for i := len(t.dirs) - 1; i >= 0; i-- {
		err := t.fs.Remove(t.dirs[i])
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	t.files = nil
	t.dirs = nil

	return errors.Join(errs...)
}

// chmod changes modes on filesystems that support it, others keep the mode given at creation
func chmod(fs billy.Filesystem, p string, mode os.FileMode) error {
	ch, ok := fs.(billy.Chmod)
	if !ok {
		return nil
	}

	err := ch.Chmod(p, mode)
	if errors.Is(err, billy.ErrNotSupported) {
		return nil
	}

	return err
}
