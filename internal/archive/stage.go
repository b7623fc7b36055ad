package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
	"swinpack/internal/logging"
)

// Source permission baseline: owner/group read-write, others read, no
// write. Only the bits under the mask are compared and rewritten; execute
// bits are left alone.
const (
	baselineMode = os.FileMode(0o664)
	permMask     = os.FileMode(0o666)
)

type member struct {
	name string
	src  string
}

func members(fileSet *domain.FileSet) []member {
	out := []member{
		{filepath.Base(fileSet.Vex), fileSet.Vex},
		{filepath.Base(fileSet.V2D), fileSet.V2D},
	}
	for _, name := range fileSet.Inputs.Names() {
		src, _ := fileSet.Inputs.Get(name)
		out = append(out, member{name, src})
	}
	for _, name := range fileSet.Others.Names() {
		src, _ := fileSet.Others.Get(name)
		out = append(out, member{name, src})
	}
	return out
}

// stage populates the staging directory with symbolic links to the fully
// resolved source paths, mirroring each member name. Source files whose
// permission bits deviate from the baseline are normalized in place.
func (b *Builder) stage(staging string, fileSet *domain.FileSet) error {
	for _, m := range members(fileSet) {
		real, err := filepath.EvalSymlinks(m.src)
		if err != nil {
			return apperr.Wrap(apperr.IOFailure, "resolve", err, m.src)
		}
		if err := b.normalizeMode(real); err != nil {
			return err
		}
		link := filepath.Join(staging, m.name)
		if err := os.MkdirAll(filepath.Dir(link), 0o775); err != nil {
			return apperr.Wrap(apperr.IOFailure, "stage", err, link)
		}
		if err := os.Symlink(real, link); err != nil {
			return apperr.Wrap(apperr.IOFailure, "stage", err, real, link)
		}
	}
	return nil
}

// normalizeMode rewrites the masked permission bits of the source file to
// the baseline. This intentionally mutates the source file, not the staged
// link.
func (b *Builder) normalizeMode(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperr.Wrap(apperr.IOFailure, "stat", err, path)
	}
	perm := info.Mode().Perm()
	if perm&permMask == baselineMode&permMask {
		return nil
	}
	want := (perm &^ permMask) | (baselineMode & permMask)
	b.Logger.Verbosef("normalizing mode of %s: %o -> %o", path, perm, want)
	if err := os.Chmod(path, want); err != nil {
		return apperr.Wrap(apperr.IOFailure, "chmod", err, path)
	}
	return nil
}

// RemoveOriginals deletes the loose files that went into a successful
// archive, ignoring already-missing files, then removes any directories left
// empty, deepest first.
func RemoveOriginals(fileSet *domain.FileSet, lg logging.Logger) error {
	dirs := make(map[string]struct{})
	for _, path := range fileSet.Paths() {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return apperr.Wrap(apperr.IOFailure, "remove", err, path)
		}
		if err == nil {
			lg.Verbosef("removed %s", path)
		}
		dirs[filepath.Dir(path)] = struct{}{}
	}

	for _, dir := range deepestFirst(dirs) {
		// Only empty directories go; ENOTEMPTY and friends are expected.
		if err := os.Remove(dir); err == nil {
			lg.Verbosef("removed empty directory %s", dir)
		}
	}
	return nil
}

func deepestFirst(dirs map[string]struct{}) []string {
	out := make([]string, 0, len(dirs))
	for dir := range dirs {
		out = append(out, dir)
	}
	sort.Slice(out, func(i, j int) bool {
		di := strings.Count(out[i], string(os.PathSeparator))
		dj := strings.Count(out[j], string(os.PathSeparator))
		if di != dj {
			return di > dj
		}
		return out[i] > out[j]
	})
	return out
}
