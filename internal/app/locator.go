package app

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
	"swinpack/internal/logging"
)

// Locator discovers and classifies correlation-run files under a root
// directory. Traversal is read-only.
type Locator struct {
	Logger logging.Logger
}

var (
	// Names starting or ending with ~ or -, or containing glob or shell
	// metacharacters, are skipped to avoid downstream path-ambiguity and
	// shell-injection hazards.
	reBadName = regexp.MustCompile("^[~-]|[~-]$|[*?\\[\\]{}<>|&;$'\"`\\s]")

	reVex        = regexp.MustCompile(`(?i)\.vex(\.obs)?$`)
	reV2D        = regexp.MustCompile(`(?i)\.v2d$`)
	reInput      = regexp.MustCompile(`(?i)\.input$`)
	reOther      = regexp.MustCompile(`(?i)\.(calc|flag|im|machines|threads|difxlog|joblist)$`)
	rePayloadDir = regexp.MustCompile(`(?i)\.difx$`)
)

// Locate walks root in lexically sorted directory-entry order and builds a
// FileSet. Each physical file is visited at most once regardless of symlink
// cycles or duplicate hard links; when two files map to the same member
// name, the later-discovered path wins.
//
// vexOverride and v2dOverride suppress auto-discovery for the respective
// file. Without an override, exactly one candidate must exist.
func (l Locator) Locate(root, vexOverride, v2dOverride string) (*domain.FileSet, error) {
	stop := l.Logger.Measure("Scanning source tree")
	defer stop()

	w := &walker{
		locator: l,
		visited: make(map[fileID]struct{}),
		fileSet: &domain.FileSet{},
		findVex: vexOverride == "",
		findV2D: v2dOverride == "",
	}
	// Record the root itself so a symlink pointing back at it is skipped
	// rather than re-enumerated.
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOFailure, "stat", err, root)
	}
	if id, ok := identify(rootInfo); ok {
		w.visited[id] = struct{}{}
	}
	if err := w.walk(root); err != nil {
		return nil, err
	}

	if w.fileSet.Vex, err = resolveCandidate("vex", vexOverride, w.vexCandidates); err != nil {
		return nil, err
	}
	if w.fileSet.V2D, err = resolveCandidate("v2d", v2dOverride, w.v2dCandidates); err != nil {
		return nil, err
	}
	if w.fileSet.Inputs.Len() == 0 {
		return nil, apperr.New(apperr.NotFound, "locate",
			"no per-job input files found", root)
	}

	l.Logger.Verbosef("Found %d input and %d other files under %s",
		w.fileSet.Inputs.Len(), w.fileSet.Others.Len(), root)
	return w.fileSet, nil
}

// walker carries the visited set explicitly; it is owned by one Locate call
// and never shared.
type walker struct {
	locator       Locator
	visited       map[fileID]struct{}
	fileSet       *domain.FileSet
	vexCandidates []string
	v2dCandidates []string
	findVex       bool
	findV2D       bool
}

func (w *walker) walk(dir string) error {
	entries, err := os.ReadDir(dir) // sorted by name
	if err != nil {
		return apperr.Wrap(apperr.IOFailure, "read directory", err, dir)
	}
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		if reBadName.MatchString(name) {
			w.locator.Logger.Verbosef("skipping unsafe name %s", path)
			continue
		}

		// Resolve the physical identity before touching the entry, so
		// symlink cycles and duplicate hard links are visited once.
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // dangling symlink
			}
			return apperr.Wrap(apperr.IOFailure, "stat", err, path)
		}
		id, ok := identify(info)
		if ok {
			if _, seen := w.visited[id]; seen {
				continue
			}
			w.visited[id] = struct{}{}
		}

		switch {
		case info.IsDir():
			if err := w.walk(path); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			w.classify(dir, name, path)
		}
	}
	return nil
}

func (w *walker) classify(dir, name, path string) {
	switch {
	case w.findVex && reVex.MatchString(name):
		w.vexCandidates = append(w.vexCandidates, path)
	case w.findV2D && reV2D.MatchString(name):
		w.v2dCandidates = append(w.v2dCandidates, path)
	case reInput.MatchString(name):
		w.fileSet.Inputs.Set(name, path)
	case reOther.MatchString(name):
		w.fileSet.Others.Set(name, path)
	case rePayloadDir.MatchString(filepath.Base(dir)):
		// Binary payload file nested in a per-job payload directory;
		// keep the two-component relative name.
		w.fileSet.Others.Set(filepath.Base(dir)+"/"+name, path)
	}
}

func resolveCandidate(what, override string, candidates []string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", apperr.Wrap(apperr.NotFound, "locate "+what, err, override)
		}
		return override, nil
	}
	switch len(candidates) {
	case 0:
		return "", apperr.New(apperr.NotFound, "locate "+what,
			fmt.Sprintf("no %s file found; pass --%s", what, strings.ToLower(what)))
	case 1:
		return candidates[0], nil
	default:
		return "", apperr.New(apperr.Ambiguous, "locate "+what,
			fmt.Sprintf("%d %s candidates found; pass --%s to pick one", len(candidates), what, strings.ToLower(what)),
			candidates...)
	}
}
