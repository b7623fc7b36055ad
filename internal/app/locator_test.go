package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	apperr "swinpack/internal/errors"
)

func write(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(name+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocate(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.vex")
	write(t, root, "a.v2d")
	write(t, root, "job1.input")
	write(t, root, "job1.calc")
	write(t, root, "job1.im")
	write(t, root, "job1.difx/DIFX_59000_000000.s0000.b0000")
	write(t, root, "notes.txt") // unclassified

	fs, err := Locator{}.Locate(root, "", "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if filepath.Base(fs.Vex) != "a.vex" || filepath.Base(fs.V2D) != "a.v2d" {
		t.Errorf("vex/v2d = %q/%q", fs.Vex, fs.V2D)
	}
	if got := fs.Inputs.Names(); !reflect.DeepEqual(got, []string{"job1.input"}) {
		t.Errorf("inputs = %v", got)
	}
	wantOthers := []string{"job1.calc", "job1.difx/DIFX_59000_000000.s0000.b0000", "job1.im"}
	if got := fs.Others.SortedNames(); !reflect.DeepEqual(got, wantOthers) {
		t.Errorf("others = %v, want %v", got, wantOthers)
	}
}

func TestLocateSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.vex")
	write(t, root, "a.v2d")
	write(t, root, "sub/job1.input")
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fs, err := Locator{}.Locate(root, "", "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fs.Inputs.Len() != 1 {
		t.Errorf("inputs = %d, want 1 despite symlink cycle", fs.Inputs.Len())
	}
}

func TestLocateSymlinkToRootSkipped(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.vex")
	write(t, root, "a.v2d")
	write(t, root, "job1.input")
	if err := os.Symlink(root, filepath.Join(root, "self")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	// The root's own identity is in the visited set, so the link back to it
	// is skipped outright instead of re-enumerated.
	fs, err := Locator{}.Locate(root, "", "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fs.Inputs.Len() != 1 {
		t.Errorf("inputs = %d, want 1", fs.Inputs.Len())
	}
}

func TestLocateHardLinkVisitedOnce(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.vex")
	write(t, root, "a.v2d")
	orig := write(t, root, "aa/job1.input")
	if err := os.MkdirAll(filepath.Join(root, "bb"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Link(orig, filepath.Join(root, "bb", "job1.input")); err != nil {
		t.Skipf("hard links unavailable: %v", err)
	}

	fs, err := Locator{}.Locate(root, "", "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	got, _ := fs.Inputs.Get("job1.input")
	if got != orig {
		t.Errorf("input path = %q, want first-visited %q (hard link must be skipped)", got, orig)
	}
}

func TestLocateLaterNameWins(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.vex")
	write(t, root, "a.v2d")
	write(t, root, "aa/job1.input")
	later := write(t, root, "bb/job1.input")

	fs, err := Locator{}.Locate(root, "", "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fs.Inputs.Len() != 1 {
		t.Fatalf("inputs = %d, want 1", fs.Inputs.Len())
	}
	got, _ := fs.Inputs.Get("job1.input")
	if got != later {
		t.Errorf("input path = %q, want later-discovered %q", got, later)
	}
}

func TestLocateSkipsDangerousNames(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.vex")
	write(t, root, "a.v2d")
	write(t, root, "job1.input")
	write(t, root, "~job2.input")
	write(t, root, "job3.input~")
	write(t, root, "job 4.input")

	fs, err := Locator{}.Locate(root, "", "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got := fs.Inputs.Names(); !reflect.DeepEqual(got, []string{"job1.input"}) {
		t.Errorf("inputs = %v, want only the safe name", got)
	}
}

func TestLocateErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		kind  apperr.Kind
	}{
		{
			name: "no vex",
			setup: func(t *testing.T, root string) {
				write(t, root, "a.v2d")
				write(t, root, "job1.input")
			},
			kind: apperr.NotFound,
		},
		{
			name: "ambiguous vex",
			setup: func(t *testing.T, root string) {
				write(t, root, "a.vex")
				write(t, root, "b.vex")
				write(t, root, "a.v2d")
				write(t, root, "job1.input")
			},
			kind: apperr.Ambiguous,
		},
		{
			name: "no inputs",
			setup: func(t *testing.T, root string) {
				write(t, root, "a.vex")
				write(t, root, "a.v2d")
			},
			kind: apperr.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)
			_, err := Locator{}.Locate(root, "", "")
			if err == nil {
				t.Fatal("Locate should fail")
			}
			if kind := apperr.KindOf(err); kind != tt.kind {
				t.Errorf("error kind = %v, want %v", kind, tt.kind)
			}
		})
	}
}

func TestLocateOverrides(t *testing.T) {
	root := t.TempDir()
	// Two vex candidates would be ambiguous without the override.
	vex := write(t, root, "a.vex")
	write(t, root, "b.vex")
	v2d := write(t, root, "a.v2d")
	write(t, root, "job1.input")

	fs, err := Locator{}.Locate(root, vex, v2d)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fs.Vex != vex || fs.V2D != v2d {
		t.Errorf("overrides not honored: %q %q", fs.Vex, fs.V2D)
	}
}
