package archive

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
	"swinpack/internal/logging"
	"swinpack/internal/meta"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testFileSet(t *testing.T) (*domain.FileSet, *domain.MetadataRecord) {
	t.Helper()
	dir := t.TempDir()
	fileSet := &domain.FileSet{
		Vex: writeFile(t, dir, "a.vex", "exper_name = A;\n"),
		V2D: writeFile(t, dir, "a.v2d", "vex = a.vex\n"),
	}
	fileSet.Inputs.Set("job1.input",
		writeFile(t, dir, "job1.input", "START MJD: 59000\nSTART SECONDS: 0\nTELESCOPE NAME 0: KK\n"))
	fileSet.Others.Set("job1.im",
		writeFile(t, dir, "job1.im", "SCAN 0 POINTING SRC: SRCA\n"))

	rec, err := meta.Extract(fileSet, 1)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return fileSet, &rec
}

func TestResolveDest(t *testing.T) {
	b := &Builder{}
	_, rec := testFileSet(t)

	dir := t.TempDir()
	got, err := b.resolveDest(dir, rec)
	if err != nil {
		t.Fatalf("resolveDest(dir): %v", err)
	}
	if want := filepath.Join(dir, "20200531_a_v001_swin.tar.bz2"); got != want {
		t.Errorf("resolveDest = %q, want %q", got, want)
	}

	explicit := filepath.Join(dir, "20200531_a_v002_swin.tar.bz2")
	if got, err = b.resolveDest(explicit, rec); err != nil || got != explicit {
		t.Errorf("resolveDest(explicit) = %q, %v", got, err)
	}

	_, err = b.resolveDest(filepath.Join(dir, "wrong-name.tar.bz2"), rec)
	if apperr.KindOf(err) != apperr.MalformedName {
		t.Errorf("error kind = %v, want %v", apperr.KindOf(err), apperr.MalformedName)
	}
}

func TestStageNormalizesSourceMode(t *testing.T) {
	fileSet, _ := testFileSet(t)
	if err := os.Chmod(fileSet.Vex, 0o600); err != nil {
		t.Fatal(err)
	}

	b := &Builder{}
	staging := t.TempDir()
	if err := b.stage(staging, fileSet); err != nil {
		t.Fatalf("stage: %v", err)
	}

	// The staged entry is a symlink to the resolved source.
	link := filepath.Join(staging, "a.vex")
	if fi, err := os.Lstat(link); err != nil || fi.Mode()&os.ModeSymlink == 0 {
		t.Errorf("staged vex is not a symlink: %v %v", fi, err)
	}
	// The source file's own mode was normalized in place.
	info, err := os.Stat(fileSet.Vex)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm() & permMask; got != baselineMode&permMask {
		t.Errorf("source mode = %o, want normalized %o", got, baselineMode&permMask)
	}
}

func TestPublishExistingFastPath(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := writeFile(t, srcDir, "20200531_a_v001_swin.tar.bz2", "archive-bytes")

	// A bogus archiver proves the fast path never invokes it.
	b := &Builder{Tar: "/nonexistent/archiver"}
	got, err := b.PublishExisting(src, destDir, false)
	if err != nil {
		t.Fatalf("PublishExisting: %v", err)
	}
	if want := filepath.Join(destDir, "20200531_a_v001_swin.tar.bz2"); got != want {
		t.Errorf("dest = %q, want %q", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != "archive-bytes" {
		t.Errorf("copied archive = %q, %v", data, err)
	}
	// Copy mode keeps the source in place.
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source removed by copy: %v", err)
	}
}

func TestPublishExistingMove(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := writeFile(t, srcDir, "20200531_a_v001_swin.tar.bz2", "archive-bytes")

	b := &Builder{}
	got, err := b.PublishExisting(src, destDir, true)
	if err != nil {
		t.Fatalf("PublishExisting: %v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != "archive-bytes" {
		t.Errorf("moved archive = %q, %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still present after move: %v", err)
	}
}

func TestPublishExistingBadName(t *testing.T) {
	srcDir := t.TempDir()
	src := writeFile(t, srcDir, "20200531_a_v001_swin.tar.bz2", "x")

	b := &Builder{}
	_, err := b.PublishExisting(src, filepath.Join(srcDir, "renamed.tar.bz2"), false)
	if apperr.KindOf(err) != apperr.MalformedName {
		t.Errorf("error kind = %v, want %v", apperr.KindOf(err), apperr.MalformedName)
	}
}

func TestPublishVanishedTempFile(t *testing.T) {
	dir := t.TempDir()
	dest := writeFile(t, dir, "20200531_a_v001_swin.tar.bz2", "already-there")

	b := &Builder{}
	// The temp file is gone but the destination holds the archive: the
	// desired end state already holds.
	if err := b.publish(filepath.Join(dir, ".gone.tmp"), dest); err != nil {
		t.Errorf("publish after vanished temp file: %v", err)
	}
	// Without the destination present the same condition is fatal.
	if err := b.publish(filepath.Join(dir, ".gone.tmp"), filepath.Join(dir, "20200601_a_v001_swin.tar.bz2")); err == nil {
		t.Error("publish should fail when neither temp nor destination exist")
	}
}

func TestBuildEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("tar"); err != nil {
		t.Skip("tar not available")
	}
	if _, err := exec.LookPath("bzip2"); err != nil {
		t.Skip("bzip2 not available")
	}

	fileSet, rec := testFileSet(t)
	destDir := t.TempDir()

	b := &Builder{}
	got, err := b.Build(context.Background(), fileSet, rec, destDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if filepath.Base(got) != "20200531_a_v001_swin.tar.bz2" {
		t.Errorf("archive name = %q", filepath.Base(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	// Internal ordering is the fixed referenced-file order, not
	// filesystem enumeration order.
	out, err := exec.Command("tar", "--list", "--bzip2", "--file", got).Output()
	if err != nil {
		t.Fatalf("tar --list: %v", err)
	}
	listed := strings.Fields(strings.TrimSpace(string(out)))
	want := []string{"a_meta.txt", "a.vex", "a.v2d", "job1.input", "job1.im"}
	if len(listed) != len(want) {
		t.Fatalf("archive members = %v, want %v", listed, want)
	}
	for i := range want {
		if listed[i] != want[i] {
			t.Errorf("member %d = %q, want %q", i, listed[i], want[i])
		}
	}
}

func TestBuildFailsWithBadArchiver(t *testing.T) {
	fileSet, rec := testFileSet(t)
	destDir := t.TempDir()

	b := &Builder{Tar: "/nonexistent/archiver"}
	_, err := b.Build(context.Background(), fileSet, rec, destDir)
	if err == nil {
		t.Fatal("Build should fail")
	}
	if apperr.KindOf(err) != apperr.ProcessFailure {
		t.Errorf("error kind = %v, want %v", apperr.KindOf(err), apperr.ProcessFailure)
	}
	// No temp litter in the destination directory.
	entries, readErr := os.ReadDir(destDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("destination not clean after failure: %v", entries)
	}
}

func TestRemoveOriginals(t *testing.T) {
	root := t.TempDir()
	fileSet := &domain.FileSet{
		Vex: writeFile(t, root, "a.vex", "x"),
		V2D: writeFile(t, root, "a.v2d", "x"),
	}
	fileSet.Inputs.Set("job1.input", writeFile(t, root, "sub/job1.input", "x"))
	fileSet.Others.Set("job1.im", writeFile(t, root, "sub/job1.im", "x"))
	keep := writeFile(t, root, "keep.txt", "x")

	// Pre-remove one file: already-missing files are ignored.
	if err := os.Remove(fileSet.V2D); err != nil {
		t.Fatal(err)
	}

	if err := RemoveOriginals(fileSet, logging.Logger{}); err != nil {
		t.Fatalf("RemoveOriginals: %v", err)
	}
	for _, path := range fileSet.Paths() {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still present", path)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "sub")); !os.IsNotExist(err) {
		t.Error("emptied directory sub/ should be removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("non-empty root should survive: %v", err)
	}
}

func TestRemoveOriginalsLogsOnlyActualRemovals(t *testing.T) {
	root := t.TempDir()
	fileSet := &domain.FileSet{
		Vex: writeFile(t, root, "a.vex", "x"),
		V2D: writeFile(t, root, "a.v2d", "x"),
	}
	fileSet.Inputs.Set("job1.input", writeFile(t, root, "job1.input", "x"))
	if err := os.Remove(fileSet.V2D); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RemoveOriginals(fileSet, logging.New(&buf, true)); err != nil {
		t.Fatalf("RemoveOriginals: %v", err)
	}
	logged := buf.String()
	if strings.Contains(logged, "a.v2d") {
		t.Errorf("already-missing file reported as removed:\n%s", logged)
	}
	if !strings.Contains(logged, "a.vex") {
		t.Errorf("actual removal not reported:\n%s", logged)
	}
}

func TestRemoveOriginalsDeepestFirst(t *testing.T) {
	dirs := map[string]struct{}{
		"/a":     {},
		"/a/b/c": {},
		"/a/b":   {},
	}
	got := deepestFirst(dirs)
	if got[0] != "/a/b/c" || got[2] != "/a" {
		t.Errorf("deepestFirst = %v", got)
	}
}
