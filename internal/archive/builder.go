package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
	infrafs "swinpack/internal/infra/fs"
	"swinpack/internal/logging"
	"swinpack/internal/meta"
)

// Builder assembles the final archive: stage, normalize, pack, atomically
// publish.
type Builder struct {
	// Tar is the archiving utility to invoke; empty means "tar" from PATH.
	Tar    string
	Logger logging.Logger

	dialect    *Dialect
	hasDialect bool
}

func (b *Builder) tarPath() string {
	if b.Tar != "" {
		return b.Tar
	}
	return "tar"
}

// Dialect returns the archiver dialect, probing the utility on first use.
func (b *Builder) Dialect() Dialect {
	if !b.hasDialect {
		d := DetectDialect(b.tarPath())
		b.dialect = &d
		b.hasDialect = true
		b.Logger.Verbosef("archiver dialect: %s", d)
	}
	return *b.dialect
}

// Build stages the file set via symlinks, writes the metadata document, and
// packs everything into a bzip2-compressed tar streamed to a temporary file
// in the destination directory, which is then renamed into place. The
// staging directory is removed on every exit path.
//
// dest may be a directory (the archive name is derived from the record) or
// an exact filename, which must match the archive naming pattern.
func (b *Builder) Build(ctx context.Context, fileSet *domain.FileSet, rec *domain.MetadataRecord, dest string) (string, error) {
	stop := b.Logger.Measure("Building archive")
	defer stop()

	destPath, err := b.resolveDest(dest, rec)
	if err != nil {
		return "", err
	}

	staging, err := os.MkdirTemp("", "swinpack-")
	if err != nil {
		return "", apperr.Wrap(apperr.IOFailure, "create staging directory", err)
	}
	defer os.RemoveAll(staging)
	b.Logger.Verbosef("staging in %s", staging)

	if err := b.stage(staging, fileSet); err != nil {
		return "", err
	}
	doc := meta.Render(rec)
	metaPath := filepath.Join(staging, rec.MetaFileName())
	if err := os.WriteFile(metaPath, []byte(doc), baselineMode); err != nil {
		return "", apperr.Wrap(apperr.IOFailure, "write metadata", err, metaPath)
	}

	if err := b.pack(ctx, staging, rec.ReferencedFiles, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// pack invokes the archiver against the staging directory with the fixed
// file list on stdin, NUL-separated so arbitrary filenames survive. Output
// streams into a temporary file beside the destination so the final publish
// is a pure rename.
func (b *Builder) pack(ctx context.Context, staging string, files []string, destPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".")
	if err != nil {
		return apperr.Wrap(apperr.IOFailure, "create archive temp file", err, filepath.Dir(destPath))
	}
	tmpPath := tmp.Name()
	published := false
	defer func() {
		tmp.Close()
		if !published {
			os.Remove(tmpPath)
		}
	}()

	args := []string{"--create", "--dereference", "--no-xattrs"}
	args = append(args, b.Dialect().ownershipFlags()...)
	args = append(args, "--bzip2", "--directory", staging, "--null", "--files-from", "-")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.tarPath(), args...)
	cmd.Stdin = strings.NewReader(strings.Join(files, "\x00") + "\x00")
	cmd.Stdout = tmp
	cmd.Stderr = &stderr

	b.Logger.Verbosef("running %s %s", b.tarPath(), strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return apperr.New(apperr.Interrupted, "pack", "archiver interrupted")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return apperr.WithCode(apperr.ProcessFailure, "pack", exitErr.ExitCode(),
				fmt.Errorf("%s exited with status %d: %s",
					b.tarPath(), exitErr.ExitCode(), strings.TrimSpace(stderr.String())))
		}
		return apperr.Wrap(apperr.ProcessFailure, "pack", err)
	}
	if err := tmp.Chmod(0o664); err != nil {
		return apperr.Wrap(apperr.IOFailure, "chmod archive", err, tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(apperr.IOFailure, "close archive", err, tmpPath)
	}

	if err := b.publish(tmpPath, destPath); err != nil {
		return err
	}
	published = true
	return nil
}

// publish renames the temporary archive onto the destination. A not-found
// error is fatal unless it concerns the temp file itself and the
// destination already holds the archive, in which case the desired end
// state is already reached.
func (b *Builder) publish(tmpPath, destPath string) error {
	err := os.Rename(tmpPath, destPath)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if _, statErr := os.Lstat(tmpPath); os.IsNotExist(statErr) {
			if ok, _ := infrafs.Exists(destPath); ok {
				return nil
			}
		}
	}
	return apperr.Wrap(apperr.IOFailure, "publish archive", err, tmpPath, destPath)
}

// PublishExisting handles the fast path where the source is already a packed
// archive: validate the destination name and copy it into place without
// re-invoking the archiver. With move set the source is relinquished instead
// of copied, falling back to copy-and-remove across filesystems.
func (b *Builder) PublishExisting(src, dest string, move bool) (string, error) {
	destPath := dest
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		destPath = filepath.Join(dest, filepath.Base(src))
	}
	if !domain.ValidArchiveName(filepath.Base(destPath)) {
		return "", apperr.New(apperr.MalformedName, "publish archive",
			"destination does not match YYYYMMDD_<exper>_v<nnn>_swin."+domain.ArchiveExt,
			destPath)
	}
	if infrafs.SameFile(src, destPath) {
		return destPath, nil
	}
	if move {
		if err := infrafs.MoveFile(src, destPath); err != nil {
			return "", apperr.Wrap(apperr.IOFailure, "move archive", err, src, destPath)
		}
		return destPath, nil
	}
	if err := infrafs.CopyFile(src, destPath); err != nil {
		return "", apperr.Wrap(apperr.IOFailure, "copy archive", err, src, destPath)
	}
	return destPath, nil
}

func (b *Builder) resolveDest(dest string, rec *domain.MetadataRecord) (string, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		name := domain.ArchiveFileName(rec.TimeStart, rec.ExperimentCode, rec.ReleaseNumber)
		return filepath.Join(dest, name), nil
	}
	if !domain.ValidArchiveName(filepath.Base(dest)) {
		return "", apperr.New(apperr.MalformedName, "resolve destination",
			"destination does not match YYYYMMDD_<exper>_v<nnn>_swin."+domain.ArchiveExt,
			dest)
	}
	return dest, nil
}
