package app

import (
	"context"
	"os"
	"path/filepath"

	"swinpack/internal/archive"
	"swinpack/internal/config"
	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
	"swinpack/internal/logging"
	"swinpack/internal/meta"
	"swinpack/internal/upload"
)

// Stage identifies the phase the pipeline is currently in, for progress
// reporting.
type Stage int

const (
	StageScanning Stage = iota
	StageExtracting
	StagePacking
	StageUploading
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageScanning:
		return "scanning"
	case StageExtracting:
		return "extracting"
	case StagePacking:
		return "packing"
	case StageUploading:
		return "uploading"
	default:
		return "done"
	}
}

// Result is what a successful run produced. Record is nil when the source
// was already a packed archive.
type Result struct {
	Record      *domain.MetadataRecord
	ArchivePath string
	Uploaded    bool
}

// Pipeline runs the whole flow sequentially: locate, extract, build, then
// optionally upload and remove the archived originals.
type Pipeline struct {
	Config  config.Config
	Logger  logging.Logger
	OnStage func(Stage)
}

func (p *Pipeline) notify(s Stage) {
	if p.OnStage != nil {
		p.OnStage(s)
	}
}

func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.Config
	builder := &archive.Builder{Logger: p.Logger}

	info, err := os.Stat(cfg.Source)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOFailure, "stat source", err, cfg.Source)
	}

	res := &Result{}
	if info.IsDir() {
		dest := cfg.Dest
		if dest == "" {
			dest = cfg.Source
		}

		if err := interrupted(ctx); err != nil {
			return nil, err
		}
		p.notify(StageScanning)
		locator := Locator{Logger: p.Logger}
		fileSet, err := locator.Locate(cfg.Source, cfg.VexPath, cfg.V2DPath)
		if err != nil {
			return nil, err
		}

		if err := interrupted(ctx); err != nil {
			return nil, err
		}
		p.notify(StageExtracting)
		rec, err := meta.Extract(fileSet, cfg.Release)
		if err != nil {
			return nil, err
		}
		res.Record = &rec

		if err := interrupted(ctx); err != nil {
			return nil, err
		}
		p.notify(StagePacking)
		if res.ArchivePath, err = builder.Build(ctx, fileSet, &rec, dest); err != nil {
			return nil, err
		}

		if err := p.maybeUpload(ctx, res); err != nil {
			return nil, err
		}
		if cfg.DeleteAfter {
			if err := interrupted(ctx); err != nil {
				return nil, err
			}
			if err := archive.RemoveOriginals(fileSet, p.Logger); err != nil {
				return nil, err
			}
		}
	} else {
		// The source is already a packed archive; publish it directly.
		dest := cfg.Dest
		if dest == "" {
			dest = filepath.Dir(cfg.Source)
		}
		if err := interrupted(ctx); err != nil {
			return nil, err
		}
		if res.ArchivePath, err = builder.PublishExisting(cfg.Source, dest, cfg.DeleteAfter); err != nil {
			return nil, err
		}
		if err := p.maybeUpload(ctx, res); err != nil {
			return nil, err
		}
	}

	p.notify(StageDone)
	return res, nil
}

// interrupted turns a canceled context into the tagged error the exit-code
// mapping expects.
func interrupted(ctx context.Context) error {
	if ctx.Err() != nil {
		return apperr.New(apperr.Interrupted, "run", "interrupted")
	}
	return nil
}

func (p *Pipeline) maybeUpload(ctx context.Context, res *Result) error {
	if !p.Config.Upload {
		return nil
	}
	if err := interrupted(ctx); err != nil {
		return err
	}
	p.notify(StageUploading)
	creds, err := upload.ReadCredentials(p.Config.Credentials)
	if err != nil {
		return err
	}
	publisher, err := upload.NewPublisher(p.Config.UploadURL, p.Logger)
	if err != nil {
		return err
	}
	if err := publisher.Publish(ctx, res.ArchivePath, creds); err != nil {
		return err
	}
	res.Uploaded = true
	return nil
}
