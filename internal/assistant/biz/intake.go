package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/naughty-assistant/internal/assistant/metrics"
	"github.com/kart-io/naughty-assistant/internal/assistant/store"
	"github.com/kart-io/naughty-assistant/internal/pkg/analyzer"
	"github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/infra/pool"
	"github.com/kart-io/naughty-assistant/pkg/infra/tracing"
	"github.com/kart-io/naughty-assistant/pkg/scanner/clamd"
)

// File kinds, selected by extension.
const (
	KindText  = "text"
	KindImage = "image"
	KindAudio = "audio"
	KindData  = "data"
	KindOther = "other"
)

const responsePreviewRunes = 500

// Scanner returns per-path verdicts.
type Scanner interface {
	Scan(ctx context.Context, path string) (clamd.Verdicts, error)
}

// Sealer encrypts file contents.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
}

// MediaDescriber describes images and audio.
type MediaDescriber interface {
	DescribeImage(ctx context.Context, path string) (string, error)
	DescribeAudio(ctx context.Context, path string) (string, error)
}

// DataAnalyzer summarises spreadsheets.
type DataAnalyzer interface {
	Analyze(path string) (string, error)
}

// KnowledgeWriter stores tagged text.
type KnowledgeWriter interface {
	TagAndSave(content, filename string) (string, error)
}

// SearchInvalidator drops cached search results.
type SearchInvalidator interface {
	Invalidate(ctx context.Context)
}

// UploadRecorder records intake attempts.
type UploadRecorder interface {
	Record(ctx context.Context, u *store.Upload) error
}

// IngestResult is the reply to one upload.
type IngestResult struct {
	Response      string
	KnowledgeBase string
	ImagePath     string
	Kind          string
}

// PipelineConfig wires the collaborators of a Pipeline. Scanner, Recorder,
// Search, Background and Metrics may be nil.
type PipelineConfig struct {
	UploadDir       string
	EncryptedPrefix string

	Scanner   Scanner
	Sealer    Sealer
	Media     MediaDescriber
	Data      DataAnalyzer
	Knowledge KnowledgeWriter
	Recorder  UploadRecorder
	// Search is invalidated after every knowledge write so the next query
	// sees the new entry. The directory watcher covers outside edits.
	Search SearchInvalidator

	// Background runs ledger writes off the request path.
	Background *pool.Pool
	Metrics    *metrics.Metrics
}

// Pipeline is the file intake pipeline: persist, scan, encrypt, analyze.
type Pipeline struct {
	cfg PipelineConfig
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// KindOf returns the file kind for filename. The .pdf and .txt checks are
// case-sensitive; the others ignore case.
func KindOf(filename string) string {
	if strings.HasSuffix(filename, ".pdf") || strings.HasSuffix(filename, ".txt") {
		return KindText
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg":
		return KindImage
	case ".mp3", ".wav":
		return KindAudio
	case ".csv", ".xlsx":
		return KindData
	default:
		return KindOther
	}
}

func broke(base *errors.Errno, err error) error {
	return base.WithCause(err).WithMessagef("Oops, something broke while handling that file: %v", err)
}

// Ingest runs filename's content through the pipeline. Uploads with the
// same name overwrite each other.
func (p *Pipeline) Ingest(ctx context.Context, filename string, r io.Reader) (*IngestResult, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return nil, errors.ErrEmptyFilename
	}
	kind := KindOf(name)
	rec := &store.Upload{Filename: name, Kind: kind}

	ctx, span := tracing.StartSpan(ctx, "intake.ingest", attribute.String(tracing.AttrFileKind, kind))
	defer span.End()

	// 1. 原样落盘
	dest := filepath.Join(p.cfg.UploadDir, name)
	if err := p.persist(dest, r, rec); err != nil {
		p.finish(rec, store.StatusFailed)
		return nil, broke(errors.ErrIOFailure, err)
	}

	// 2. 病毒扫描
	if verdict, infected := p.scan(ctx, dest); infected {
		rec.Verdict = verdict
		span.SetAttributes(attribute.String("scan.verdict", verdict))
		if err := os.Remove(dest); err != nil {
			logger.Errorw("Failed to remove infected upload", "path", dest, "error", err.Error())
		}
		logger.Warnw("Upload rejected by virus scan", "file", name, "verdict", verdict)
		p.finish(rec, store.StatusRejected)
		return nil, errors.ErrScanRejected.WithMessagef("File infected: %s", verdict)
	}

	// 3. 加密副本
	data, err := os.ReadFile(dest)
	if err != nil {
		p.finish(rec, store.StatusFailed)
		return nil, broke(errors.ErrIOFailure, err)
	}
	rec.MIME = mimetype.Detect(data).String()
	sealed, err := p.cfg.Sealer.Seal(data)
	if err != nil {
		p.finish(rec, store.StatusFailed)
		return nil, broke(errors.ErrEncryption, err)
	}
	encPath := filepath.Join(p.cfg.UploadDir, p.cfg.EncryptedPrefix+name)
	if err := os.WriteFile(encPath, sealed, 0o600); err != nil {
		p.finish(rec, store.StatusFailed)
		return nil, broke(errors.ErrIOFailure, err)
	}

	// 4. 按扩展名分析
	res := p.analyze(ctx, kind, name, dest)
	p.finish(rec, store.StatusAccepted)
	logger.Infow("Upload processed", "file", name, "kind", kind, "size", rec.Size)
	return res, nil
}

func (p *Pipeline) persist(dest string, r io.Reader, rec *store.Upload) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	rec.Size = n
	rec.SHA256 = hex.EncodeToString(h.Sum(nil))
	return err
}

// scan returns the threat label and true when dest must be rejected.
// An unreachable or failing scanner skips the check.
func (p *Pipeline) scan(ctx context.Context, dest string) (string, bool) {
	if p.cfg.Scanner == nil {
		p.cfg.Metrics.RecordScan(metrics.ScanSkipped)
		return "", false
	}

	verdicts, err := p.cfg.Scanner.Scan(ctx, dest)
	if err != nil {
		logger.Warnw("Virus scan skipped", "path", dest, "error", err.Error())
		p.cfg.Metrics.RecordScan(metrics.ScanSkipped)
		return "", false
	}

	verdict, ok := verdicts[dest]
	if !ok || verdict == clamd.VerdictOK {
		p.cfg.Metrics.RecordScan(metrics.ScanClean)
		return verdict, false
	}
	p.cfg.Metrics.RecordScan(metrics.ScanInfected)
	return verdict, true
}

func (p *Pipeline) analyze(ctx context.Context, kind, name, dest string) *IngestResult {
	res := &IngestResult{Kind: kind}

	switch kind {
	case KindText:
		text, err := analyzer.ExtractText(dest)
		if err != nil {
			text = "Error extracting text: " + err.Error()
		}
		tag, err := p.cfg.Knowledge.TagAndSave(text, name+".txt")
		if err != nil {
			tag = "Error auto-tagging content: " + err.Error()
		} else if p.cfg.Search != nil {
			p.cfg.Search.Invalidate(ctx)
		}
		preview, cut := analyzer.Truncate(text, responsePreviewRunes)
		if cut {
			preview += "..."
		}
		res.Response = preview
		res.KnowledgeBase = tag

	case KindImage:
		desc, err := p.cfg.Media.DescribeImage(ctx, dest)
		if err != nil {
			desc = "Error analyzing image: " + err.Error()
		}
		res.Response = fmt.Sprintf("Hot pic, darling! Here’s what I see: %s 😘", desc)
		res.ImagePath = dest

	case KindAudio:
		desc, err := p.cfg.Media.DescribeAudio(ctx, dest)
		if err != nil {
			desc = "Error processing audio: " + err.Error()
		}
		res.Response = fmt.Sprintf("Naughty audio, huh? Here’s what I hear: %s 🎵", desc)

	case KindData:
		insights, err := p.cfg.Data.Analyze(dest)
		if err != nil {
			insights = "Error analyzing data: " + err.Error()
		}
		res.Response = fmt.Sprintf("Crunching numbers like a pro! Here’s the scoop: %s 📊", insights)

	default:
		res.Response = "File processed, but I’m keeping it *steamy* and mysterious 😘"
	}
	return res
}

// finish counts the upload and records it in the ledger. Ledger failures
// are logged only.
func (p *Pipeline) finish(rec *store.Upload, status string) {
	rec.Status = status
	p.cfg.Metrics.RecordUpload(rec.Kind, status)
	if p.cfg.Recorder == nil {
		return
	}

	write := func() {
		if err := p.cfg.Recorder.Record(context.Background(), rec); err != nil {
			logger.Warnw("Failed to record upload", "file", rec.Filename, "error", err.Error())
		}
	}
	if p.cfg.Background == nil {
		write()
		return
	}
	if err := p.cfg.Background.Submit(write); err != nil {
		logger.Warnw("Ledger write dropped", "file", rec.Filename, "error", err.Error())
	}
}
