package biz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/naughty-assistant/internal/assistant/store"
	"github.com/kart-io/naughty-assistant/internal/pkg/analyzer"
	apperrors "github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/scanner/clamd"
	"github.com/kart-io/naughty-assistant/pkg/security/sealer"
)

type fakeScanner struct {
	verdict string
	err     error
}

func (f *fakeScanner) Scan(_ context.Context, path string) (clamd.Verdicts, error) {
	if f.err != nil {
		return nil, f.err
	}
	return clamd.Verdicts{path: f.verdict}, nil
}

type fakeMedia struct {
	calls int
	err   error
}

func (f *fakeMedia) DescribeImage(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "No text detected in image. | Detected object: cat", nil
}

func (f *fakeMedia) DescribeAudio(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "Audio duration: 1.50s | Features detected: (13, 65)", nil
}

type memRecorder struct {
	mu      sync.Mutex
	uploads []store.Upload
}

func (m *memRecorder) Record(_ context.Context, u *store.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, *u)
	return nil
}

type failingSealer struct{}

func (failingSealer) Seal([]byte) ([]byte, error) { return nil, errors.New("no entropy") }

type intakeFixture struct {
	pipeline     *Pipeline
	sealer       *sealer.Sealer
	uploadDir    string
	knowledgeDir string
	scanner      *fakeScanner
	media        *fakeMedia
	recorder     *memRecorder
}

func newIntakeFixture(t *testing.T) *intakeFixture {
	t.Helper()
	s, err := sealer.New()
	require.NoError(t, err)

	f := &intakeFixture{
		sealer:       s,
		uploadDir:    t.TempDir(),
		knowledgeDir: t.TempDir(),
		scanner:      &fakeScanner{verdict: clamd.VerdictOK},
		media:        &fakeMedia{},
		recorder:     &memRecorder{},
	}
	f.pipeline = NewPipeline(PipelineConfig{
		UploadDir:       f.uploadDir,
		EncryptedPrefix: "enc_",
		Scanner:         f.scanner,
		Sealer:          s,
		Media:           f.media,
		Data:            analyzer.NewTabular(3),
		Knowledge:       store.NewKnowledge(f.knowledgeDir, nil),
		Recorder:        f.recorder,
	})
	return f
}

func (f *intakeFixture) ingest(t *testing.T, name, content string) (*IngestResult, error) {
	t.Helper()
	return f.pipeline.Ingest(context.Background(), name, strings.NewReader(content))
}

func TestIngestCleanTextRoundTrip(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.ingest(t, "notes.txt", "hello knowledge")
	require.NoError(t, err)
	assert.Equal(t, "hello knowledge", res.Response)
	assert.Equal(t, "Tagged and saved as notes.txt.txt", res.KnowledgeBase)
	assert.Equal(t, KindText, res.Kind)

	plain, err := os.ReadFile(filepath.Join(f.uploadDir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello knowledge", string(plain))

	sealed, err := os.ReadFile(filepath.Join(f.uploadDir, "enc_notes.txt"))
	require.NoError(t, err)
	opened, err := f.sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)

	entry, err := os.ReadFile(filepath.Join(f.knowledgeDir, "notes.txt.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Tags: example\nhello knowledge", string(entry))

	require.Len(t, f.recorder.uploads, 1)
	rec := f.recorder.uploads[0]
	assert.Equal(t, store.StatusAccepted, rec.Status)
	assert.Equal(t, int64(len("hello knowledge")), rec.Size)
	assert.Len(t, rec.SHA256, 64)
	assert.Contains(t, rec.MIME, "text/plain")
}

func TestIngestInfectedRejected(t *testing.T) {
	f := newIntakeFixture(t)
	f.scanner.verdict = "Eicar-Test-Signature"

	res, err := f.ingest(t, "virus.txt", "X5O!P%@AP")
	require.Error(t, err)
	assert.Nil(t, res)

	var e *apperrors.Errno
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 400, e.HTTPStatus())
	assert.Equal(t, "File infected: Eicar-Test-Signature", e.Message("en"))

	assert.NoFileExists(t, filepath.Join(f.uploadDir, "virus.txt"))
	assert.NoFileExists(t, filepath.Join(f.uploadDir, "enc_virus.txt"))
	assert.NoFileExists(t, filepath.Join(f.knowledgeDir, "virus.txt.txt"))

	require.Len(t, f.recorder.uploads, 1)
	assert.Equal(t, store.StatusRejected, f.recorder.uploads[0].Status)
	assert.Equal(t, "Eicar-Test-Signature", f.recorder.uploads[0].Verdict)
}

func TestIngestScannerUnavailableSkips(t *testing.T) {
	f := newIntakeFixture(t)
	f.scanner.err = clamd.ErrUnavailable

	_, err := f.ingest(t, "ok.xyz", "data")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.uploadDir, "ok.xyz"))
	assert.FileExists(t, filepath.Join(f.uploadDir, "enc_ok.xyz"))
}

func TestIngestUnknownExtension(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.ingest(t, "mystery.xyz", "???")
	require.NoError(t, err)
	assert.Equal(t, "File processed, but I’m keeping it *steamy* and mysterious 😘", res.Response)
	assert.Empty(t, res.KnowledgeBase)
	assert.Empty(t, res.ImagePath)
	assert.Zero(t, f.media.calls)

	entries, err := os.ReadDir(f.knowledgeDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngestTextSuffixIsCaseSensitive(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.ingest(t, "NOTES.TXT", "shouting")
	require.NoError(t, err)
	assert.Equal(t, KindOther, res.Kind)
	assert.NoFileExists(t, filepath.Join(f.knowledgeDir, "NOTES.TXT.txt"))
}

func TestIngestLongTextTruncated(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.ingest(t, "long.txt", strings.Repeat("é", 600))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 500)+"...", res.Response)
}

func TestIngestImage(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.ingest(t, "Cat.PNG", "\x89PNG")
	require.NoError(t, err)
	assert.Equal(t, "Hot pic, darling! Here’s what I see: No text detected in image. | Detected object: cat 😘", res.Response)
	assert.Equal(t, filepath.Join(f.uploadDir, "Cat.PNG"), res.ImagePath)

	f.media.err = errors.New("vision sidecar down")
	res, err = f.ingest(t, "dog.jpg", "jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Hot pic, darling! Here’s what I see: Error analyzing image: vision sidecar down 😘", res.Response)
}

func TestIngestAudio(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.ingest(t, "song.WAV", "RIFF")
	require.NoError(t, err)
	assert.Equal(t, "Naughty audio, huh? Here’s what I hear: Audio duration: 1.50s | Features detected: (13, 65) 🎵", res.Response)
}

func TestIngestData(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.ingest(t, "sales.csv", "a,b\n1,10\n2,20\n3,30\n4,40\n5,50\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Response, "Crunching numbers like a pro! Here’s the scoop: Data Summary:\n"))
	assert.Contains(t, res.Response, "Forecast for next period (a): 6.00")
	assert.Contains(t, res.Response, "<img src='data:image/png;base64,")
	assert.True(t, strings.HasSuffix(res.Response, " 📊"))
}

func TestIngestEncryptionFailure(t *testing.T) {
	f := newIntakeFixture(t)
	f.pipeline.cfg.Sealer = failingSealer{}

	_, err := f.ingest(t, "a.txt", "x")
	require.Error(t, err)

	var e *apperrors.Errno
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 500, e.HTTPStatus())
	assert.Equal(t, "Oops, something broke while handling that file: no entropy", e.Message("en"))
	assert.NoFileExists(t, filepath.Join(f.uploadDir, "enc_a.txt"))
	assert.Equal(t, store.StatusFailed, f.recorder.uploads[0].Status)
}

func TestIngestFilenameSanitized(t *testing.T) {
	f := newIntakeFixture(t)

	_, err := f.ingest(t, "../../escape.xyz", "x")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.uploadDir, "escape.xyz"))

	_, err = f.ingest(t, "", "x")
	assert.ErrorIs(t, err, apperrors.ErrEmptyFilename)
}

func TestIngestOverwrites(t *testing.T) {
	f := newIntakeFixture(t)

	_, err := f.ingest(t, "same.xyz", "first")
	require.NoError(t, err)
	_, err = f.ingest(t, "same.xyz", "second")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.uploadDir, "same.xyz"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestKindOf(t *testing.T) {
	tests := map[string]string{
		"a.pdf":  KindText,
		"a.PDF":  KindOther,
		"a.txt":  KindText,
		"a.JPEG": KindImage,
		"a.mp3":  KindAudio,
		"a.XLSX": KindData,
		"a.csv":  KindData,
		"a":      KindOther,
	}
	for name, want := range tests {
		assert.Equal(t, want, KindOf(name), name)
	}
}

func TestIngestInvalidatesSearchCache(t *testing.T) {
	f := newIntakeFixture(t)
	cache, mr := newTestCache(t)
	searcher := NewSearcher(store.NewKnowledge(f.knowledgeDir, nil), cache, nil)
	f.pipeline.cfg.Search = searcher
	ctx := context.Background()

	out, err := searcher.Search(ctx, "fooN")
	require.NoError(t, err)
	assert.Equal(t, store.NoMatches, out)
	require.Len(t, mr.Keys(), 1)

	_, err = f.ingest(t, "doc.txt", "all about fooN")
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())

	out, err = searcher.Search(ctx, "fooN")
	require.NoError(t, err)
	assert.Contains(t, out, "Found in doc.txt.txt:")
}

func TestIngestTagFailureKeepsCache(t *testing.T) {
	f := newIntakeFixture(t)
	cache, mr := newTestCache(t)
	f.pipeline.cfg.Search = NewSearcher(store.NewKnowledge(f.knowledgeDir, nil), cache, nil)
	f.pipeline.cfg.Knowledge = store.NewKnowledge(filepath.Join(f.knowledgeDir, "missing"), nil)
	require.NoError(t, cache.Set(context.Background(), "q", "cached"))

	res, err := f.ingest(t, "doc.txt", "text")
	require.NoError(t, err)
	assert.Contains(t, res.KnowledgeBase, "Error auto-tagging content:")
	assert.Len(t, mr.Keys(), 1)
}
