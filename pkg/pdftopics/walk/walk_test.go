package walk

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cognicore/pdftopics/internal/pdftest"
	"github.com/cognicore/pdftopics/pkg/pdftopics/extract"
	"github.com/cognicore/pdftopics/pkg/pdftopics/internalerr"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// undecodableNames wraps the real backend and returns invalid UTF-8 for
// files whose base name starts with "bad".
func undecodableNames(t *testing.T) extract.Backend {
	t.Helper()
	base, err := extract.NewBackend(extract.MethodPlain)
	if err != nil {
		t.Fatal(err)
	}
	return extract.BackendFunc(func(path string) (string, error) {
		if strings.HasPrefix(filepath.Base(path), "bad") {
			return "\xc3\x28", nil
		}
		return base.Text(path)
	})
}

func writePDF(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := pdftest.Write(path, text); err != nil {
		t.Fatal(err)
	}
}

func TestWalkEmptyFolder(t *testing.T) {
	in := t.TempDir()
	os.WriteFile(filepath.Join(in, "notes.txt"), []byte("not a pdf"), 0o644)

	w := &Walker{Extractor: extract.New(undecodableNames(t)), OutputDir: t.TempDir(), Log: quietLogger()}
	docs, err := Collect(w.Walk(context.Background(), in))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}

func TestWalkSkipsUndecodable(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writePDF(t, filepath.Join(in, "one.pdf"), "alpha beta")
	writePDF(t, filepath.Join(in, "nested", "two.pdf"), "gamma delta")
	writePDF(t, filepath.Join(in, "nested", "deeper", "three.pdf"), "epsilon")
	writePDF(t, filepath.Join(in, "bad1.pdf"), "ignored")
	writePDF(t, filepath.Join(in, "nested", "bad2.pdf"), "ignored")

	var skipped []string
	log, hook := test.NewNullLogger()
	w := &Walker{
		Extractor: extract.New(undecodableNames(t)),
		OutputDir: out,
		OnSkip:    func(path string, err error) { skipped = append(skipped, path) },
		Log:       log,
	}

	docs, err := Collect(w.Walk(context.Background(), in))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("expected 3 documents, got %d", len(docs))
	}
	if len(skipped) != 2 {
		t.Errorf("expected 2 skip events, got %d: %v", len(skipped), skipped)
	}

	sidecars, _ := filepath.Glob(filepath.Join(out, "*.txt"))
	if len(sidecars) != 3 {
		t.Errorf("expected 3 sidecar files, got %d: %v", len(sidecars), sidecars)
	}

	var warnings []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings = append(warnings, entry.Message)
		}
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	for _, msg := range warnings {
		if !strings.HasPrefix(msg, "Unable to extract text from ") || !strings.Contains(msg, "bad") {
			t.Errorf("unexpected warning %q", msg)
		}
	}
}

func TestWalkSkipsUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	in := t.TempDir()
	touch(t, in, "a.pdf")
	locked := filepath.Join(in, "locked")
	if err := os.Mkdir(locked, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, locked, "hidden.pdf")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	log, hook := test.NewNullLogger()
	rec := &recordingExtractor{}
	w := &Walker{Extractor: rec, OutputDir: t.TempDir(), Log: log}

	docs, err := Collect(w.Walk(context.Background(), in))
	if err != nil {
		t.Fatalf("an unreadable subdirectory should not end the walk: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected a.pdf only, got %d documents", len(docs))
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Errorf("expected a warning for the unreadable directory, got %v", entry)
	}
}

func TestWalkSuffixIsCaseSensitive(t *testing.T) {
	in := t.TempDir()
	writePDF(t, filepath.Join(in, "upper.PDF"), "shouting")
	writePDF(t, filepath.Join(in, "lower.pdf"), "quiet")

	w := &Walker{Extractor: extract.New(undecodableNames(t)), OutputDir: t.TempDir(), Log: quietLogger()}
	docs, err := Collect(w.Walk(context.Background(), in))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 || filepath.Base(docs[0].Path) != "lower.pdf" {
		t.Errorf("only lower.pdf should be extracted, got %+v", docs)
	}
}

type recordingExtractor struct {
	calls []string
	errs  map[string]error
}

func (r *recordingExtractor) Extract(ctx context.Context, path, out string) (extract.Document, error) {
	r.calls = append(r.calls, filepath.Base(path))
	if err := r.errs[filepath.Base(path)]; err != nil {
		return extract.Document{}, err
	}
	return extract.Document{Path: path, SidecarPath: extract.SidecarPath(path, out), Text: "text"}, nil
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWalkCorruptIsFatalByDefault(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a.pdf", "b.pdf", "c.pdf")

	rec := &recordingExtractor{errs: map[string]error{
		"b.pdf": errors.Join(internalerr.ErrExtract, errors.New("bad xref")),
	}}
	w := &Walker{Extractor: rec, OutputDir: t.TempDir(), Log: quietLogger()}

	docs, err := Collect(w.Walk(context.Background(), in))
	if !errors.Is(err, internalerr.ErrExtract) {
		t.Fatalf("expected ErrExtract to end the walk, got %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected the document before the failure, got %d", len(docs))
	}
	if len(rec.calls) != 2 {
		t.Errorf("walk should stop at the corrupt file, calls: %v", rec.calls)
	}
}

func TestWalkSkipCorrupt(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a.pdf", "b.pdf", "c.pdf")

	rec := &recordingExtractor{errs: map[string]error{
		"b.pdf": errors.Join(internalerr.ErrExtract, errors.New("bad xref")),
	}}
	skips := 0
	w := &Walker{
		Extractor:   rec,
		OutputDir:   t.TempDir(),
		SkipCorrupt: true,
		OnSkip:      func(string, error) { skips++ },
		Log:         quietLogger(),
	}

	docs, err := Collect(w.Walk(context.Background(), in))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 2 || skips != 1 {
		t.Errorf("expected 2 docs and 1 skip, got %d docs and %d skips", len(docs), skips)
	}
}

func TestWalkWriteErrorIsFatal(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a.pdf")

	rec := &recordingExtractor{errs: map[string]error{"a.pdf": errors.New("disk full")}}
	w := &Walker{Extractor: rec, OutputDir: t.TempDir(), SkipCorrupt: true, Log: quietLogger()}

	if _, err := Collect(w.Walk(context.Background(), in)); err == nil {
		t.Fatal("a non-extraction error must end the walk even with SkipCorrupt")
	}
}

func TestWalkIsLazy(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a.pdf", "b.pdf", "c.pdf")

	rec := &recordingExtractor{}
	w := &Walker{Extractor: rec, OutputDir: t.TempDir(), Log: quietLogger()}
	seq := w.Walk(context.Background(), in)
	if len(rec.calls) != 0 {
		t.Fatal("nothing should be extracted before the sequence is consumed")
	}

	for _, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		break
	}
	if len(rec.calls) != 1 {
		t.Errorf("breaking after one document should stop the walk, calls: %v", rec.calls)
	}

	// Restarting means walking again from the top.
	docs, err := Collect(seq)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Errorf("a second traversal should see all 3 files, got %d", len(docs))
	}
}

func TestWalkMissingRoot(t *testing.T) {
	w := &Walker{Extractor: &recordingExtractor{}, OutputDir: t.TempDir(), Log: quietLogger()}
	_, err := Collect(w.Walk(context.Background(), filepath.Join(t.TempDir(), "nope")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestWalkCancelled(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a.pdf", "b.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordingExtractor{}
	w := &Walker{Extractor: rec, OutputDir: t.TempDir(), Log: quietLogger()}

	var err error
	for _, e := range w.Walk(ctx, in) {
		if e != nil {
			err = e
			break
		}
		cancel()
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("no extraction should happen after cancel, calls: %v", rec.calls)
	}
}
