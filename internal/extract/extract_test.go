package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	t.Parallel()

	data := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		docxBody: `<w:document><w:body>` +
			`<w:p><w:r><w:t>Go developer</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Docker &amp; Kubernetes</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})

	got, err := Extract("resume.DOCX", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Go developer\nDocker & Kubernetes"; got != want {
		t.Fatalf("unexpected text: got %q want %q", got, want)
	}
}

const malformedPDF = "%PDF-1.4\nxref\n0 2\n0000000000 65535 f \n0000000009 00000 n \n" +
	"trailer\n<< /Size 2 /Root 1 0 R >>\nstartxref\n9\n%%EOF\n"

func TestExtractMalformedPDFDoesNotPanic(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("extract panicked: %v", r)
		}
	}()

	_, err := Extract("cv.pdf", []byte(malformedPDF))
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestDocxBodyIsBounded(t *testing.T) {
	t.Parallel()

	body := `<w:document><w:body><w:p><w:r><w:t>` + strings.Repeat("a", 4096) + `</w:t></w:r></w:p></w:body></w:document>`
	data := buildDocx(t, map[string]string{docxBody: body})

	if _, err := fromDocx(data, 1024); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	got, err := fromDocx(data, int64(len(body)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4096 {
		t.Fatalf("unexpected text length %d", len(got))
	}
	if len(data) > 1024 {
		t.Fatalf("expected the body to compress below the limit, archive is %d bytes", len(data))
	}
}

func TestExtractDocxWithoutBody(t *testing.T) {
	t.Parallel()

	data := buildDocx(t, map[string]string{"word/styles.xml": "<w:styles/>"})

	_, err := Extract("resume.docx", data)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractionErr.Name != "resume.docx" {
		t.Fatalf("unexpected name: %q", extractionErr.Name)
	}
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	got, err := Extract("notes.txt", []byte("  hello\t\tworld \r\n\r\n next "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "hello world\nnext"; got != want {
		t.Fatalf("unexpected text: got %q want %q", got, want)
	}
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     string
		data     []byte
		sentinel error
		typed    bool
	}{
		{name: "unsupported extension", file: "resume.odt", data: []byte("x"), sentinel: ErrUnsupportedFormat},
		{name: "no extension", file: "resume", data: []byte("x"), sentinel: ErrUnsupportedFormat},
		{name: "too large", file: "resume.txt", data: make([]byte, MaxFileSize+1), sentinel: ErrTooLarge},
		{name: "invalid utf-8", file: "resume.txt", data: []byte{0xff, 0xfe, 0xfd}, typed: true},
		{name: "broken pdf", file: "resume.pdf", data: []byte("not a pdf at all"), typed: true},
		{name: "broken docx", file: "resume.docx", data: []byte("not a zip"), typed: true},
		{name: "malformed pdf xref", file: "cv.pdf", data: []byte(malformedPDF), typed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(tt.file, tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			var extractionErr *ExtractionError
			if tt.typed != errors.As(err, &extractionErr) {
				t.Fatalf("unexpected error type for %v", err)
			}
		})
	}
}

func TestSupportedExtension(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		"cv.pdf":      true,
		"cv.PDF":      true,
		"cv.docx":     true,
		"cv.txt":      true,
		"cv.doc":      false,
		"cv":          false,
		"archive.zip": false,
	} {
		if got := SupportedExtension(name); got != want {
			t.Errorf("SupportedExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("React and Node.js\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ExtractFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "React and Node.js" {
		t.Fatalf("unexpected text: %q", got)
	}

	if _, err := ExtractFile(filepath.Join(dir, "missing.txt")); err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := ExtractFile(filepath.Join(dir, "resume.rtf")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadLimited(t *testing.T) {
	t.Parallel()

	got, err := ReadLimited(strings.NewReader("12345"), 5)
	if err != nil || string(got) != "12345" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}

	if _, err := ReadLimited(strings.NewReader("123456"), 5); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
