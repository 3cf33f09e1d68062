// Package extract turns uploaded resume files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
)

// MaxFileSize is the largest document accepted, in bytes.
const MaxFileSize = 16 << 20

// MaxUnpackedSize bounds the decompressed body of a DOCX file.
const MaxUnpackedSize = 4 * MaxFileSize

const docxBody = "word/document.xml"

// Extensions lists the supported file extensions.
var Extensions = []string{".pdf", ".docx", ".txt"}

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported file format: only pdf, docx and txt are allowed")
	// ErrTooLarge is returned for documents above MaxFileSize.
	ErrTooLarge = fmt.Errorf("file too large: limit is %d bytes", MaxFileSize)
)

var (
	xmlTags    = regexp.MustCompile(`<[^>]+>`)
	blanks     = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlineRun = regexp.MustCompile(`\s*\n\s*`)
)

// ExtractionError reports a document that has a supported extension but could not be read.
type ExtractionError struct {
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting text from %q: %v", e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// SupportedExtension reports whether name has one of Extensions.
func SupportedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extract returns the plain text of data, picking the reader by the extension of name.
func Extract(name string, data []byte) (string, error) {
	if len(data) > MaxFileSize {
		return "", ErrTooLarge
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = fromPDF(data)
	case ".docx":
		text, err = fromDocx(data, MaxUnpackedSize)
	case ".txt":
		text, err = fromText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return "", &ExtractionError{Name: name, Err: err}
	}
	return text, nil
}

// ExtractFile reads the file at path and extracts its text.
func ExtractFile(path string) (string, error) {
	if !SupportedExtension(path) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	data, err := ReadLimited(f, MaxFileSize)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	return Extract(path, data)
}

// ReadLimited reads r fully, failing with ErrTooLarge past limit bytes.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, ErrTooLarge
	}
	return b, nil
}

// fromPDF recovers from the panics the pdf reader raises on malformed files.
func fromPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return normalizeWhitespace(buf.String()), nil
}

func fromDocx(data []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		body, err = ReadLimited(rc, limit)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%s: %w", docxBody, err)
		}
		break
	}
	if len(body) == 0 {
		return "", fmt.Errorf("no %s found in docx", docxBody)
	}

	xml := string(body)
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	xml = xmlTags.ReplaceAllString(xml, " ")
	return normalizeWhitespace(unescapeXML(xml)), nil
}

func fromText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid utf-8")
	}
	return normalizeWhitespace(string(data)), nil
}

var xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = blanks.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
