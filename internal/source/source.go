// Package source resolves a document given either inline or as a file.
package source

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-matcher/internal/extract"
)

// Source describes where a document comes from.
type Source struct {
	// Name is used in error messages, e.g. "job description".
	Name string
	// Value is the inline document text.
	Value string
	// File points to a pdf, docx or txt file. When set it takes precedence over Value.
	File string
	// AllowEmpty accepts a File without text, such as an image-only pdf.
	AllowEmpty bool
}

// Load returns the trimmed document text. An error is returned when neither
// File nor Value yield any text, unless AllowEmpty is set and File was read.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "document"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		text, err := extract.ExtractFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = text
	}

	text := strings.TrimSpace(src.Value)
	if text == "" {
		if file != "" {
			if src.AllowEmpty {
				return "", nil
			}
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return text, nil
}
