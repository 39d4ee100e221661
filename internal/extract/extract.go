// Package extract turns uploaded PDF and plain-text files into text.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Supported lists the accepted file extensions.
var Supported = []string{".pdf", ".txt", ".md"}

// IsSupported reports whether name has an accepted extension.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range Supported {
		if ext == s {
			return true
		}
	}
	return false
}

// File reads and extracts the file at path.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Bytes(filepath.Base(path), data)
}

// Bytes extracts text from data, choosing the format by the extension of name.
func Bytes(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF(data)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: not valid UTF-8 text", name)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%s: unsupported file type (want one of %s)", name, strings.Join(Supported, ", "))
	}
}

// PDF concatenates the plain text of every page in order, one line break
// between pages.
func PDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
