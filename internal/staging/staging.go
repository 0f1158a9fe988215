// Package staging turns local paths into staged file descriptors.
package staging

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

const sniffLen = 512

// FromPaths stats and sniffs each path. Directories are rejected.
func FromPaths(paths []string) ([]models.StagedFile, error) {
	files := make([]models.StagedFile, 0, len(paths))
	for _, p := range paths {
		f, err := FromPath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// FromPath builds a StagedFile for one local file
func FromPath(path string) (models.StagedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return models.StagedFile{}, fmt.Errorf("%s is a directory", path)
	}

	mimeType, err := DetectMimeType(file, filepath.Base(path))
	if err != nil {
		return models.StagedFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return models.StagedFile{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: mimeType,
	}, nil
}

// DetectMimeType sniffs the leading bytes of r. When the content is not
// recognised the file extension decides, which matches what a browser
// reports for an empty or truncated upload.
func DetectMimeType(r io.Reader, name string) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}

	detected := http.DetectContentType(buf[:n])
	if base, _, perr := mime.ParseMediaType(detected); perr == nil {
		detected = base
	}
	if detected != "application/octet-stream" && (n > 0 || detected != "text/plain") {
		return detected, nil
	}

	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if base, _, perr := mime.ParseMediaType(byExt); perr == nil {
			return base, nil
		}
		return byExt, nil
	}
	return detected, nil
}

// SplitPaths splits user input on whitespace, honouring simple double quotes
// so paths with spaces can be entered.
func SplitPaths(input string) []string {
	var paths []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if current.Len() > 0 {
			paths = append(paths, current.String())
			current.Reset()
		}
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return paths
}
