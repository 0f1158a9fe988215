package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

func TestSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1048576, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3072 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Size(tt.bytes), "Size(%d)", tt.bytes)
	}
}

func TestAnnotations(t *testing.T) {
	assert.Empty(t, Annotations(models.ProcessResult{Name: "merged_document.pdf", Size: 10}))

	convert := models.ProcessResult{Multiple: true, Count: 4, Format: models.FormatPNG}
	assert.Equal(t, []string{"4 files", "PNG format"}, Annotations(convert))

	assert.Equal(t, []string{"42% smaller"}, Annotations(models.ProcessResult{CompressionRatio: 42}))
	assert.Equal(t, []string{"Rotated 90° clockwise"}, Annotations(models.ProcessResult{RotationDescription: "90° clockwise"}))
	assert.Equal(t, []string{"Password protected"}, Annotations(models.ProcessResult{IsPasswordProtected: true}))
}

func TestSummary(t *testing.T) {
	r := models.ProcessResult{Size: 1536, Multiple: true, Count: 3}
	assert.Equal(t, "1.5 KB • 3 files", Summary(r))
	assert.Equal(t, "0 Bytes", Summary(models.ProcessResult{}))
}
