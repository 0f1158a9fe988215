// Package format renders sizes and result descriptors for people.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

var units = []string{"Bytes", "KB", "MB", "GB"}

// Size formats bytes with base-1024 units, rounded to two decimals with
// trailing zeros dropped: 1536 -> "1.5 KB".
func Size(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	// floor(log1024(bytes)) by repeated division, which stays exact at
	// powers of 1024 where the float logarithm can land just below.
	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

// Annotations returns the tool-specific notes shown next to a result
func Annotations(r models.ProcessResult) []string {
	var notes []string
	if r.Multiple {
		notes = append(notes, fmt.Sprintf("%d files", r.Count))
	}
	if r.CompressionRatio != 0 {
		notes = append(notes, fmt.Sprintf("%d%% smaller", r.CompressionRatio))
	}
	if r.Format != "" {
		notes = append(notes, fmt.Sprintf("%s format", r.Format))
	}
	if r.RotationDescription != "" {
		notes = append(notes, "Rotated "+r.RotationDescription)
	}
	if r.IsPasswordProtected {
		notes = append(notes, "Password protected")
	}
	return notes
}

// Summary is the formatted size followed by the annotations
func Summary(r models.ProcessResult) string {
	parts := append([]string{Size(r.Size)}, Annotations(r)...)
	return strings.Join(parts, " • ")
}
