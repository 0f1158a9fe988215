// Package tools holds the fixed registry of document operations.
package tools

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

// ErrInvalidToolID is returned for identifiers outside the registry
var ErrInvalidToolID = errors.New("invalid tool id")

var registry = []models.Tool{
	{
		ID:                   models.ToolMerge,
		Name:                 "Merge PDFs",
		Description:          "Combine multiple PDF files into one document",
		AcceptsMultipleFiles: true,
	},
	{
		ID:          models.ToolSplit,
		Name:        "Split PDF",
		Description: "Split a PDF into separate pages or ranges",
	},
	{
		ID:          models.ToolCompress,
		Name:        "Compress PDF",
		Description: "Reduce PDF file size while maintaining quality",
	},
	{
		ID:          models.ToolConvert,
		Name:        "Convert to Images",
		Description: "Convert PDF pages to JPG or PNG images",
	},
	{
		ID:          models.ToolRotate,
		Name:        "Rotate Pages",
		Description: "Rotate PDF pages clockwise or counterclockwise",
	},
	{
		ID:          models.ToolProtect,
		Name:        "Password Protect",
		Description: "Add password protection to your PDF",
	},
}

// List returns the tools in display order. The slice is a copy.
func List() []models.Tool {
	out := make([]models.Tool, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the tool with the given id
func Lookup(id models.ToolID) (models.Tool, error) {
	for _, t := range registry {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Tool{}, fmt.Errorf("%w: %q", ErrInvalidToolID, id)
}

// ParseToolID converts user input into a registered ToolID
func ParseToolID(s string) (models.ToolID, error) {
	t, err := Lookup(models.ToolID(s))
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// IDs returns the registered identifiers in display order
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for _, t := range registry {
		ids = append(ids, string(t.ID))
	}
	return ids
}
