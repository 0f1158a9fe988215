// Package processing runs document operations against a session.
//
// Simulator is a placeholder engine: it sleeps for a random duration and
// fabricates result metadata. Its size and count rules are arbitrary and do
// not model real PDF compression or rasterization. A real engine replaces it
// by implementing Processor.
package processing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

var (
	ErrNoFiles   = errors.New("no input files")
	ErrCancelled = errors.New("processing cancelled")
)

const (
	DefaultMinDelay = 2 * time.Second
	DefaultMaxDelay = 4 * time.Second

	mergedName       = "merged_document.pdf"
	rotationApplied  = "90° clockwise"
	protectOverhead  = 1.01
	splitSizeFactor  = 0.8
	imageSizeFactor  = 1.2
	minCompressRatio = 0.3
	compressSpread   = 0.4
)

// Processor turns staged files into a result descriptor
type Processor interface {
	Process(ctx context.Context, tool models.ToolID, files []models.StagedFile) (models.ProcessResult, error)
}

// Simulator is the placeholder Processor
type Simulator struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSimulator returns a simulator with the given delay range. Non-positive
// or inverted bounds fall back to the defaults.
func NewSimulator(minDelay, maxDelay time.Duration) *Simulator {
	if minDelay < 0 || maxDelay <= 0 || minDelay > maxDelay {
		minDelay, maxDelay = DefaultMinDelay, DefaultMaxDelay
	}
	return &Simulator{
		MinDelay: minDelay,
		MaxDelay: maxDelay,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		sleep:    sleepContext,
	}
}

// WithSeed makes the simulator's random draws reproducible
func (s *Simulator) WithSeed(seed uint64) *Simulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return s
}

// Process waits a random delay, then fabricates the result for tool
func (s *Simulator) Process(ctx context.Context, tool models.ToolID, files []models.StagedFile) (models.ProcessResult, error) {
	if len(files) == 0 {
		return models.ProcessResult{}, ErrNoFiles
	}
	if _, err := tools.Lookup(tool); err != nil {
		return models.ProcessResult{}, err
	}

	if err := s.sleep(ctx, s.delay()); err != nil {
		return models.ProcessResult{}, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	return s.fabricate(tool, files), nil
}

func (s *Simulator) delay() time.Duration {
	spread := s.MaxDelay - s.MinDelay
	if spread <= 0 {
		return s.MinDelay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.MinDelay + time.Duration(s.rng.Int64N(int64(spread)))
}

func (s *Simulator) fabricate(tool models.ToolID, files []models.StagedFile) models.ProcessResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := files[0]
	base := BaseName(first.Name)

	switch tool {
	case models.ToolMerge:
		var total int64
		for _, f := range files {
			total += f.Size
		}
		return models.ProcessResult{Name: mergedName, Size: total, MimeType: models.MimePDF}

	case models.ToolSplit:
		return models.ProcessResult{
			Name:     base + "_pages.zip",
			Size:     scale(first.Size, splitSizeFactor),
			MimeType: models.MimeZip,
			Multiple: true,
			Count:    2 + s.rng.IntN(10),
		}

	case models.ToolCompress:
		r := minCompressRatio + s.rng.Float64()*compressSpread
		return models.ProcessResult{
			Name:             base + "_compressed.pdf",
			Size:             int64(float64(first.Size) * r),
			MimeType:         models.MimePDF,
			CompressionRatio: int(math.Round((1 - r) * 100)),
		}

	case models.ToolConvert:
		return models.ProcessResult{
			Name:     base + "_images.zip",
			Size:     scale(first.Size, imageSizeFactor),
			MimeType: models.MimeZip,
			Multiple: true,
			Format:   models.FormatPNG,
			Count:    1 + s.rng.IntN(20),
		}

	case models.ToolRotate:
		return models.ProcessResult{
			Name:                base + "_rotated.pdf",
			Size:                first.Size,
			MimeType:            models.MimePDF,
			RotationDescription: rotationApplied,
		}

	case models.ToolProtect:
		return models.ProcessResult{
			Name:                base + "_protected.pdf",
			Size:                scale(first.Size, protectOverhead),
			MimeType:            models.MimePDF,
			IsPasswordProtected: true,
		}
	}

	return models.ProcessResult{Name: base + "_processed.pdf", Size: first.Size, MimeType: models.MimePDF}
}

// BaseName strips the first literal ".pdf" from name. The match is case
// sensitive and need not be at the end, so "a.pdf.pdf" becomes "a.pdf".
func BaseName(name string) string {
	return strings.Replace(name, ".pdf", "", 1)
}

func scale(size int64, factor float64) int64 {
	return int64(math.Round(float64(size) * factor))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
