package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

func sampleEntries() []Entry {
	started := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	merge := NewEntry("s1", models.ToolMerge,
		[]models.StagedFile{
			{Name: "a.pdf", Size: 1000, MimeType: models.MimePDF},
			{Name: "b.pdf", Size: 2000, MimeType: models.MimePDF},
		},
		models.ProcessResult{Name: "merged_document.pdf", Size: 3000, MimeType: models.MimePDF},
		started, 2500*time.Millisecond,
	)
	convert := NewEntry("s2", models.ToolConvert,
		[]models.StagedFile{{Name: "deck.pdf", Size: 5000, MimeType: models.MimePDF}},
		models.ProcessResult{
			Name: "deck_images.zip", Size: 6000, MimeType: models.MimeZip,
			Multiple: true, Count: 7, Format: models.FormatPNG,
		},
		started.Add(time.Minute), 3*time.Second,
	)
	return []Entry{merge, convert}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewEntry(t *testing.T) {
	e := sampleEntries()[0]
	assert.Equal(t, "merge", e.Tool)
	assert.Equal(t, int32(2), e.InputCount)
	assert.Equal(t, int64(3000), e.InputBytes)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, e.Inputs())
	assert.Equal(t, int64(2500), e.DurationMillis)

	r := sampleEntries()[1].Result()
	assert.True(t, r.Multiple)
	assert.Equal(t, 7, r.Count)
	assert.Equal(t, models.FormatPNG, r.Format)
}

func TestEntryInputsKeepSlashesInNames(t *testing.T) {
	e := NewEntry("s1", models.ToolMerge,
		[]models.StagedFile{
			{Name: "a/b.pdf", Size: 1, MimeType: models.MimePDF},
			{Name: "c.pdf", Size: 1, MimeType: models.MimePDF},
		},
		models.ProcessResult{Name: "merged_document.pdf", Size: 2, MimeType: models.MimePDF},
		time.Now(), time.Second,
	)
	assert.Equal(t, int32(2), e.InputCount)
	assert.Equal(t, []string{"a/b.pdf", "c.pdf"}, e.Inputs())

	store := openStore(t)
	require.NoError(t, store.Record(context.Background(), e))
	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"a/b.pdf", "c.pdf"}, all[0].Inputs())

	assert.Nil(t, Entry{}.Inputs())
	assert.Nil(t, NewEntry("s2", models.ToolSplit, nil, models.ProcessResult{}, time.Now(), 0).Inputs())
}

func TestStoreRecordAndList(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	for _, e := range sampleEntries() {
		require.NoError(t, store.Record(ctx, e))
	}

	recent, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "deck_images.zip", recent[0].OutputName)
	assert.Equal(t, int64(2), recent[0].ID)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "merged_document.pdf", all[0].OutputName)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, all[0].Inputs())
	assert.True(t, all[0].StartedAt.Equal(sampleEntries()[0].StartedAt))
	assert.Equal(t, int32(7), all[1].FileCount)
	assert.Equal(t, "PNG", all[1].Format)
}

func TestStoreListDefaultLimit(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	e := sampleEntries()[0]
	for i := 0; i < defaultListLimit+5; i++ {
		require.NoError(t, store.Record(ctx, e))
	}
	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, defaultListLimit)
}

func TestStoreEmpty(t *testing.T) {
	entries, err := openStore(t).All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.parquet")
	entries := sampleEntries()
	entries[0].ID, entries[1].ID = 1, 2

	require.NoError(t, ExportFile(path, FormatParquet, entries))

	loaded, err := ReadParquetFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, entries[0].OutputName, loaded[0].OutputName)
	assert.Equal(t, entries[1].FileCount, loaded[1].FileCount)
	assert.Equal(t, entries[1].Format, loaded[1].Format)
	assert.True(t, entries[0].StartedAt.Equal(loaded[0].StartedAt))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleEntries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "merge", records[1][2])
	assert.Equal(t, "2026-03-14T15:09:26Z", records[1][14])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, sampleEntries()))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "convert", decoded[1]["tool"])
	assert.NotContains(t, decoded[0], "compression_ratio")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleEntries()))

	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "deck_images.zip", doc.Entries[1].OutputName)
}

func TestExportUnsupportedFormat(t *testing.T) {
	err := Export(&bytes.Buffer{}, "xml", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorContains(t, err, "unsupported format")

	path := filepath.Join(t.TempDir(), "out.x")
	err = ExportFile(path, "xml", sampleEntries())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.NoFileExists(t, path)

	assert.NoError(t, CheckFormat("YAML"))
}

func TestSummarize(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, NewEntry("s3", models.ToolMerge,
		[]models.StagedFile{{Name: "c.pdf", Size: 500, MimeType: models.MimePDF}},
		models.ProcessResult{Name: "merged_document.pdf", Size: 500, MimeType: models.MimePDF},
		entries[0].StartedAt.Add(-time.Hour), 3500*time.Millisecond,
	))

	stats := Summarize(entries)
	assert.Equal(t, 3, stats.Operations)
	assert.Equal(t, int64(8500), stats.InputBytes)
	assert.Equal(t, int64(9500), stats.OutputBytes)
	assert.Equal(t, 9*time.Second, stats.TotalTime)
	assert.Equal(t, 3*time.Second, stats.AverageTime)
	assert.Equal(t, entries[2].StartedAt, stats.First)
	assert.Equal(t, entries[1].StartedAt, stats.Last)

	require.Len(t, stats.Tools, 2)
	assert.Equal(t, "merge", stats.Tools[0].Tool)
	assert.Equal(t, 2, stats.Tools[0].Operations)
	assert.Equal(t, 3, stats.Tools[0].InputFiles)
	assert.Equal(t, 3*time.Second, stats.Tools[0].AverageTime)
	assert.Equal(t, "convert", stats.Tools[1].Tool)

	var buf bytes.Buffer
	stats.PrintSummary(&buf)
	assert.Contains(t, buf.String(), "Operations: 3")
	assert.Contains(t, buf.String(), "merge")
}

func TestSummarizeCompressionSavings(t *testing.T) {
	file := []models.StagedFile{{Name: "a.pdf", Size: 1000, MimeType: models.MimePDF}}
	now := time.Now()
	stats := Summarize([]Entry{
		NewEntry("s1", models.ToolCompress, file, models.ProcessResult{Name: "a_compressed.pdf", Size: 400, CompressionRatio: 60}, now, time.Second),
		NewEntry("s2", models.ToolCompress, file, models.ProcessResult{Name: "a_compressed.pdf", Size: 650, CompressionRatio: 35}, now, time.Second),
	})
	require.Len(t, stats.Tools, 1)
	assert.InDelta(t, 47.5, stats.Tools[0].AverageSavings, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil)
	assert.Zero(t, stats.Operations)
	assert.Empty(t, stats.Tools)

	var buf bytes.Buffer
	stats.PrintSummary(&buf)
	assert.Contains(t, buf.String(), "No operations recorded yet.")
}
