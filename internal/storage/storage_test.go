package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
)

func TestCreateGetDelete(t *testing.T) {
	store := New()
	sess := store.Create()

	_, err := uuid.Parse(sess.ID())
	require.NoError(t, err)

	got, ok := store.Get(sess.ID())
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, store.Len())

	store.Delete(sess.ID())
	_, ok = store.Get(sess.ID())
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestListIsOrdered(t *testing.T) {
	store := New()
	first := store.Create()
	time.Sleep(2 * time.Millisecond)
	second := store.Create()

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID(), list[0].ID())
	assert.Equal(t, second.ID(), list[1].ID())
}

func TestPruneKeepsActiveAndProcessing(t *testing.T) {
	store := New()
	idle := store.Create()
	busy := store.Create()
	require.NoError(t, busy.SelectTool(models.ToolRotate))
	require.NoError(t, busy.StageFiles([]models.StagedFile{{Name: "a.pdf", MimeType: models.MimePDF}}, session.SourcePicker))
	_, err := busy.StartProcessing()
	require.NoError(t, err)

	removed := store.Prune(time.Now().Add(time.Hour))
	assert.Equal(t, []string{idle.ID()}, removed)

	_, ok := store.Get(busy.ID())
	assert.True(t, ok)

	assert.Empty(t, store.Prune(time.Now().Add(-time.Hour)))
}

func TestSweepStopsOnCancel(t *testing.T) {
	store := New()
	store.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Sweep(ctx, time.Nanosecond, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sweep did not return after cancel")
	}
}
