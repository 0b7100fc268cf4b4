package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/saltstore/internal/database"
	"github.com/dandantas/saltstore/internal/jid"
	"github.com/dandantas/saltstore/internal/model"
	"github.com/dandantas/saltstore/internal/returner"
	"github.com/dandantas/saltstore/internal/testutil"
)

func TestSweepOnceRemovesExpiredJobs(t *testing.T) {
	resolver := testutil.NewMemResolver()
	store := returner.New(returner.Config{}, resolver)
	ctx := context.Background()

	oldJid := jid.FromTime(time.Now().Add(-48 * time.Hour))
	freshJid := jid.FromTime(time.Now().Add(-time.Hour))

	require.NoError(t, store.SaveLoad(ctx, oldJid, map[string]any{"fun": "test.ping"}))
	require.NoError(t, store.Returner(ctx, &model.Return{Minion: "m1", Jid: oldJid, Fun: "test.ping", Return: true}))
	require.NoError(t, store.Returner(ctx, &model.Return{Minion: "m2", Jid: oldJid, Fun: "test.ping", Return: true}))

	require.NoError(t, store.SaveLoad(ctx, freshJid, map[string]any{"fun": "cmd.run"}))
	require.NoError(t, store.Returner(ctx, &model.Return{Minion: "m1", Jid: freshJid, Fun: "cmd.run", Return: "ok"}))

	sweeper, err := New(resolver, database.Options{}, 24*time.Hour, "0 * * * *")
	require.NoError(t, err)

	deleted, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	load, err := store.GetLoad(ctx, oldJid)
	require.NoError(t, err)
	assert.Nil(t, load)

	rets, err := store.GetJid(ctx, oldJid)
	require.NoError(t, err)
	assert.Empty(t, rets)

	load, err = store.GetLoad(ctx, freshJid)
	require.NoError(t, err)
	assert.NotNil(t, load)
}

func TestSweepOnceSkipsUnparseableJids(t *testing.T) {
	resolver := testutil.NewMemResolver()
	store := returner.New(returner.Config{}, resolver)
	ctx := context.Background()

	require.NoError(t, store.SaveLoad(ctx, "custom-caller-id", map[string]any{"fun": "test.ping"}))

	sweeper, err := New(resolver, database.Options{}, time.Nanosecond, "0 * * * *")
	require.NoError(t, err)

	deleted, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	load, err := store.GetLoad(ctx, "custom-caller-id")
	require.NoError(t, err)
	assert.NotNil(t, load)
}

func TestSweepOnceRemovesReturnsWithoutLoad(t *testing.T) {
	resolver := testutil.NewMemResolver()
	store := returner.New(returner.Config{}, resolver)
	ctx := context.Background()

	// Returns stored for a jid whose load was never saved.
	orphanJid := jid.FromTime(time.Now().Add(-48 * time.Hour))
	require.NoError(t, store.Returner(ctx, &model.Return{Minion: "m1", Jid: orphanJid, Fun: "test.ping", Return: true}))

	sweeper, err := New(resolver, database.Options{}, 24*time.Hour, "0 * * * *")
	require.NoError(t, err)

	deleted, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	rets, err := store.GetJid(ctx, orphanJid)
	require.NoError(t, err)
	assert.Empty(t, rets)
}

func TestSweeperStartStop(t *testing.T) {
	sweeper, err := New(testutil.NewMemResolver(), database.Options{}, time.Hour, "0 0 1 1 *")
	require.NoError(t, err)

	sweeper.Start(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeperStopsOnContextCancel(t *testing.T) {
	sweeper, err := New(testutil.NewMemResolver(), database.Options{}, time.Hour, "0 0 1 1 *")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		sweeper.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper loop did not exit on context cancellation")
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New(testutil.NewMemResolver(), database.Options{}, time.Hour, "not a cron expr")
	assert.Error(t, err)
}
