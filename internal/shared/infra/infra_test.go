package infra

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-reviews/internal/config"
	"restaurant-reviews/internal/shared/eventbus"
	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/internal/shared/storage/storagetest"
)

func TestOpenJSONModeNotifiesHub(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Mode: config.ModeJSON, DataDir: t.TempDir()}}

	var ops []string
	infra, err := Open(context.Background(), cfg, nil, func(op, _ string, _ time.Duration, _ error) {
		ops = append(ops, op)
	})
	require.NoError(t, err)
	defer infra.Close()
	assert.Nil(t, infra.Events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := infra.Hub.SubscribeWrites(ctx)
	require.NoError(t, err)

	r := storagetest.NewRestaurant("Di Fara")
	require.NoError(t, infra.Provider.CreateRestaurant(context.Background(), r))

	select {
	case ev := <-events:
		assert.Equal(t, storage.CollectionRestaurants, ev.Collection)
		assert.Equal(t, eventbus.OpCreate, ev.Op)
	case <-time.After(time.Second):
		t.Fatal("no write event received")
	}
	assert.Equal(t, []string{"CreateRestaurant"}, ops)
	assert.Equal(t, storage.StateReady, storage.StateOf(infra.Provider))
}

func TestOpenSQLiteMode(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "nested", "reviews.db")
	cfg := &config.Config{Storage: config.StorageConfig{Mode: config.ModeSQLite, SQLDSN: dsn}}

	infra, err := Open(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	defer infra.Close()

	u := storagetest.NewUser("sqlite@example.com")
	require.NoError(t, infra.Provider.CreateUser(context.Background(), u))
	got, err := infra.Provider.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestOpenUnknownMode(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Mode: "cassandra"}}
	_, err := Open(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}

func TestEnsureSQLiteDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ensureSQLiteDir("file:"+filepath.Join(dir, "a", "b.db")+"?cache=shared"))
	assert.DirExists(t, filepath.Join(dir, "a"))

	assert.NoError(t, ensureSQLiteDir(":memory:"))
	assert.NoError(t, ensureSQLiteDir("file:reviews.db"))
}

func TestNoOpInfrastructureClose(t *testing.T) {
	p := &closeCounter{}
	infra := NewNoOpInfrastructure(p)
	require.NoError(t, infra.Close())
	assert.Equal(t, 1, p.closed)
}

// closeCounter 只统计 Close 调用的 DataProvider
type closeCounter struct {
	storage.DataProvider
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}
