package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-review/internal/events"
	"resume-review/internal/llm"
	"resume-review/internal/platform"
	"resume-review/internal/shared/config"
	"resume-review/internal/shared/storage/kv"
)

func TestBuildInMemory(t *testing.T) {
	app, err := Build(config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		KVStoreType:     "memory",
		AIProvider:      "none",
		EventsBackend:   "none",
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })

	assert.IsType(t, &kv.MemoryStore{}, app.KV)
	assert.IsType(t, llm.PlaceholderClient{}, app.AI)
	assert.IsType(t, events.Noop{}, app.Events)
	require.NotNil(t, app.Router)

	require.NoError(t, app.Platform.Init(context.Background()))
	assert.Equal(t, platform.StateReady, app.Platform.State())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildSQLite(t *testing.T) {
	dir := t.TempDir()
	app, err := Build(config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   dir,
		KVStoreType:     "sqlite",
		SQLitePath:      filepath.Join(dir, "kv", "kv.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })

	require.NotNil(t, app.DB)
	ctx := context.Background()
	require.NoError(t, app.KV.Set(ctx, "guest:g1", "resume:1", "{}"))
	val, ok, err := app.KV.Get(ctx, "guest:g1", "resume:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", val)
}

func TestBuildRejectsIncompleteBackends(t *testing.T) {
	base := config.Config{Env: "dev", LocalStoreDir: t.TempDir()}

	cfg := base
	cfg.ObjectStoreType = "s3"
	_, err := Build(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.KVStoreType = "postgres"
	_, err = Build(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.AIProvider = "openai"
	_, err = Build(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.EventsBackend = "sqs"
	_, err = Build(cfg)
	assert.Error(t, err)
}
