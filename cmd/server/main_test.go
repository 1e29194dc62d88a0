package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/valuation-service/internal/adapter/fxapi"
	"github.com/simaogato/valuation-service/internal/adapter/repository/memory"
	"github.com/simaogato/valuation-service/internal/config"
)

const fixturePath = "../../internal/adapter/repository/memory/testdata/fixture.yaml"

func TestNewLogger(t *testing.T) {
	t.Run("JSONAtDebug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)

		logger.Debug("hello", "k", "v")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
		assert.Contains(t, buf.String(), `"k":"v"`)
	})

	t.Run("TextFiltersBelowLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(config.LogConfig{Level: "warn", Format: "text"}, &buf)

		logger.Info("dropped")
		logger.Warn("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "msg=kept")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestBuildSources_Memory(t *testing.T) {
	cfg := &config.Config{Sources: config.SourcesConfig{
		Driver:      config.DriverMemory,
		FX:          config.DriverMemory,
		FixturePath: fixturePath,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	src, err := buildSources(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer src.Close()

	assert.Nil(t, src.db)
	assert.IsType(t, &memory.Store{}, src.positions)
	assert.IsType(t, &memory.Store{}, src.fx)
	assert.NotNil(t, src.fxStore)
}

func TestBuildSources_MemoryWithHTTPFX(t *testing.T) {
	cfg := &config.Config{Sources: config.SourcesConfig{
		Driver:      config.DriverMemory,
		FX:          config.DriverHTTP,
		FixturePath: fixturePath,
		FXAPI:       config.FXAPIConfig{BaseURL: "http://fx.local", MaxRetries: 1},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	src, err := buildSources(context.Background(), cfg, logger)
	require.NoError(t, err)

	assert.IsType(t, &fxapi.Client{}, src.fx)
	assert.Nil(t, src.fxStore)
}

func TestBuildSources_MissingFixture(t *testing.T) {
	cfg := &config.Config{Sources: config.SourcesConfig{
		Driver:      config.DriverMemory,
		FX:          config.DriverMemory,
		FixturePath: "does-not-exist.yaml",
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := buildSources(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load fixture")
}

func writeConfig(t *testing.T, grpcAddr string) string {
	t.Helper()
	content := "server:\n" +
		"  grpc_addr: \"" + grpcAddr + "\"\n" +
		"  api_token: test-token\n" +
		"sources:\n" +
		"  driver: memory\n" +
		"  fixture_path: " + fixturePath + "\n" +
		"seed:\n" +
		"  fx_base: true\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_MissingConfigReturnsError(t *testing.T) {
	err := run(context.Background(), []string{"-config", "does-not-exist.yaml"}, io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_ListenFailureReturnsAfterSourcesAreBuilt(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	path := writeConfig(t, "not-an-address")

	err := run(context.Background(), []string{"-config", path}, io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on not-an-address")
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	path := writeConfig(t, "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Sources load, seeding runs against the fixture, then both servers stop cleanly
	err := run(ctx, []string{"-config", path}, io.Discard)

	require.NoError(t, err)
}
