package faqbot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqbot/ai/mock"
	"github.com/poiesic/faqbot/core"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithAIProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.FaqRepository())
		assert.NotNil(t, db.CodeRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("in-memory storage", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemoryStorage(), WithAIProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithAIProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir, WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir, WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingest pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create matching engine", func(t *testing.T) {
		engine, err := db.NewEngine()
		require.NoError(t, err)
		require.NotNil(t, engine)
	})

	t.Run("can create server", func(t *testing.T) {
		server, err := db.NewServer(nil)
		require.NoError(t, err)
		require.NotNil(t, server)
	})
}

func TestDatabase_EndToEndMatch(t *testing.T) {
	db, err := NewDatabase("", WithInMemoryStorage(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	_, err = db.FaqRepository().AddFaqs(ctx, &core.FaqRecord{
		Question: "Are laptops allowed in class?",
		Answer:   "Yes, laptops are allowed.",
	})
	require.NoError(t, err)

	engine, err := db.NewEngine()
	require.NoError(t, err)

	snapshot, err := db.FaqRepository().Snapshot(ctx)
	require.NoError(t, err)

	verdict, err := engine.Match(ctx, "are laptops allowed?", snapshot)
	require.NoError(t, err)
	require.True(t, verdict.Matched)
	assert.Equal(t, "Yes, laptops are allowed.", verdict.Record.Answer)
	assert.Equal(t, core.MethodLexicalPartial, verdict.Method)
}
