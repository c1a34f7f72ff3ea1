// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package faqbot

import (
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/ai/openai"
	"github.com/poiesic/faqbot/ingest"
	"github.com/poiesic/faqbot/match"
	"github.com/poiesic/faqbot/storage"
	"github.com/poiesic/faqbot/storage/badger"
	"github.com/poiesic/faqbot/web"
)

type Database struct {
	backend  *badger.Backend
	faqRepo  storage.FaqRepository
	codeRepo storage.CodeRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the AI configuration used to build the default provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider supplies a pre-built AI provider, bypassing the default
// OpenAI-compatible provider.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all records in memory instead of on disk.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create FAQ repository
	faqRepo, err := badger.NewFaqRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create verification code repository
	codeRepo, err := badger.NewCodeRepository(backend)
	if err != nil {
		faqRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			codeRepo.Close()
			faqRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		faqRepo:  faqRepo,
		codeRepo: codeRepo,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.codeRepo.Close(); err != nil {
		db.logger.Error("error closing code repository", "err", err)
		return err
	}
	if err := db.faqRepo.Close(); err != nil {
		db.logger.Error("error closing FAQ repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) FaqRepository() storage.FaqRepository {
	return db.faqRepo
}

func (db *Database) CodeRepository() storage.CodeRepository {
	return db.codeRepo
}

func (db *Database) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(db.faqRepo, db.provider, opts...)
}

func (db *Database) NewEngine(opts ...match.Option) (*match.Engine, error) {
	return match.NewEngine(db.provider, opts...)
}

func (db *Database) NewServer(pipeline *ingest.Pipeline, opts ...match.Option) (*web.Server, error) {
	engine, err := match.NewEngine(db.provider, opts...)
	if err != nil {
		return nil, err
	}
	return web.NewServer(db.faqRepo, engine, pipeline, db.logger)
}
