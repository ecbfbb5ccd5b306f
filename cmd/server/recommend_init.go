// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfsense/internal/cache"
	"github.com/tomtom215/shelfsense/internal/config"
	"github.com/tomtom215/shelfsense/internal/cost"
	"github.com/tomtom215/shelfsense/internal/recommend"
	"github.com/tomtom215/shelfsense/internal/recommend/signals"
	"github.com/tomtom215/shelfsense/internal/recommend/storage"
	"github.com/tomtom215/shelfsense/internal/retail"
	"github.com/tomtom215/shelfsense/internal/store"
)

// recommendComponents holds everything the API and supervisor need.
type recommendComponents struct {
	service  *recommend.Service
	cache    *cache.ResultCache
	results  *storage.ResultLog
	tracker  *cost.Tracker
	costSink *cost.DuckDBSink
	logger   zerolog.Logger
}

func (c *recommendComponents) close() {
	if c.costSink == nil {
		return
	}
	if err := c.costSink.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Error closing cost database")
	}
}

// initRecommend builds the catalog, cache, engine, cost tracker and service.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, s store.Store, logger zerolog.Logger) (*recommendComponents, error) {
	catalog := retail.NewStoreCatalog(s, cfg.Cache.CatalogSnapshotTTL, logger)
	directory := retail.NewStoreDirectory(s, logger)

	if err := applySeed(ctx, cfg.Seed, catalog, directory, logger); err != nil {
		return nil, err
	}

	resultCache, err := cache.NewResultCache(s, cfg.Cache.ResultCache(), logger)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}

	engineCfg := cfg.Recommend.Clone()
	results := storage.NewResultLog(s, "", logger, storage.WithRetention(engineCfg.ResultRetention))
	generators := signals.All(catalog, engineCfg)
	engine, err := recommend.NewEngine(engineCfg, directory, generators, logger,
		recommend.WithResultStore(results))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	rc := &recommendComponents{cache: resultCache, results: results, logger: logger}

	var sink cost.Sink
	if cfg.Cost.Enabled {
		duck, err := cost.OpenDuckDBSink(ctx, cfg.Cost.DuckDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open cost database: %w", err)
		}
		rc.costSink = duck
		sink = duck
	}

	tracker, err := cost.NewTracker(cfg.Cost.Tracker(), sink, logger)
	if err != nil {
		rc.close()
		return nil, err
	}
	rc.tracker = tracker

	service, err := recommend.NewService(recommend.ServiceDeps{
		Engine:    engine,
		Cache:     resultCache,
		Catalog:   catalog,
		Directory: directory,
		Feedback:  directory,
		Results:   results,
		Costs:     tracker,
	}, logger)
	if err != nil {
		rc.close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	rc.service = service

	logger.Info().
		Int("generators", len(generators)).
		Dur("result_expiry", engineCfg.ResultExpiry).
		Msg("Recommendation service initialized")
	return rc, nil
}

// applySeed loads the seed file, if configured, into the catalog and
// directory.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func applySeed(ctx context.Context, cfg config.SeedConfig, catalog *retail.StoreCatalog, directory *retail.StoreDirectory, logger zerolog.Logger) error {
	if cfg.Path == "" {
		return nil
	}

	if cfg.OnlyIfEmpty {
		existing, err := catalog.ListAll(ctx, recommend.ProductFilter{})
		if err != nil {
			return fmt.Errorf("check catalog before seeding: %w", err)
		}
		if len(existing) > 0 {
			logger.Info().Int("products", len(existing)).Msg("Catalog not empty, skipping seed")
			return nil
		}
	}

	seed, err := retail.LoadSeedFile(cfg.Path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	stats, err := seed.Apply(ctx, catalog, directory)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}

	logger.Info().
		Str("path", cfg.Path).
		Int("products", stats.Products).
		Int("profiles", stats.Profiles).
		Int("purchases", stats.Purchases).
		Int("interactions", stats.Interactions).
		Msg("Seed data applied")
	return nil
}
