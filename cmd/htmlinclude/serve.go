package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"

	include "github.com/alnah/go-include"
	"github.com/alnah/go-include/internal/hints"
	"github.com/alnah/go-include/internal/server"
)

// ErrCacheUnavailable is returned when the shared cache cannot be reached at startup.
var ErrCacheUnavailable = errors.New("cache backend unavailable")

// startupPingTimeout bounds the initial cache check.
const startupPingTimeout = 5 * time.Second

// runServe exposes the pipeline over HTTP until interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeCommonFlags(&flags.common, cfg)
	mergeIncludeFlags(&flags.include, cfg)
	if err := mergeFetchFlags(&flags.fetch, cfg); err != nil {
		return err
	}
	mergeCacheFlags(&flags.cache, cfg)
	mergeRenderFlags(&flags.render, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	env.Config = cfg

	logger, err := newLogger(env.Stderr, cfg, &flags.common)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(ctx)
	defer stop()

	srvOpts := []server.Option{server.WithLogger(logger)}
	if flags.maxBody > 0 {
		srvOpts = append(srvOpts, server.WithMaxBodyBytes(flags.maxBody))
	}

	cache, redis := newCache(cfg)
	if redis != nil {
		defer func() { _ = redis.Close() }()
		pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
		err := redis.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("%w: %v%s", ErrCacheUnavailable, err, hints.ForRedisConnect(cfg.Cache.Redis.Addr))
		}
		srvOpts = append(srvOpts, server.WithHealthCheck(redis.Ping))
	}

	opts, err := pipelineOptions(cfg, logger, cache)
	if err != nil {
		return err
	}
	if flags.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, include.WithMetrics(reg))
		srvOpts = append(srvOpts, server.WithGatherer(reg))
	}

	p, err := include.NewPipeline(opts...)
	if err != nil {
		return err
	}

	logger.Info("serving", "addr", flags.addr, "maxDepth", p.MaxDepth(), "cache", cfg.Cache.Enabled, "metrics", flags.metrics)
	return server.New(p, srvOpts...).ListenAndServe(ctx, flags.addr)
}
