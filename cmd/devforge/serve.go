package main

import (
	"context"
	"fmt"
	"os"

	"devforge/internal/adapter/llm"
	"devforge/internal/adapter/state"
	"devforge/internal/adapter/tool"
	"devforge/internal/infra/logger"
	"devforge/internal/infra/tracer"
	"devforge/internal/mcp"
)

// runServe wires the registry and serves MCP over stdin/stdout. Logs and
// traces go to stderr; stdout carries only protocol lines.
func runServe(_ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signalContext()
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer setup: %w", err)
	}
	defer shutdownTracer(context.Background())

	store, err := state.New(cfg.State)
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	defer store.Close()

	registry := tool.NewRegistry(log)
	for _, st := range tool.StateTools(store) {
		registry.Register(tool.WithRateLimit(st, cfg.Tools.RateLimit))
	}

	if cfg.Tools.LLMTool {
		client, err := llm.NewFromConfig(cfg.LLM, log)
		if err != nil {
			return err
		}
		registry.Register(tool.WithRateLimit(tool.LLMCompleteTool(client, log), cfg.Tools.RateLimit))
	}

	if len(cfg.MCP.Servers) > 0 {
		bridge, err := tool.NewMCPBridge(ctx, cfg.MCP.Servers, log)
		if err != nil {
			return fmt.Errorf("mcp bridge: %w", err)
		}
		defer bridge.Close()
		bridge.RegisterAll(registry)
	}

	log.Info("mcp server starting",
		"name", cfg.MCP.ServerName,
		"version", cfg.MCP.ServerVersion,
		"tools", registry.Len(),
	)

	srv := mcp.NewServer(cfg.MCP.ServerName, cfg.MCP.ServerVersion, registry, os.Stdin, os.Stdout, log)
	return srv.Run(ctx)
}
