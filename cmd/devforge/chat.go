package main

import (
	"fmt"
	"os"
	"strings"

	"devforge/internal/adapter/llm"
	"devforge/internal/chat"
	"devforge/internal/infra/logger"
)

// runChat starts a conversation. With --prompt/-p the remaining
// arguments form a one-shot prompt; otherwise an interactive REPL runs.
func runChat(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := llm.NewFromConfig(cfg.LLM, log)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	session := chat.NewSession(client, "", log)

	if len(args) > 0 && (args[0] == "--prompt" || args[0] == "-p") {
		prompt := strings.Join(args[1:], " ")
		if strings.TrimSpace(prompt) == "" {
			return fmt.Errorf("no prompt provided after %s flag", args[0])
		}
		return session.RunOneShot(ctx, prompt, os.Stdout)
	}

	// Bare arguments are treated as the prompt.
	if len(args) > 0 {
		return session.RunOneShot(ctx, strings.Join(args, " "), os.Stdout)
	}

	return session.RunInteractive(ctx, os.Stdin, os.Stdout)
}
