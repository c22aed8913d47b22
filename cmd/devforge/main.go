package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"devforge/internal/infra/config"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	switch args[0] {
	case "serve", "mcp":
		exitOnError("serve", runServe(args[1:]))
	case "chat":
		exitOnError("chat", runChat(args[1:]))
	case "plan":
		exitOnError("plan", runPlan(args[1:]))
	case "apply":
		exitOnError("apply", runApply(args[1:]))
	case "test":
		exitOnError("test", runTest(args[1:]))
	case "vault":
		exitOnError("vault", runVault(args[1:]))
	case "version", "-v", "--version":
		fmt.Printf("devforge %s\n", config.Version)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		printUsage(os.Stderr)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		os.Exit(1)
	}
}

func exitOnError(command string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// loadConfig reads the config file named by DEVFORGE_CONFIG (default
// devforge.yaml, absence tolerated) and applies environment overrides.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("DEVFORGE_CONFIG")
	if path == "" {
		path = "devforge.yaml"
	}

	return config.Load(path)
}

func printUsage(w *os.File) {
	fmt.Fprint(w, `devforge - agentic developer CLI

USAGE:
    devforge <COMMAND> [OPTIONS]

COMMANDS:
    serve     Run the MCP server over stdio (alias: mcp)
    chat      Start a conversational session with the configured LLM
    plan      Survey the repository and print a change plan outline
    apply     Execute a change plan (placeholder)
    test      Run the repository tests with streaming output
    vault     Import/export notes (placeholder)
    version   Print version information
    help      Print this help message

OPTIONS:
    -h, --help       Print help information
    -v, --version    Print version information

ENVIRONMENT:
    LLM_PROVIDER     LLM backend to use (default "ollama")
    OLLAMA_HOST      Ollama base URL (default "http://localhost:11434")
    OLLAMA_MODEL     Ollama model name (default "llama3.2")
    DEVFORGE_CONFIG  Config file path (default "devforge.yaml")
`)
}
