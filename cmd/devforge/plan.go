package main

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// runPlan surveys the working directory and prints an outline of what a
// change plan would touch.
func runPlan(_ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	fmt.Println("Generating change plan...")
	fmt.Printf("Repository: %s\n\n", cwd)

	entries, err := os.ReadDir(cwd)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	var dirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	fmt.Println("Directories:")
	for _, d := range dirs {
		fmt.Printf("  %s/\n", d)
	}
	fmt.Println("\nFiles:")
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}
	fmt.Printf("\nSummary:\nFound %d directories and %d files\n", len(dirs), len(files))

	var source []string
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".go"),
			strings.HasSuffix(f, ".mod"),
			strings.HasSuffix(f, ".md"),
			strings.HasSuffix(f, ".yaml"),
			strings.HasSuffix(f, ".yml"):
			source = append(source, f)
		}
	}
	if len(source) > 0 {
		fmt.Println("\nPotential files to modify:")
		for _, f := range source {
			fmt.Printf("  %s\n", f)
		}
	}

	return nil
}

// runApply is a placeholder until plan execution lands.
func runApply(_ []string) error {
	fmt.Println("apply: plan execution is not implemented yet; run 'devforge plan' to preview changes")
	return nil
}

// runVault is a placeholder for note import/export.
func runVault(_ []string) error {
	fmt.Println("vault: note import/export is not implemented yet")
	return nil
}

// runTest streams `go test ./...` through to the terminal.
func runTest(args []string) error {
	cmdArgs := append([]string{"test", "./..."}, args...)
	cmd := exec.Command("go", cmdArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
