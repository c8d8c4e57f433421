package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/wordmark/internal/cli"
	"github.com/mrlokans/wordmark/internal/config"
	"github.com/mrlokans/wordmark/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every cli subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	config.LoadDotEnv()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "fonts-list":
		cmd = cli.NewFontsListCommand()
	case "favorites-export":
		cmd = cli.NewFavoritesExportCommand()
	case "favorites-import":
		cmd = cli.NewFavoritesImportCommand()
	case "version":
		fmt.Printf("wordmark %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve             Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  fonts-list        Load the font catalogs and print counts per provider\n")
	fmt.Fprintf(os.Stderr, "  favorites-export  Write saved favorites to an export document\n")
	fmt.Fprintf(os.Stderr, "  favorites-import  Import favorites from an export document\n")
	fmt.Fprintf(os.Stderr, "  version           Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
