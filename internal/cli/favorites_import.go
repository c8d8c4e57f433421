package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/wordmark/internal/config"
	"github.com/mrlokans/wordmark/internal/database"
	"github.com/mrlokans/wordmark/internal/database/favorites"
	"github.com/mrlokans/wordmark/internal/importers"
)

// FavoritesImportCommand loads the favorites of an export document into the
// database.
type FavoritesImportCommand struct {
	FilePath     string
	DatabasePath string
	Mode         string
	DryRun       bool

	Out io.Writer
}

func NewFavoritesImportCommand() *FavoritesImportCommand {
	return &FavoritesImportCommand{Out: os.Stdout}
}

func (cmd *FavoritesImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("favorites-import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the export document (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file holding the favorites")
	fs.StringVar(&cmd.Mode, "mode", string(importers.ModeMerge), "merge keeps existing favorites, replace discards them")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the document without changing the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s favorites-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import favorites from a Wordmark export document. History and current\n")
		fmt.Fprintf(os.Stderr, "designs in the document are skipped; they only live in a running server.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s favorites-import -file backup.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s favorites-import -file backup.json -mode replace\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.FilePath == "" && fs.NArg() > 0 {
		cmd.FilePath = fs.Arg(0)
	}
	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if _, err := importers.ParseMode(cmd.Mode); err != nil {
		return err
	}
	return nil
}

func (cmd *FavoritesImportCommand) Run() error {
	raw, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
	}

	doc, err := importers.Parse(raw)
	if err != nil {
		return err
	}
	if doc.Data.Favorites == nil {
		return fmt.Errorf("%s holds a %q export without favorites", cmd.FilePath, doc.Type)
	}
	if doc.Data.History != nil || doc.Data.Current != nil {
		fmt.Fprintln(cmd.Out, "Skipping history in the document; import it through the web app instead")
		doc.Data.History = nil
		doc.Data.Current = nil
	}

	fmt.Fprintf(cmd.Out, "Found %d favorites in %s\n", len(*doc.Data.Favorites), cmd.FilePath)
	if cmd.DryRun {
		fmt.Fprintln(cmd.Out, "Dry run complete. Use without -dry-run to import.")
		return nil
	}

	mode, _ := importers.ParseMode(cmd.Mode)

	db, err := database.NewDatabase(cmd.DatabasePath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	importer := importers.NewImporter(nil, favorites.NewRepository(db.DB))
	result, err := importer.Apply(context.Background(), doc, mode)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Out, "Imported %d favorites (%s)\n", result.FavoritesAdded, result.Mode)
	return nil
}
