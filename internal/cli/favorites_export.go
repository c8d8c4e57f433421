package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/wordmark/internal/config"
	"github.com/mrlokans/wordmark/internal/database"
	"github.com/mrlokans/wordmark/internal/database/favorites"
	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/exporters"
)

// FavoritesExportCommand writes the stored favorites as an export document.
type FavoritesExportCommand struct {
	DatabasePath string
	OutputPath   string

	Out io.Writer
	now func() time.Time
}

func NewFavoritesExportCommand() *FavoritesExportCommand {
	return &FavoritesExportCommand{Out: os.Stdout, now: time.Now}
}

func (cmd *FavoritesExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("favorites-export", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file holding the favorites")
	fs.StringVar(&cmd.OutputPath, "output", "", "File to write (default wordmark-favorites-<date>.json in the current directory, \"-\" for stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s favorites-export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export saved favorites to a JSON document that favorites-import and the\n")
		fmt.Fprintf(os.Stderr, "web app can read back.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s favorites-export -db ./wordmark.db -output backup.json\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *FavoritesExportCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	exporter := exporters.NewExporter(nil, favorites.NewRepository(db.DB))
	doc, err := exporter.Export(context.Background(), entities.ExportFavorites)
	if err != nil {
		return err
	}
	data, err := exporters.Marshal(doc)
	if err != nil {
		return err
	}

	if cmd.OutputPath == "-" {
		_, err := cmd.Out.Write(append(data, '\n'))
		return err
	}

	path := cmd.OutputPath
	if path == "" {
		path = exporters.Filename(entities.ExportFavorites, cmd.now())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Exported %d favorites to %s\n", len(*doc.Data.Favorites), path)
	return nil
}
