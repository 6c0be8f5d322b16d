// Command nanotune-export condenses labelled measurements into training
// tensors and repairs tensors written with unnormalized signals.
//
//	nanotune-export export -category pinchoff -sources a,b [-skip a:1,2;b:3] [-flipped]
//	nanotune-export correct -file dotregime [-folder dir]
//	nanotune-export migrate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jenshnielsen/nanotune/config"
	"github.com/jenshnielsen/nanotune/dataset/gormstore"
	"github.com/jenshnielsen/nanotune/export"
	"github.com/jenshnielsen/nanotune/logging"
)

var errUsage = errors.New("usage: nanotune-export <export|correct|migrate> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logging.Error(err, "nanotune-export failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "export":
		return runExport(ctx, args[1:])
	case "correct":
		return runCorrect(args[1:])
	case "migrate":
		return runMigrate(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

// setup loads the configuration and points the global logger at its level.
func setup(path string) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewDefaultLogger()
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
	return cfg, logger, nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "configuration file (yaml or json)")
		category   = fs.String("category", "", "category to export, e.g. pinchoff or dotregime")
		sources    = fs.String("sources", "", "comma separated record sources")
		skip       = fs.String("skip", "", "ids to leave out, e.g. a:1,2;b:3")
		flipped    = fs.Bool("flipped", false, "add a flipped copy of every record")
		quality    = fs.String("quality", "", "only export records of this quality")
		fileName   = fs.String("o", "", "output file name, defaults to the stage names")
		folder     = fs.String("folder", "", "output folder, defaults to db_folder")
		readout    = fs.String("readout", "", "readout method, defaults to the configured one")
		workers    = fs.Int("workers", runtime.NumCPU(), "records prepared concurrently")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := export.Options{
		Category:   *category,
		Sources:    splitList(*sources),
		AddFlipped: *flipped,
		FileName:   *fileName,
		Folder:     *folder,
		Readout:    *readout,
		Workers:    *workers,
	}
	if len(opts.Sources) == 0 {
		return fmt.Errorf("%w: -sources is required", errUsage)
	}
	var err error
	if opts.SkipIDs, err = parseSkip(*skip); err != nil {
		return err
	}
	if opts.Quality, err = parseQuality(*quality); err != nil {
		return err
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}

	store, err := gormstore.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := export.NewExporter(cfg, store, logger).Export(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%s %v\n", res.Path, res.Tensor.Shape())
	return nil
}

func runCorrect(args []string) error {
	fs := flag.NewFlagSet("correct", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "configuration file (yaml or json)")
		file       = fs.String("file", "", "tensor file to correct")
		folder     = fs.String("folder", "", "folder of the file, defaults to db_folder")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}

	res, err := export.NewCorrector(cfg, logger).Correct(*file, *folder)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d records corrected\n", res.Path, len(res.Corrected))
	return nil
}

func runMigrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	configPath := fs.String("config", "", "configuration file (yaml or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	store, err := gormstore.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("measurements table migrated", logging.Fields{"host": cfg.Database.Host, "database": cfg.Database.Name})
	return nil
}
