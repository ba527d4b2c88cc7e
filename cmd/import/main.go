// Command import loads a question spreadsheet into the configured storage
// without starting the server.
//
//	import [-clear] questions.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/bootstrap"
	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/logger"
	"github.com/stemsi/kbtrainer/internal/service"
)

func main() {
	var clearProgress bool
	flag.BoolVar(&clearProgress, "clear", false, "Also reset exam, exercise and study progress")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: import [-clear] <file.xlsx|file.csv>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := config.Load()
	if clearProgress {
		cfg.ClearProgressOnImport = true
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rt, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer rt.Close()

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Cannot open file")
	}
	defer f.Close()

	report, err := service.NewImportService(rt.Store, rt.Reporter, log).Import(ctx, path, f)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Import failed")
	}

	fmt.Printf("Imported %d questions", report.Imported)
	if len(report.Skipped) > 0 {
		fmt.Printf(", skipped rows %v", report.Skipped)
	}
	fmt.Println()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
