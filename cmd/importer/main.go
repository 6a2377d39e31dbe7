// Command importer bulk-loads books into the catalog from a CSV file.
//
// Usage:
//
//	importer -file books.csv
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/openshelf/library-system/internal/importer"
	"github.com/openshelf/library-system/internal/infrastructure/config"
	mongostore "github.com/openshelf/library-system/internal/infrastructure/db/mongo"
	"github.com/openshelf/library-system/pkg/logger"
)

func main() {
	var (
		file    = flag.String("file", "", "path to the CSV file (header: title,author,category,status)")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall import timeout")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	if *file == "" {
		log.Fatal().Msg("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open csv file")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer client.Disconnect(ctx)

	books := mongostore.NewBookRepository(db)
	if err := books.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	result, err := importer.New(books, log).ImportCSV(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	log.Info().
		Str("file", *file).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("import complete")
}
