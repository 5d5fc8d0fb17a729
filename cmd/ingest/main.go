package main

import (
	"context"
	"log"

	"support-assistant-be/internal/bootstrap"
	"support-assistant-be/internal/config"
	"support-assistant-be/pkg/database"

	"github.com/spf13/cobra"
)

var (
	flagParse bool
	flagIndex bool
	flagReset bool
	flagDocs  string
	flagPairs string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build the support knowledge base from source documents",
		Long: "Parses support documents into Q/A pairs and indexes them into the " +
			"vector store. With no stage flags, runs both stages and resets the collection.",
		RunE: runIngest,
	}

	rootCmd.Flags().BoolVar(&flagParse, "parse", false, "parse documents into Q/A pairs")
	rootCmd.Flags().BoolVar(&flagIndex, "index", false, "index Q/A pairs into the vector store")
	rootCmd.Flags().BoolVar(&flagReset, "reset", false, "drop the collection before indexing")
	rootCmd.Flags().StringVar(&flagDocs, "docs", "", "override the documents directory")
	rootCmd.Flags().StringVar(&flagPairs, "pairs", "", "override the pairs file path")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	docsDir := cfg.Knowledge.DocsDir
	if flagDocs != "" {
		docsDir = flagDocs
	}
	pairsPath := cfg.Knowledge.PairsPath
	if flagPairs != "" {
		pairsPath = flagPairs
	}

	// No stage flags means the full pipeline with a fresh collection.
	parse, index, reset := flagParse, flagIndex, flagReset
	if !parse && !index {
		parse, index, reset = true, true, true
	}

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return err
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.ChunkStore.Close()

	ctx := context.Background()

	if parse {
		parsed, err := container.IngestService.ParseDocuments(ctx, docsDir, pairsPath)
		if err != nil {
			return err
		}
		total := 0
		for _, item := range parsed {
			total += len(item.Pairs)
		}
		log.Printf("Parsed %d documents into %d pairs -> %s", len(parsed), total, pairsPath)
	}

	if index {
		count, err := container.IngestService.IndexPairs(ctx, pairsPath, reset)
		if err != nil {
			return err
		}
		log.Printf("Indexed %d chunks into collection %q", count, cfg.Knowledge.Collection)
	}

	return nil
}
