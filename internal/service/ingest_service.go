package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/pkg/docparse"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/qa"
	"support-assistant-be/pkg/vectorstore"
)

// ParsedQA groups the pairs extracted from one source document.
type ParsedQA struct {
	Source string
	Pairs  []qa.Pair
}

// ChunkInserter is the write slice of the vector store the pipeline needs.
type ChunkInserter interface {
	EnsureCollection(ctx context.Context, dropExisting bool) error
	InsertChunks(ctx context.Context, records []vectorstore.ChunkRecord) ([]string, error)
}

type IIngestService interface {
	// ParseDocuments loads the docs directory, normalizes each document into
	// Q/A pairs and writes the intermediate pairs file.
	ParseDocuments(ctx context.Context, docsDir, outputPath string) ([]ParsedQA, error)
	// IndexPairs reads the pairs file, chunks and embeds the pairs in
	// batches, and inserts the records. Returns the record count.
	IndexPairs(ctx context.Context, pairsPath string, reset bool) (int, error)
}

type IngestOptions struct {
	BatchSize    int
	MaxWords     int
	OverlapWords int
}

type ingestService struct {
	normalizer *qa.Normalizer
	embedder   embedding.Provider
	store      ChunkInserter
	logger     logger.ILogger

	batchSize    int
	maxWords     int
	overlapWords int
}

func NewIngestService(
	normalizer *qa.Normalizer,
	embedder embedding.Provider,
	store ChunkInserter,
	sysLogger logger.ILogger,
	opts IngestOptions,
) IIngestService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 300
	}
	if opts.OverlapWords < 0 {
		opts.OverlapWords = 0
	}
	return &ingestService{
		normalizer:   normalizer,
		embedder:     embedder,
		store:        store,
		logger:       sysLogger,
		batchSize:    opts.BatchSize,
		maxWords:     opts.MaxWords,
		overlapWords: opts.OverlapWords,
	}
}

func (s *ingestService) ParseDocuments(ctx context.Context, docsDir, outputPath string) ([]ParsedQA, error) {
	s.logger.Info("ingest", "parsing documents", map[string]interface{}{"dir": docsDir})

	documents, err := docparse.LoadDir(docsDir)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ingest", "documents found", map[string]interface{}{"count": len(documents)})

	results := make([]ParsedQA, 0, len(documents))
	for _, doc := range documents {
		pairs, err := s.normalizer.Normalize(ctx, doc.Text)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", doc.Source, err)
		}
		results = append(results, ParsedQA{Source: doc.Source, Pairs: pairs})
		s.logger.Info("ingest", "document normalized", map[string]interface{}{
			"source": doc.Source,
			"pairs":  len(pairs),
		})
	}

	if err := WritePairsFile(results, outputPath); err != nil {
		return nil, err
	}
	s.logger.Info("ingest", "pairs saved", map[string]interface{}{"path": outputPath})
	return results, nil
}

func (s *ingestService) IndexPairs(ctx context.Context, pairsPath string, reset bool) (int, error) {
	s.logger.Info("ingest", "indexing pairs", map[string]interface{}{
		"path":  pairsPath,
		"reset": reset,
	})

	parsed, err := ReadPairsFile(pairsPath)
	if err != nil {
		return 0, err
	}
	s.logger.Info("ingest", "sources loaded", map[string]interface{}{"count": len(parsed)})

	if err := s.store.EnsureCollection(ctx, reset); err != nil {
		return 0, err
	}

	total := 0
	var texts, sources []string
	for _, item := range parsed {
		for _, pair := range item.Pairs {
			for _, chunk := range qa.ChunkPair(pair, s.maxWords, s.overlapWords) {
				texts = append(texts, chunk)
				sources = append(sources, item.Source)
				if len(texts) >= s.batchSize {
					n, err := s.flushBatch(ctx, texts, sources)
					if err != nil {
						return total, err
					}
					total += n
					texts, sources = nil, nil
				}
			}
		}
	}
	if len(texts) > 0 {
		n, err := s.flushBatch(ctx, texts, sources)
		if err != nil {
			return total, err
		}
		total += n
	}

	s.logger.Info("ingest", "chunks indexed", map[string]interface{}{"total": total})
	return total, nil
}

func (s *ingestService) flushBatch(ctx context.Context, texts, sources []string) (int, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch of %d: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embed batch: got %d vectors for %d texts", len(vectors), len(texts))
	}

	records := make([]vectorstore.ChunkRecord, len(texts))
	for i := range texts {
		records[i] = vectorstore.ChunkRecord{
			Embedding: vectors[i],
			Text:      texts[i],
			Source:    sources[i],
		}
	}
	if _, err := s.store.InsertChunks(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// WritePairsFile stores parsed pairs as {"source": [{"q","a"}, ...]} JSON,
// creating the parent directory if needed.
func WritePairsFile(parsed []ParsedQA, outputPath string) error {
	payload := make(map[string][]qa.Pair, len(parsed))
	for _, item := range parsed {
		payload[item.Source] = item.Pairs
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pairs: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create pairs dir: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write pairs file: %w", err)
	}
	return nil
}

// ReadPairsFile loads the intermediate pairs file. Entries missing either
// field are dropped. Sources come back in stable (sorted) order.
func ReadPairsFile(path string) ([]ParsedQA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pairs file: %w", err)
	}

	var payload map[string][]qa.Pair
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse pairs file: %w", err)
	}

	sourceNames := make([]string, 0, len(payload))
	for source := range payload {
		sourceNames = append(sourceNames, source)
	}
	sort.Strings(sourceNames)

	results := make([]ParsedQA, 0, len(payload))
	for _, source := range sourceNames {
		var pairs []qa.Pair
		for _, pair := range payload[source] {
			q := strings.TrimSpace(pair.Question)
			a := strings.TrimSpace(pair.Answer)
			if q != "" && a != "" {
				pairs = append(pairs, qa.Pair{Question: q, Answer: a})
			}
		}
		results = append(results, ParsedQA{Source: source, Pairs: pairs})
	}
	return results, nil
}
