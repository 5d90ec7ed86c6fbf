package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"datajobs/internal/app"
	"datajobs/internal/config"
	"datajobs/internal/domain/posting"
)

// Reads newline-delimited JSON records from a file (or stdin with -file -)
// and runs them through the ingestion pipeline as one batch.
func main() {
	file := flag.String("file", "", "NDJSON file of raw records, or - for stdin")
	source := flag.String("source", "", "fallback source name for records without one")
	workers := flag.Int("workers", 0, "batch workers (0 = INGEST_BATCH_WORKERS)")
	timeout := flag.Duration("timeout", 10*time.Minute, "batch deadline")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if strings.TrimSpace(*file) == "" {
		logger.Fatalf("provide -file")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if *workers > 0 {
		cfg.Ingest.BatchWorkers = *workers
	}

	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	records, err := readRecords(*file, *source)
	if err != nil {
		logger.Fatalf("read records: %v", err)
	}
	if len(records) == 0 {
		logger.Fatalf("no records in %s", *file)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := c.Batch.Run(ctx, *source, records)
	if err != nil {
		logger.Fatalf("batch failed: %v", err)
	}

	fmt.Printf("run %s: total=%d inserted=%d updated=%d duplicates=%d rejected=%d\n",
		report.RunID, report.Total,
		report.Tally[posting.OutcomeInserted], report.Tally[posting.OutcomeUpdated],
		report.Tally[posting.OutcomeDuplicate], report.Tally[posting.OutcomeRejected],
	)
}

func readRecords(path, fallbackSource string) ([]posting.RawRecord, error) {
	var in *os.File
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var records []posting.RawRecord
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw posting.RawRecord
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if raw.Source == "" {
			raw.Source = fallbackSource
		}
		records = append(records, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
