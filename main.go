package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/bank-notification-parser/internal/api"
	"github.com/insightdelivered/bank-notification-parser/internal/config"
	"github.com/insightdelivered/bank-notification-parser/internal/gate"
	"github.com/insightdelivered/bank-notification-parser/internal/logger"
	"github.com/insightdelivered/bank-notification-parser/internal/models"
	"github.com/insightdelivered/bank-notification-parser/internal/parser"
	"github.com/insightdelivered/bank-notification-parser/internal/writer"
)

func main() {
	// CLI flags
	configFlag := flag.String("config", "", "Path to a YAML config file (optional)")
	serveFlag := flag.Bool("serve", false, "Run the HTTP adapter instead of batch mode")
	formatFlag := flag.String("format", "csv", "Batch output format: csv or json")
	outputFlag := flag.String("output", "", "Output file path (defaults to stdout)")
	headerFlag := flag.Bool("header", true, "Include the engine metadata row in CSV output")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `BCP Notification Email Parser
by Insight Delivered (QEA AutoLens)

Turns BCP transaction notification emails into normalized transactions.

Usage:
  bank-notification-parser [flags] <emails.json> [more.json ...]
  bank-notification-parser --serve [--config=config.yaml]

Each input file holds one email object or an array of them:
  {"from": "...", "subject": "...", "html": "...", "text": "...", "receivedAt": "..."}

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Parse a mailbox export to CSV
  bank-notification-parser inbox.json

  # JSON lines, one result per email
  bank-notification-parser --format=json --output=results.jsonl inbox.json

  # Serve POST /api/parse and /api/precheck
  MIN_CONFIDENCE=0.8 bank-notification-parser --serve
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Println(models.EngineVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatalf("Config error: %v\n", err)
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fatalf("Config error: %v\n", err)
	}
	engine := parser.NewEngine(parser.WithLogger(log))

	if *serveFlag {
		if err := serve(engine, cfg, log); err != nil {
			fatalf("Server error: %v\n", err)
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	var rows []writer.Row
	for _, inputPath := range flag.Args() {
		fileRows, err := processFile(engine, cfg.MinConfidence, inputPath, log)
		if err != nil {
			fatalf("Error processing %s: %v\n", inputPath, err)
		}
		rows = append(rows, fileRows...)
	}

	if err := writeRows(rows, *formatFlag, *outputFlag, *headerFlag); err != nil {
		fatalf("Output error: %v\n", err)
	}
}

func serve(engine *parser.Engine, cfg config.Config, log zerolog.Logger) error {
	app := api.NewServer(engine, cfg, log).App()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	log.Info().Str("addr", cfg.Server.Addr).Float64("min_confidence", cfg.MinConfidence).Msg("listening")
	return app.Listen(cfg.Server.Addr)
}

func processFile(engine *parser.Engine, minConfidence float64, inputPath string, log zerolog.Logger) ([]writer.Row, error) {
	emails, err := loadEmails(inputPath)
	if err != nil {
		return nil, err
	}

	rows := make([]writer.Row, 0, len(emails))
	for i, email := range emails {
		result := engine.Parse(email)
		accepted := gate.Accept(result, minConfidence) == nil
		rows = append(rows, writer.Row{File: inputPath, Index: i, Result: result, Accepted: accepted})
		log.Info().
			Str("file", inputPath).
			Int("index", i).
			Str("template", string(result.Template)).
			Float64("confidence", result.Confidence).
			Bool("accepted", accepted).
			Msg("email parsed")
	}
	return rows, nil
}

// loadEmails reads a file holding one Email object or an array of them.
func loadEmails(path string) ([]models.Email, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("input %s is empty", path)
	}
	if trimmed[0] == '[' {
		var emails []models.Email
		if err := json.Unmarshal(trimmed, &emails); err != nil {
			return nil, fmt.Errorf("decode email array: %w", err)
		}
		return emails, nil
	}
	var email models.Email
	if err := json.Unmarshal(trimmed, &email); err != nil {
		return nil, fmt.Errorf("decode email: %w", err)
	}
	return []models.Email{email}, nil
}

func writeRows(rows []writer.Row, format, outputPath string, includeHeader bool) error {
	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	switch strings.ToLower(format) {
	case "csv":
		return (&writer.CSVWriter{IncludeHeader: includeHeader}).Write(out, rows)
	case "json":
		return (&writer.JSONWriter{}).Write(out, rows)
	default:
		return fmt.Errorf("unknown format %q. Supported: csv, json", format)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
