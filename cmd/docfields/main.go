// Command docfields resolves the employee and company fields of a single
// document from the command line. A .json input is treated as an array of
// pre-extracted OCR blocks; any other supported extension goes through the
// format adapters.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gbarros/docfields/internal/block"
	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/extractor"
	"github.com/gbarros/docfields/internal/llm"
	"github.com/gbarros/docfields/internal/ner"
	"github.com/gbarros/docfields/internal/pipeline"
)

func main() {
	in := flag.String("in", "", "input document (.pdf/.docx/.html/.md/.csv/.txt) or a .json array of blocks")
	out := flag.String("out", "", "output file (default stdout)")
	debug := flag.Bool("debug", false, "include diagnostic fields in the output")
	quiet := flag.Bool("quiet", false, "suppress log output")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: docfields -in <file> [-out <file>] [-debug]")
		os.Exit(2)
	}

	logOut := os.Stderr
	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelError
	}
	log := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level}))

	cfg := config.Load()

	raw, err := loadBlocks(*in, cfg)
	if err != nil {
		log.Error("input failed", "file", *in, "error", err)
		os.Exit(1)
	}

	var recognizer ner.Recognizer
	if cfg.NERBaseURL != "" {
		recognizer = ner.NewClient(cfg.NERBaseURL, cfg.NERTimeout)
	}
	var completer llm.Completer
	if cfg.DelegationEnabled() {
		completer = llm.NewClient(cfg, log)
	}

	engine := pipeline.NewEngine(recognizer, completer, cfg, log)
	result := engine.Resolve(context.Background(), raw, *debug)

	enc, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Error("encode failed", "error", err)
		os.Exit(1)
	}
	enc = append(enc, '\n')

	if *out == "" {
		os.Stdout.Write(enc)
		return
	}
	if err := os.WriteFile(*out, enc, 0o644); err != nil {
		log.Error("write failed", "file", *out, "error", err)
		os.Exit(1)
	}
}

func loadBlocks(path string, cfg config.Config) ([]block.RawBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var raw []block.RawBlock
		if err := json.NewDecoder(f).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode blocks: %w", err)
		}
		return raw, nil
	}

	ext, err := extractor.ForFile(path, extractor.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
	if err != nil {
		return nil, err
	}
	return ext.Extract(f, path)
}
