// Package main is a small CLI over the toolkit: it submits a document
// for a style check, rewrite, or suggestions and prints the result.
//
// Usage:
//
//	MARKUPAI_API_KEY=... stylecheck -op rewrite -file doc.md
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	toolkit "github.com/markupai/toolkit-go"
	"github.com/markupai/toolkit-go/pkg/models"
)

func main() {
	if err := run(); err != nil {
		slog.Error("stylecheck failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var (
		op         = flag.String("op", "check", "operation: check, rewrite, or suggest")
		file       = flag.String("file", "", "path to the document to analyze")
		text       = flag.String("text", "", "inline content to analyze (alternative to -file)")
		styleGuide = flag.String("style-guide", "", "style guide ID to analyze against")
		dialect    = flag.String("dialect", "", "dialect, e.g. american_english")
		tone       = flag.String("tone", "", "tone, e.g. technical")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall deadline for the operation")
	)
	flag.Parse()

	content := *text
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *file, err)
		}
		content = string(data)
	}

	client, err := toolkit.New(toolkit.Config{
		PlatformURL: envString("MARKUPAI_PLATFORM_URL", "https://api.markup.ai"),
		APIKey:      os.Getenv("MARKUPAI_API_KEY"),
		Deadline:    *timeout,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	req := models.StyleAnalysisRequest{
		Content:      content,
		StyleGuideID: *styleGuide,
		Dialect:      *dialect,
		Tone:         *tone,
		DocumentName: *file,
	}

	var result any
	switch *op {
	case "check":
		result, err = client.Check(ctx, req)
	case "rewrite":
		result, err = client.Rewrite(ctx, req)
	case "suggest":
		result, err = client.Suggestions(ctx, req)
	default:
		return fmt.Errorf("unknown operation %q", *op)
	}
	if err != nil {
		return err
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(result)
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
