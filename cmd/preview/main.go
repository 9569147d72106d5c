package main

// Render the first page of a PDF as the PNG preview the pipeline stores:
//   go run ./cmd/preview -in resume.pdf -out ./out/resume.png

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-review/internal/convert"
	"resume-review/internal/extract"
	"resume-review/internal/intake"
	"resume-review/internal/shared/config"
)

func main() {
	cfg := config.Load()

	inPath := flag.String("in", "", "path to the PDF to render")
	outPath := flag.String("out", "", "output PNG path (defaults next to the input)")
	scale := flag.Float64("scale", cfg.PreviewScale, "render scale")
	showText := flag.Bool("text", false, "print the extracted text as well")
	flag.Parse()

	if strings.TrimSpace(*inPath) == "" {
		exitErr("-in is required")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		exitErr(fmt.Sprintf("read input: %v", err))
	}
	if err := intake.Check(intake.File{
		Name: filepath.Base(*inPath),
		Size: int64(len(data)),
		Head: data,
	}); err != nil {
		exitErr(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res := convert.New(*scale).FirstPage(ctx, filepath.Base(*inPath), data)
	if res.Err != "" {
		exitErr(res.Err)
	}

	out := *outPath
	if out == "" {
		out = filepath.Join(filepath.Dir(*inPath), res.File.Name)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		exitErr(err.Error())
	}
	if err := os.WriteFile(out, res.File.Data, 0o644); err != nil {
		exitErr(fmt.Sprintf("write output: %v", err))
	}
	fmt.Printf("OK: wrote %s (%dx%d)\n", out, res.File.Width, res.File.Height)

	if *showText {
		text, err := extract.PDFText(ctx, data)
		if err != nil {
			exitErr(fmt.Sprintf("extract text: %v", err))
		}
		fmt.Println(text)
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
