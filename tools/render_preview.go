package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"resume-builder/internal/fonts"
	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/internal/normalize"
	"resume-builder/internal/preview"
	"resume-builder/internal/style"
)

// Renders the live preview for a document JSON file without starting the
// server. The file uses the legacy single-blob layout.
func main() {
	in := flag.String("in", "resume.json", "document JSON file")
	out := flag.String("out", filepath.Join("resume-data", "generated", "preview.html"), "output HTML file")
	flag.Parse()

	b, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read document: %v\n", err)
		os.Exit(2)
	}
	doc := model.NewDocument()
	if err := json.Unmarshal(b, &doc); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal: %v\n", err)
		os.Exit(2)
	}
	if err := doc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid document: %v\n", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create out dir: %v\n", err)
		os.Exit(2)
	}
	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create out: %v\n", err)
		os.Exit(2)
	}
	defer f.Close()

	reg, err := fonts.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fonts: %v\n", err)
		os.Exit(2)
	}
	r := preview.NewRenderer(style.Canonical(), layout.A4(), reg)
	if err := r.Render(f, normalize.Normalize(doc)); err != nil {
		fmt.Fprintf(os.Stderr, "render preview: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("wrote %s\n", *out)
}
