//go:build ignore

// Package main generates a synthetic text corpus for load testing wordindex.
// Usage: go run scripts/generate-test-corpus.go -files 1000 -lines 500 -output testdata/bench
//
// Files are spread over a few subdirectories so both flat and --recursive
// loads can be exercised. Word frequencies are skewed so that a small set of
// words is shared by most files, as in natural text.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 1000, "Number of files to generate")
	numLines  = flag.Int("lines", 500, "Lines per file")
	lineWords = flag.Int("words", 12, "Maximum words per line")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// common words appear in almost every file; rare words are made up per file.
var common = []string{
	"the", "a", "an", "is", "and", "of", "to", "in", "that", "it",
	"computer", "science", "machine", "network", "data", "system", "file",
	"word", "index", "count", "batch", "search", "query", "result",
}

var punctuation = []string{" ", " ", " ", ", ", ". ", "; ", " - ", "! "}

var subdirs = []string{"news", "books", "notes", "mail"}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	for _, dir := range subdirs {
		if err := os.MkdirAll(filepath.Join(*outputDir, dir), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generating %d files in %s...\n", *numFiles, *outputDir)

	generated := 0
	for i := 0; i < *numFiles; i++ {
		dir := subdirs[i%len(subdirs)]
		path := filepath.Join(*outputDir, dir, fmt.Sprintf("doc_%05d.txt", i))
		if err := generateFile(rng, path, i); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", path, err)
			continue
		}
		generated++
	}

	fmt.Printf("Generated %d files successfully.\n", generated)
}

func generateFile(rng *rand.Rand, path string, index int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for l := 0; l < *numLines; l++ {
		n := 1 + rng.Intn(*lineWords)
		var sb strings.Builder
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(punctuation[rng.Intn(len(punctuation))])
			}
			sb.WriteString(randomWord(rng, index))
		}
		sb.WriteByte('\n')
		if _, err := w.WriteString(sb.String()); err != nil {
			return err
		}
	}
	return w.Flush()
}

// randomWord picks a common word 80% of the time, mixing case so the
// lower-casing path is exercised, and otherwise a per-file rare word.
func randomWord(rng *rand.Rand, index int) string {
	if rng.Intn(10) < 8 {
		w := common[rng.Intn(len(common))]
		if rng.Intn(5) == 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		return w
	}
	return fmt.Sprintf("term%d_%d", index%97, rng.Intn(50))
}
