//go:build mage

// Package main contains Mage build targets for exercise-engine developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the local directories the CLI reads and writes.
var projectDirs = []string{
	".secrets",
	"data",
	"pages",
}

const sampleConfig = `provider: openai
vision_model: gpt-4o
text_model: gpt-4o
topics:
  - Space
  - Zoo
  - Football
concurrency: 2
store:
  data_dir: data
log:
  level: warn
`

// Init creates the local directories and a sample exercise-engine.yaml.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat("exercise-engine.yaml"); os.IsNotExist(err) {
		if err := os.WriteFile("exercise-engine.yaml", []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing exercise-engine.yaml: %w", err)
		}
		fmt.Println("   exercise-engine.yaml")
	}
	fmt.Println("Put your API key in .secrets/openai-api-key or .secrets/gemini-api-key.")
	return nil
}

const (
	binDir  = "bin"
	binName = "exercise-engine"
	cmdPkg  = "./cmd/exercise-engine"
)

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Build compiles the CLI binary into bin/. VERSION sets the reported version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	out := binPath()
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Pipeline runs the CLI stages against local files.
type Pipeline mg.Namespace

// Pages renders the pages of doc into pages/.
func (Pipeline) Pages(doc string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "pages", doc, "--out", "pages")
}

// Analyze extracts the exercises of doc.
func (Pipeline) Analyze(doc string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "analyze", doc)
}

// Transform rewrites the latest session into topic.
func (Pipeline) Transform(topic string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "transform", "--topic", topic)
}

// Stats prints Go production and test line counts.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// countGoLines counts non-blank lines in Go files under root, skipping
// hidden and underscore-prefixed directories.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}
