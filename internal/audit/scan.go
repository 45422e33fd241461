// Package audit scans a directory tree for YouTube references, validates
// every unique URL, and optionally searches for replacements for the
// broken ones.
package audit

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// discoveryRE finds YouTube video URLs embedded in arbitrary text.
var discoveryRE = regexp.MustCompile(`https?://(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/|youtube\.com/shorts/|youtube\.com/live/)[\w-]+`)

// skipDirs are build, dependency, and VCS directories never worth scanning.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".next":        true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
}

// DefaultExtensions are the text file types scanned when none are given.
var DefaultExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".json", ".mjs",
	".md", ".txt", ".html", ".yaml", ".yml", ".go",
}

// Finding is one URL occurrence at a file location.
type Finding struct {
	URL  string `json:"url"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// Scan walks root and returns every YouTube URL occurrence in matching
// files, in traversal order. Unreadable files are skipped.
func Scan(root string, exts []string) ([]Finding, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var findings []Finding
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExtension(d.Name(), exts) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		for _, loc := range discoveryRE.FindAllStringIndex(string(content), -1) {
			findings = append(findings, Finding{
				URL:  string(content[loc[0]:loc[1]]),
				File: rel,
				Line: 1 + strings.Count(string(content[:loc[0]]), "\n"),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return findings, nil
}

// Group deduplicates findings by exact URL, keeping every location and
// the order of first appearance.
func Group(findings []Finding) []URLGroup {
	index := make(map[string]int)
	var groups []URLGroup
	for _, f := range findings {
		if i, ok := index[f.URL]; ok {
			groups[i].Locations = append(groups[i].Locations, f)
			continue
		}
		index[f.URL] = len(groups)
		groups = append(groups, URLGroup{URL: f.URL, Locations: []Finding{f}})
	}
	return groups
}

// URLGroup is one unique URL and everywhere it was found.
type URLGroup struct {
	URL       string    `json:"url"`
	Locations []Finding `json:"locations"`
}

// topicHint derives a search topic from the first location's path when no
// title is known: the last few path segments usually name the subject.
func (g URLGroup) topicHint() string {
	if len(g.Locations) == 0 {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(g.Locations[0].File), "/")
	if len(parts) > 3 {
		parts = parts[len(parts)-3:]
	}
	joined := strings.Join(parts, " ")
	for _, ext := range DefaultExtensions {
		joined = strings.TrimSuffix(joined, ext)
	}
	return joined
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
