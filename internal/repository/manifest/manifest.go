// Package manifest reads tab-separated alignment manifests. Each line names
// one document: path, URL and side, with "-" standing in for an absent path
// or URL.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// Placeholder marks an absent path or URL column.
const Placeholder = "-"

// MaxEntries bounds a single manifest. Collections beyond this should be
// split across runs.
const MaxEntries = 1_000_000

// Entry is one manifest line.
type Entry struct {
	Path string
	URL  string
	Side domain.Side
}

// ID returns the preferred identifier: path when present, URL otherwise.
func (e Entry) ID() string {
	if e.Path != "" {
		return e.Path
	}
	return e.URL
}

// Manifest holds the parsed entries split by side, in file order.
type Manifest struct {
	Source []Entry
	Target []Entry
}

// Load reads and parses a manifest file.
func Load(path string, logger *zap.Logger) (*Manifest, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return Parse(f, logger)
}

// Parse reads manifest lines from r. Malformed lines are logged and
// skipped, not fatal; a manifest yielding no usable entries on either side
// fails with ErrMissingInput.
func Parse(r io.Reader, logger *zap.Logger) (*Manifest, error) {
	m := &Manifest{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	total := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			logger.Warn("skipping malformed manifest line",
				zap.Int("line", lineNo), zap.Error(err))
			continue
		}

		total++
		if total > MaxEntries {
			return nil, fmt.Errorf("manifest exceeds %d entries", MaxEntries)
		}
		if entry.Side == domain.SideSource {
			m.Source = append(m.Source, entry)
		} else {
			m.Target = append(m.Target, entry)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	if len(m.Source) == 0 || len(m.Target) == 0 {
		return nil, fmt.Errorf("manifest needs documents on both sides (src=%d, trg=%d): %w",
			len(m.Source), len(m.Target), domain.ErrMissingInput)
	}

	logger.Info("manifest loaded",
		zap.Int("src_docs", len(m.Source)), zap.Int("trg_docs", len(m.Target)))
	return m, nil
}

func parseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return Entry{}, fmt.Errorf("expected 3 tab-separated fields, got %d", len(fields))
	}

	e := Entry{
		Path: strings.TrimSpace(fields[0]),
		URL:  strings.TrimSpace(fields[1]),
	}
	if e.Path == Placeholder {
		e.Path = ""
	}
	if e.URL == Placeholder {
		e.URL = ""
	}
	if e.Path == "" && e.URL == "" {
		return Entry{}, fmt.Errorf("neither path nor url present")
	}

	switch side := strings.TrimSpace(fields[2]); side {
	case string(domain.SideSource):
		e.Side = domain.SideSource
	case string(domain.SideTarget):
		e.Side = domain.SideTarget
	default:
		return Entry{}, fmt.Errorf("unknown side %q", side)
	}
	return e, nil
}
