package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// idMode selects how documents are identified in output lines.
type idMode int

const (
	idPath idMode = iota
	idURL
	idIndex
)

func docID(d *domain.Document, mode idMode) string {
	switch mode {
	case idURL:
		if d.URL != "" {
			return d.URL
		}
	case idIndex:
		// 1-based, matching line numbers in the input manifests.
		return strconv.Itoa(d.Index + 1)
	}
	return d.ID()
}

// writeAlignments emits the header and one src/trg line per pair, in the
// order given (callers pass pairs already ranked by score).
func writeAlignments(w io.Writer, pairs []domain.AlignedPair, mode idMode, withScores bool) error {
	bw := bufio.NewWriter(w)

	header := "src\ttrg"
	if withScores {
		header += "\tscore"
	}
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return err
	}

	for _, p := range pairs {
		if withScores {
			_, err := fmt.Fprintf(bw, "%s\t%s\t%.6f\n", docID(p.Source, mode), docID(p.Target, mode), p.Score)
			if err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", docID(p.Source, mode), docID(p.Target, mode)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeAudits emits one line per aligned sentence pair: document ids, the
// sentence texts when available and the similarity.
func writeAudits(w io.Writer, audits []domain.PairAudit, mode idMode) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "src\ttrg\tsrc_sentence\ttrg_sentence\tscore"); err != nil {
		return err
	}
	for _, a := range audits {
		for _, m := range a.Matches {
			_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%.6f\n",
				docID(a.Source, mode), docID(a.Target, mode),
				sentenceText(a.Source, m.SourceRow), sentenceText(a.Target, m.TargetRow), m.Score)
			if err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func sentenceText(d *domain.Document, row int) string {
	if row >= 0 && row < len(d.Lines) {
		return d.Lines[row]
	}
	return strconv.Itoa(row + 1)
}

// openOutput returns stdout for "-" or empty, otherwise creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output %q: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
