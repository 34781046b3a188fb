package domain

import "strings"

// Side tells whether a document belongs to the source-language or the
// target-language collection.
type Side string

const (
	SideSource Side = "src"
	SideTarget Side = "trg"
)

// MaxSentenceBytes caps the portion of a sentence used for identity hashing
// and weighting. Longer sentences are truncated, not rejected.
const MaxSentenceBytes = 10000

// Document is one entry of an alignment run: an identifier, an ordered
// sequence of sentence embeddings and, when the document text is available,
// the raw sentence lines. Embeddings are mutated in place during
// preprocessing and read-only afterwards.
type Document struct {
	// Path is the filesystem path of the document, or empty when only URLs
	// were provided in the manifest.
	Path string
	// URL is the document URL, or empty when only paths were provided.
	URL string
	// Index is the 0-based position of the document within its side.
	Index int
	Side  Side

	// Embeddings holds one vector per sentence before merging, or a single
	// document-level vector (the three thirds of max-split-3 count as one)
	// after merging.
	Embeddings []Vector
	// Lines holds the raw sentence text, one entry per sentence, when the
	// document body was readable. Empty otherwise.
	Lines []string
}

// ID returns the preferred identifier of the document: path when present,
// URL otherwise.
func (d *Document) ID() string {
	if d.Path != "" {
		return d.Path
	}
	return d.URL
}

// SentenceCount returns the number of sentence embeddings currently held.
func (d *Document) SentenceCount() int {
	return len(d.Embeddings)
}

// SentenceKey returns the identity key of a sentence line: trimmed and
// capped at MaxSentenceBytes. Two lines with equal keys are the same
// sentence for weighting purposes.
func SentenceKey(line string) string {
	line = strings.TrimSpace(line)
	if len(line) > MaxSentenceBytes {
		line = line[:MaxSentenceBytes]
	}
	return line
}
