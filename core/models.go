package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// FAQ records use content-based IDs derived from their normalized question.
type ID uint64

// NormalizeText returns the canonical comparison form of text: lower-cased
// with leading and trailing whitespace removed. Internal whitespace,
// punctuation, and diacritics are preserved.
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// IDFromQuestion generates a deterministic ID from question text using
// BLAKE2b hashing. The question is normalized first, so two questions that
// differ only in case or outer whitespace map to the same ID. This is what
// enforces case-insensitive question uniqueness in storage.
func IDFromQuestion(question string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(NormalizeText(question)))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FaqRecord represents one retrievable knowledge item: a stored question with
// its canned answer and optional metadata. Records are immutable once loaded
// into a snapshot; the matching engine only reads them.
type FaqRecord struct {
	Id         ID
	Question   string
	Answer     string
	Category   string
	Metadata   map[string]string // Optional extra data rendered alongside the answer
	Vector     []float32         // Cached question embedding (populated by the ingest pipeline)
	InsertedAt time.Time         // When the record was inserted into the database
	UpdatedAt  time.Time         // When the record was last updated
}

// MatchMethod identifies which matching pass produced a candidate.
type MatchMethod int

const (
	// MethodLexicalPartial is the partial-ratio fuzzy pass.
	MethodLexicalPartial MatchMethod = iota + 1
	// MethodLexicalToken is the token-sort fuzzy pass.
	MethodLexicalToken
	// MethodSemantic is the embedding cosine-similarity pass.
	MethodSemantic
)

// String returns a short stable name for the method, used in logs and
// API responses.
func (m MatchMethod) String() string {
	switch m {
	case MethodLexicalPartial:
		return "lexical_partial"
	case MethodLexicalToken:
		return "lexical_token"
	case MethodSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// MatchCandidate is a scored record proposed by a single matching strategy.
// Lexical scores are on a 0-100 scale; semantic scores are cosine
// similarities on a 0-1 scale.
type MatchCandidate struct {
	Record *FaqRecord
	Score  float32
	Method MatchMethod
}

// MatchVerdict is the engine's final decision for one query.
// When Matched is false the remaining fields are zero.
type MatchVerdict struct {
	Matched bool
	Record  *FaqRecord
	Score   float32
	Method  MatchMethod
}
