package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqids/sqids-go"
)

const (
	defaultNameAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	defaultNameMinLength = 6
	defaultNamePrefix    = "field_"
)

// IDGenerator returns a fresh opaque field identifier on every call.
type IDGenerator func() string

// UUIDGenerator produces random v4 UUIDs.
func UUIDGenerator() IDGenerator {
	return uuid.NewString
}

// NameGenerator produces default machine names for new fields. The store
// still checks the result against existing names and retries on collision.
type NameGenerator interface {
	Next() string
}

// SqidNames encodes the creation time and a sequence number into short names
// such as "field_k3v9q2".
type SqidNames struct {
	encoder *sqids.Sqids
	prefix  string
	now     func() time.Time
	seq     uint64
}

// SqidNamesOption configures SqidNames.
type SqidNamesOption func(*sqidConfig)

type sqidConfig struct {
	alphabet  string
	minLength uint8
	prefix    string
	now       func() time.Time
}

// WithNameAlphabet overrides the sqids alphabet.
func WithNameAlphabet(alphabet string) SqidNamesOption {
	return func(cfg *sqidConfig) {
		if alphabet != "" {
			cfg.alphabet = alphabet
		}
	}
}

// WithNameMinLength overrides the minimum encoded length.
func WithNameMinLength(n uint8) SqidNamesOption {
	return func(cfg *sqidConfig) {
		cfg.minLength = n
	}
}

// WithNamePrefix overrides the "field_" prefix.
func WithNamePrefix(prefix string) SqidNamesOption {
	return func(cfg *sqidConfig) {
		cfg.prefix = prefix
	}
}

// WithNameClock injects the clock used to seed names.
func WithNameClock(now func() time.Time) SqidNamesOption {
	return func(cfg *sqidConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// NewSqidNames builds a NameGenerator backed by sqids.
func NewSqidNames(options ...SqidNamesOption) (*SqidNames, error) {
	cfg := sqidConfig{
		alphabet:  defaultNameAlphabet,
		minLength: defaultNameMinLength,
		prefix:    defaultNamePrefix,
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	encoder, err := sqids.New(sqids.Options{
		Alphabet:  cfg.alphabet,
		MinLength: cfg.minLength,
	})
	if err != nil {
		return nil, fmt.Errorf("store: name generator: %w", err)
	}
	return &SqidNames{encoder: encoder, prefix: cfg.prefix, now: cfg.now}, nil
}

// Next implements NameGenerator.
func (g *SqidNames) Next() string {
	g.seq++
	encoded, err := g.encoder.Encode([]uint64{uint64(g.now().UnixMilli()), g.seq})
	if err != nil {
		return fmt.Sprintf("%s%d", g.prefix, g.seq)
	}
	return g.prefix + encoded
}

// SequenceNames yields prefix1, prefix2, ... and is mostly useful in tests and
// deterministic fixtures.
type SequenceNames struct {
	Prefix string
	seq    int
}

// Next implements NameGenerator.
func (g *SequenceNames) Next() string {
	g.seq++
	prefix := g.Prefix
	if prefix == "" {
		prefix = defaultNamePrefix
	}
	return fmt.Sprintf("%s%d", prefix, g.seq)
}
