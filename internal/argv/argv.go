// Package argv splits command-line-like strings into argument tokens.
//
// Tokens are separated by runs of whitespace, or by a literal separator
// string when one is configured. A token that begins and ends with the same
// quote character has those quotes removed; quoted text may contain the
// separator. No escape sequences are interpreted.
package argv

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultQuotes lists the quote characters honored when Options.Quotes is empty.
const DefaultQuotes = `"'`

// ErrUnmatchedQuote is matched by every *UnmatchedQuoteError.
var ErrUnmatchedQuote = errors.New("unmatched quote")

// UnmatchedQuoteError reports a quote that is never closed.
type UnmatchedQuoteError struct {
	Quote  rune
	Offset int    // byte offset of the opening quote
	Prefix string // input up to and including the opening quote
}

func (e *UnmatchedQuoteError) Error() string {
	return fmt.Sprintf("argv: unmatched quote %q at byte %d: %s", e.Quote, e.Offset, e.Prefix)
}

// Is makes errors.Is(err, ErrUnmatchedQuote) hold.
func (e *UnmatchedQuoteError) Is(target error) bool {
	return target == ErrUnmatchedQuote
}

// Options controls tokenization.
type Options struct {
	// Sep is a literal separator. Empty means any run of whitespace.
	Sep string
	// Quotes lists quote characters. Empty means DefaultQuotes.
	Quotes string
}

func (o Options) quotes() string {
	if o.Quotes == "" {
		return DefaultQuotes
	}
	return o.Quotes
}

// Split tokenizes s on whitespace with the default quote characters.
func Split(s string) ([]string, error) {
	return SplitWith(s, Options{})
}

// SplitWith tokenizes s according to opts. An input without any token yields
// a single empty token. On error no tokens are returned.
func SplitWith(s string, opts Options) ([]string, error) {
	sc := NewScanner(s, opts)
	var tokens []string
	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

type scanState int

const (
	stateNormal scanState = iota
	stateQuoted
)

// Scanner yields tokens one at a time.
type Scanner struct {
	input   string
	opts    Options
	quotes  string
	pos     int
	started bool
	emitted bool
	done    bool
	err     error
}

// NewScanner returns a Scanner over s.
func NewScanner(s string, opts Options) *Scanner {
	return &Scanner{
		input:  s,
		opts:   opts,
		quotes: opts.quotes(),
	}
}

// Err returns the first error met by Next.
func (s *Scanner) Err() error {
	return s.err
}

// Next returns the next token. It returns false once the input is exhausted
// or an error occurred; check Err afterwards.
func (s *Scanner) Next() (string, bool) {
	if s.done {
		return "", false
	}
	if !s.started {
		s.started = true
		if s.opts.Sep == "" {
			s.skipSeparators()
		}
	}
	if s.pos >= len(s.input) {
		s.done = true
		if !s.emitted {
			s.emitted = true
			return "", true
		}
		return "", false
	}

	tok, err := s.scanToken()
	if err != nil {
		s.err = err
		s.done = true
		return "", false
	}
	s.skipSeparators()
	if s.pos >= len(s.input) {
		s.done = true
	}
	s.emitted = true
	return tok, true
}

func (s *Scanner) scanToken() (string, error) {
	start := s.pos
	state := stateNormal
	var quote rune
	quoteAt := 0

	for s.pos < len(s.input) {
		r, size := utf8.DecodeRuneInString(s.input[s.pos:])
		switch state {
		case stateNormal:
			if s.atSeparator(r) {
				return unquote(s.input[start:s.pos], s.quotes), nil
			}
			if strings.ContainsRune(s.quotes, r) {
				state, quote, quoteAt = stateQuoted, r, s.pos
			}
		case stateQuoted:
			if r == quote {
				state = stateNormal
			}
		}
		s.pos += size
	}

	if state == stateQuoted {
		return "", &UnmatchedQuoteError{
			Quote:  quote,
			Offset: quoteAt,
			Prefix: s.input[:quoteAt+utf8.RuneLen(quote)],
		}
	}
	return unquote(s.input[start:], s.quotes), nil
}

func (s *Scanner) atSeparator(r rune) bool {
	if s.opts.Sep == "" {
		return unicode.IsSpace(r)
	}
	return strings.HasPrefix(s.input[s.pos:], s.opts.Sep)
}

func (s *Scanner) skipSeparators() {
	if s.opts.Sep != "" {
		for strings.HasPrefix(s.input[s.pos:], s.opts.Sep) {
			s.pos += len(s.opts.Sep)
		}
		return
	}
	for s.pos < len(s.input) {
		r, size := utf8.DecodeRuneInString(s.input[s.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		s.pos += size
	}
}

func unquote(tok, quotes string) string {
	if len(tok) < 2 {
		return tok
	}
	first, size := utf8.DecodeRuneInString(tok)
	last, _ := utf8.DecodeLastRuneInString(tok)
	if first != last || !strings.ContainsRune(quotes, first) || len(tok) < 2*size {
		return tok
	}
	return tok[size : len(tok)-size]
}
