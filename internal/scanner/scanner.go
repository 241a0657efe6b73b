package scanner

import (
	"fmt"
	"unicode/utf8"

	"github.com/frederic-klein/rsbundle/internal/module"
)

// ScanError reports malformed source the scanner cannot get past, such as an
// unterminated literal or block comment at end of input.
type ScanError struct {
	Reason string
	Offset int // byte offset of the construct that never terminated
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error at byte %d: %s", e.Offset, e.Reason)
}

// Scanner finds top-level module declarations in a buffer of Rust source.
// It is not a full parser: everything outside module declarations is opaque
// text, but comments, string/char literals, and brace nesting are tracked so
// a declaration-looking token inside them is never misread as a declaration.
// Each buffer gets a fresh Scanner; no state is shared across files.
type Scanner struct {
	src       string
	pos       int
	depth     int  // brace depth; declarations are only matched at depth 0
	stmtStart bool // at the start of the buffer or just past `;`, `{` or `}`
	prevIdent bool // previous byte belonged to an identifier
}

// New returns a scanner positioned at the start of src.
func New(src string) *Scanner {
	return &Scanner{src: src, stmtStart: true}
}

// Next returns the next top-level declaration, or nil when the buffer is
// exhausted. Inline modules (`mod name { ... }`) are returned with their body
// span recorded and are not descended into; the caller re-scans the body as
// its own buffer if it wants the declarations inside.
func (s *Scanner) Next() (*module.Declaration, error) {
	for s.pos < len(s.src) {
		if isSpace(s.src[s.pos]) {
			s.pos++
			s.prevIdent = false
			continue
		}
		if s.stmtStart && s.depth == 0 {
			decl, ok, err := s.matchDecl()
			if err != nil {
				return nil, err
			}
			if ok {
				return decl, nil
			}
		}
		if err := s.step(); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// ScanAll collects every top-level declaration in src in source order.
func ScanAll(src string) ([]module.Declaration, error) {
	s := New(src)
	var decls []module.Declaration
	for {
		d, err := s.Next()
		if err != nil {
			return nil, err
		}
		if d == nil {
			return decls, nil
		}
		decls = append(decls, *d)
	}
}

// matchDecl attempts to read `#[...]* pub(...)? mod ident (; | { ... })`
// starting at the current position. A failed match consumes nothing.
func (s *Scanner) matchDecl() (*module.Declaration, bool, error) {
	j := s.pos
	for j < len(s.src) && s.src[j] == '#' {
		end, ok := skipAttribute(s.src, j)
		if !ok {
			return nil, false, nil
		}
		j = skipTrivia(s.src, end)
	}
	if hasKeyword(s.src, j, "pub") {
		j = skipTrivia(s.src, j+3)
		if j < len(s.src) && s.src[j] == '(' {
			end, ok := skipParens(s.src, j)
			if !ok {
				return nil, false, nil
			}
			j = skipTrivia(s.src, end)
		}
	}
	if !hasKeyword(s.src, j, "mod") {
		return nil, false, nil
	}
	prefixEnd := j
	j = skipSpace(s.src, j+3)
	nameStart := j
	for j < len(s.src) && isIdentByte(s.src[j]) {
		j++
	}
	if j == nameStart {
		return nil, false, nil
	}
	name := s.src[nameStart:j]
	j = skipSpace(s.src, j)
	if j >= len(s.src) {
		return nil, false, nil
	}

	switch s.src[j] {
	case ';':
		decl := &module.Declaration{
			Name:   name,
			Prefix: s.src[s.pos:prefixEnd],
			Start:  s.pos,
			End:    j + 1,
		}
		s.pos = j + 1
		s.stmtStart = true
		return decl, true, nil
	case '{':
		bodyEnd, err := s.matchingBrace(j)
		if err != nil {
			return nil, false, err
		}
		decl := &module.Declaration{
			Name:      name,
			Prefix:    s.src[s.pos:prefixEnd],
			Start:     s.pos,
			End:       bodyEnd + 1,
			Inline:    true,
			BodyStart: j + 1,
			BodyEnd:   bodyEnd,
		}
		s.pos = bodyEnd + 1
		s.stmtStart = true
		return decl, true, nil
	}
	return nil, false, nil
}

// matchingBrace returns the offset of the brace closing the one at open,
// scanning through comments and literals with a fresh sub-state.
func (s *Scanner) matchingBrace(open int) (int, error) {
	sub := &Scanner{src: s.src, pos: open + 1, depth: 1, stmtStart: true}
	for sub.pos < len(sub.src) {
		if sub.src[sub.pos] == '}' && sub.depth == 1 {
			return sub.pos, nil
		}
		if err := sub.step(); err != nil {
			return 0, err
		}
	}
	return 0, &ScanError{Reason: "unterminated module body", Offset: open}
}

// step consumes one lexical element: a comment, a literal, or a single byte.
func (s *Scanner) step() error {
	c := s.src[s.pos]
	switch {
	case c == '/' && s.peek(1) == '/':
		for s.pos < len(s.src) && s.src[s.pos] != '\n' {
			s.pos++
		}
		s.prevIdent = false
	case c == '/' && s.peek(1) == '*':
		return s.blockComment()
	case c == '"':
		s.stmtStart = false
		s.prevIdent = false
		return s.stringLiteral(s.pos)
	case c == '\'':
		s.stmtStart = false
		s.prevIdent = false
		return s.charOrLifetime()
	case (c == 'r' || c == 'b') && !s.prevIdent:
		if consumed, err := s.literalPrefix(); consumed || err != nil {
			return err
		}
		s.stmtStart = false
		s.prevIdent = true
		s.pos++
	case c == '{':
		s.depth++
		s.pos++
		s.stmtStart = true
		s.prevIdent = false
	case c == '}':
		s.depth--
		s.pos++
		s.stmtStart = true
		s.prevIdent = false
	case c == ';':
		s.pos++
		s.stmtStart = true
		s.prevIdent = false
	case isSpace(c):
		s.pos++
		s.prevIdent = false
	default:
		s.stmtStart = false
		s.prevIdent = isIdentByte(c)
		s.pos++
	}
	return nil
}

// literalPrefix handles the raw string, byte string, raw byte string, and
// byte char literal forms (r"", r#""#, b"", and their br combinations).
// Reports whether a literal was consumed; a bare r or b identifier is left
// for the caller.
func (s *Scanner) literalPrefix() (bool, error) {
	start := s.pos
	j := s.pos
	raw := false
	if s.src[j] == 'b' {
		j++
		if j < len(s.src) && s.src[j] == '\'' {
			s.pos = j
			s.stmtStart = false
			s.prevIdent = false
			return true, s.charOrLifetime()
		}
		if j < len(s.src) && s.src[j] == 'r' {
			j++
			raw = true
		}
	} else {
		j++
		raw = true
	}
	if raw {
		hashes := 0
		for j < len(s.src) && s.src[j] == '#' {
			hashes++
			j++
		}
		if j < len(s.src) && s.src[j] == '"' {
			s.stmtStart = false
			s.prevIdent = false
			return true, s.rawStringLiteral(start, j, hashes)
		}
		return false, nil
	}
	if j < len(s.src) && s.src[j] == '"' {
		s.stmtStart = false
		s.prevIdent = false
		return true, s.stringLiteral(j)
	}
	return false, nil
}

// stringLiteral consumes a `"..."` literal whose opening quote is at open.
func (s *Scanner) stringLiteral(open int) error {
	i := open + 1
	for i < len(s.src) {
		switch s.src[i] {
		case '\\':
			i += 2
		case '"':
			s.pos = i + 1
			return nil
		default:
			i++
		}
	}
	return &ScanError{Reason: "unterminated string literal", Offset: open}
}

// rawStringLiteral consumes a raw string whose opening quote is at quote,
// closing only on a quote followed by exactly the opening hash count.
func (s *Scanner) rawStringLiteral(start, quote, hashes int) error {
	i := quote + 1
	for i < len(s.src) {
		if s.src[i] == '"' && countHashes(s.src, i+1) >= hashes {
			s.pos = i + 1 + hashes
			return nil
		}
		i++
	}
	return &ScanError{Reason: "unterminated raw string literal", Offset: start}
}

// charOrLifetime disambiguates a char literal from a lifetime tick. A quote
// followed by a backslash, or by a single rune and a closing quote, is a char
// literal; anything else ('a, 'static, loop labels) is left as plain text.
func (s *Scanner) charOrLifetime() error {
	open := s.pos
	i := open + 1
	if i >= len(s.src) {
		s.pos = i
		return nil
	}
	if s.src[i] == '\\' {
		i += 2 // skip the escaped char; \u{...} runs to the quote below
		for i < len(s.src) {
			if s.src[i] == '\'' {
				s.pos = i + 1
				return nil
			}
			i++
		}
		return &ScanError{Reason: "unterminated character literal", Offset: open}
	}
	_, size := utf8.DecodeRuneInString(s.src[i:])
	if i+size < len(s.src) && s.src[i+size] == '\'' && s.src[i] != '\'' {
		s.pos = i + size + 1
		return nil
	}
	s.pos = open + 1 // lifetime
	return nil
}

// blockComment consumes a nesting `/* ... */` comment.
func (s *Scanner) blockComment() error {
	open := s.pos
	depth := 0
	i := s.pos
	for i < len(s.src) {
		if s.src[i] == '/' && i+1 < len(s.src) && s.src[i+1] == '*' {
			depth++
			i += 2
			continue
		}
		if s.src[i] == '*' && i+1 < len(s.src) && s.src[i+1] == '/' {
			depth--
			i += 2
			if depth == 0 {
				s.pos = i
				s.prevIdent = false
				return nil
			}
			continue
		}
		i++
	}
	return &ScanError{Reason: "unterminated block comment", Offset: open}
}

func (s *Scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

// skipAttribute skips a `#[...]` or `#![...]` attribute starting at i,
// honoring nested brackets and string literals inside the attribute.
func skipAttribute(src string, i int) (int, bool) {
	j := i + 1
	if j < len(src) && src[j] == '!' {
		j++
	}
	if j >= len(src) || src[j] != '[' {
		return 0, false
	}
	depth := 0
	for j < len(src) {
		switch src[j] {
		case '[':
			depth++
			j++
		case ']':
			depth--
			j++
			if depth == 0 {
				return j, true
			}
		case '"':
			j++
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			j++
		default:
			j++
		}
	}
	return 0, false
}

// skipParens skips a `( ... )` group starting at i, e.g. in pub(crate).
func skipParens(src string, i int) (int, bool) {
	for j := i + 1; j < len(src); j++ {
		if src[j] == ')' {
			return j + 1, true
		}
	}
	return 0, false
}

// hasKeyword reports whether the keyword appears at i with a word boundary
// after it.
func hasKeyword(src string, i int, kw string) bool {
	if i+len(kw) > len(src) || src[i:i+len(kw)] != kw {
		return false
	}
	return i+len(kw) == len(src) || !isIdentByte(src[i+len(kw)])
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

// skipTrivia skips whitespace and comments, so attributes and the keywords
// they qualify may be separated by doc comments. An unterminated block
// comment leaves i in place; the main scan reports it.
func skipTrivia(src string, i int) int {
	for i < len(src) {
		if isSpace(src[i]) {
			i++
			continue
		}
		if src[i] == '/' && i+1 < len(src) && src[i+1] == '/' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		}
		if src[i] == '/' && i+1 < len(src) && src[i+1] == '*' {
			depth := 0
			j := i
			for j < len(src) {
				if src[j] == '/' && j+1 < len(src) && src[j+1] == '*' {
					depth++
					j += 2
					continue
				}
				if src[j] == '*' && j+1 < len(src) && src[j+1] == '/' {
					depth--
					j += 2
					if depth == 0 {
						break
					}
					continue
				}
				j++
			}
			if depth != 0 {
				return i
			}
			i = j
			continue
		}
		return i
	}
	return i
}

func countHashes(src string, i int) int {
	n := 0
	for i < len(src) && src[i] == '#' {
		n++
		i++
	}
	return n
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
