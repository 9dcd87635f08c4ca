// Package jsonc reads JSON with comments (JSONC) such as config files.
package jsonc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StripComments removes // and /* */ comments from JSONC content.
// Comment-like sequences inside strings are kept, and newlines inside block
// comments are kept so offsets still map to the original line numbers.
func StripComments(data []byte) []byte {
	s := &scanner{src: data, out: bytes.NewBuffer(make([]byte, 0, len(data)))}
	s.run()
	return s.out.Bytes()
}

// Unmarshal strips comments and trailing commas, then decodes into v.
// Syntax errors report the line number in the original document.
func Unmarshal(data []byte, v any) error {
	clean := RemoveTrailingCommas(StripComments(data))
	if err := json.Unmarshal(clean, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("line %d: %w", lineAt(clean, syntaxErr.Offset), err)
		}
		return err
	}
	return nil
}

type mode int

const (
	modeCode mode = iota
	modeString
	modeLineComment
	modeBlockComment
)

type scanner struct {
	src  []byte
	out  *bytes.Buffer
	pos  int
	mode mode
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		switch s.mode {
		case modeString:
			s.inString()
		case modeLineComment:
			s.inLineComment()
		case modeBlockComment:
			s.inBlockComment()
		default:
			s.inCode()
		}
	}
}

func (s *scanner) inCode() {
	c := s.src[s.pos]

	if c == '"' {
		s.mode = modeString
		s.emit(1)
		return
	}

	if c == '/' && s.pos+1 < len(s.src) {
		switch s.src[s.pos+1] {
		case '/':
			s.mode = modeLineComment
			s.pos += 2
			return
		case '*':
			s.mode = modeBlockComment
			s.pos += 2
			return
		}
	}

	s.emit(1)
}

func (s *scanner) inString() {
	switch s.src[s.pos] {
	case '\\':
		if s.pos+1 < len(s.src) {
			s.emit(2)
			return
		}
	case '"':
		s.mode = modeCode
	}
	s.emit(1)
}

func (s *scanner) inLineComment() {
	if s.src[s.pos] == '\n' {
		s.mode = modeCode
		s.emit(1)
		return
	}
	s.pos++
}

func (s *scanner) inBlockComment() {
	c := s.src[s.pos]
	if c == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
		s.mode = modeCode
		s.pos += 2
		return
	}
	if c == '\n' {
		s.out.WriteByte('\n')
	}
	s.pos++
}

// emit copies n bytes from the input to the output.
func (s *scanner) emit(n int) {
	s.out.Write(s.src[s.pos : s.pos+n])
	s.pos += n
}

// RemoveTrailingCommas drops commas that directly precede a closing
// bracket or brace, ignoring whitespace. Input must be comment-free.
func RemoveTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			out = append(out, c)
			if c == '\\' && i+1 < len(data) {
				i++
				out = append(out, data[i])
			} else if c == '"' {
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
		}

		if c == ',' && closesNext(data[i+1:]) {
			continue
		}
		out = append(out, c)
	}

	return out
}

func closesNext(rest []byte) bool {
	for _, c := range rest {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte{'\n'}) + 1
}
