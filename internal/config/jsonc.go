package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// normalizeJSONC blanks comments and trailing commas so encoding/json accepts
// the document. Removed bytes become spaces and newlines are kept, so decoder
// offsets still point at the line and column the user wrote.
func normalizeJSONC(content string) (string, error) {
	out := []byte(content)
	comma := -1 // offset of a comma that is trailing if a closer follows

	for i := 0; i < len(out); i++ {
		ch := out[i]
		switch {
		case ch == '"':
			i = stringEnd(out, i)
			comma = -1
		case ch == '/' && i+1 < len(out) && out[i+1] == '/':
			end := strings.IndexByte(content[i:], '\n')
			if end < 0 {
				end = len(out) - i
			}
			blank(out[i : i+end])
			i += end - 1
		case ch == '/' && i+1 < len(out) && out[i+1] == '*':
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				line, col := offsetToLineCol(content, int64(i+1))
				return "", fmt.Errorf("line %d column %d: unterminated block comment", line, col)
			}
			blank(out[i : i+end+4])
			i += end + 3
		case ch == ',':
			comma = i
		case ch == '}' || ch == ']':
			if comma >= 0 {
				out[comma] = ' '
			}
			comma = -1
		case !isJSONWhitespace(ch):
			comma = -1
		}
	}
	return string(out), nil
}

// stringEnd returns the offset of the quote closing the string opened at
// start, or the last offset when it is unterminated.
func stringEnd(buf []byte, start int) int {
	for i := start + 1; i < len(buf); i++ {
		switch buf[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(buf) - 1
}

func blank(buf []byte) {
	for i, ch := range buf {
		if ch != '\n' && ch != '\r' {
			buf[i] = ' '
		}
	}
}

func isJSONWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra json.RawMessage
	switch err := decoder.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errors.New("multiple JSON values are not allowed")
	}
}

// wrapJSONDecodeError prefixes syntax and type errors with their position.
func wrapJSONDecodeError(content string, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}
	line, col := offsetToLineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

// offsetToLineCol maps a decoder offset, which points just past the offending
// byte, to a 1-based line and column.
func offsetToLineCol(content string, offset int64) (int, int) {
	end := min(int(offset), len(content))
	if end <= 0 {
		return 1, 1
	}
	prefix := content[:end-1]
	line := strings.Count(prefix, "\n") + 1
	col := len(prefix) - strings.LastIndexByte(prefix, '\n')
	return line, col
}
