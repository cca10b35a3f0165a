package interview

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spigell/hh-interviewer/internal/utils"
)

var (
	errNoQuestions = errors.New("no questions found in reply")
	errEmptyReply  = errors.New("empty reply")
)

// parseQuestions extracts a question list from generated text. It accepts a JSON
// array, a bracketed list of single- or double-quoted strings, or one question per
// line. The text is only ever scanned, never evaluated.
func parseQuestions(raw string) ([]string, error) {
	if open, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); open >= 0 && end > open {
		list := raw[open : end+1]

		var decoded []string
		if err := json.Unmarshal([]byte(list), &decoded); err == nil {
			if questions := cleanQuestions(decoded); len(questions) > 0 {
				return questions, nil
			}
		}

		if items, err := scanQuotedList(list); err == nil {
			if questions := cleanQuestions(items); len(questions) > 0 {
				return questions, nil
			}
		}
	}

	var lines []string
	for _, line := range utils.Lines(raw) {
		if strings.HasPrefix(line, "```") {
			continue
		}
		lines = append(lines, strings.Trim(line, "- "))
	}
	if questions := cleanQuestions(lines); len(questions) > 0 {
		return questions, nil
	}

	return nil, errNoQuestions
}

// scanQuotedList reads a literal such as ['a', "b's", 'c',].
func scanQuotedList(list string) ([]string, error) {
	s := strings.TrimSpace(list)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errors.New("list is not bracketed")
	}
	s = s[1 : len(s)-1]

	var items []string
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return items, nil
		}

		quote := s[0]
		if quote != '\'' && quote != '"' {
			return nil, errors.New("expected quoted string")
		}

		var b strings.Builder
		i := 1
		closed := false
		for ; i < len(s); i++ {
			c := s[i]
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(unescape(s[i]))
				continue
			}
			if c == quote {
				closed = true
				break
			}
			b.WriteByte(c)
		}
		if !closed {
			return nil, errors.New("unterminated string")
		}
		items = append(items, b.String())

		s = strings.TrimLeft(s[i+1:], " \t\r\n")
		switch {
		case s == "":
			return items, nil
		case s[0] == ',':
			s = s[1:]
		default:
			return nil, errors.New("expected comma between items")
		}
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return c
	}
}

func cleanQuestions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		q = strings.TrimSpace(q)
		if strings.Trim(q, "[]") == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}
