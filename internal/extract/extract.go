// Package extract turns unstructured page text into ordered multiple-choice
// question records. The extraction is pure and deterministic: no I/O, no
// randomness, identical input always yields identical output.
package extract

import (
	"sort"
	"strings"

	"github.com/DictatorXP/ExamWeb/internal/model"
)

// optionLetters is the closed set of recognized option identifiers.
const optionLetters = "abcdefg"

// Sentinel question returned when nothing valid could be extracted, so
// downstream consumers can always assume a non-empty question list.
const sentinelText = "No valid questions could be extracted from the document. Please upload a different file."

// lineKind classifies a single non-empty line of source text.
type lineKind int

const (
	kindNoise lineKind = iota // continuation text, headers, page junk
	kindQuestionStart
	kindOption
)

// scanState is the explicit state of the single-pass scanner.
type scanState int

const (
	stateIdle           scanState = iota // no question in progress
	stateAwaitingOption                  // question line seen, no options yet
	stateBuilding                        // question + at least one option
)

// Questions extracts the ordered question list from raw page text.
// It never fails: when no question survives validation it returns a single
// sentinel question with two placeholder options.
//
// A question's text is always exactly one source line; multi-line question
// text is not supported. A noise line only ever becomes question text when
// the very next line opens with option "a" or "b", which commits the
// question built so far and restarts from the noise line.
func Questions(raw string) []model.Question {
	lines := splitLines(raw)

	var (
		committed []model.Question
		state     = stateIdle
		current   string
		options   []model.Option
		nextID    = 1
	)

	commit := func() {
		committed = append(committed, model.Question{
			ID:      nextID,
			Text:    current,
			Options: options,
		})
		nextID++
	}
	begin := func(line string) {
		current = line
		options = nil
		state = stateAwaitingOption
	}

	for i, line := range lines {
		switch classify(line) {
		case kindQuestionStart:
			if state == stateBuilding {
				commit()
			}
			// An option-less question in progress is silently dropped.
			begin(line)

		case kindOption:
			if state == stateIdle {
				break // stray option before any question
			}
			letter, text := splitOption(line)
			// Duplicate letters across malformed input are kept as
			// separate entries; the validation sort does not drop them.
			options = append(options, model.Option{ID: letter, Text: text})
			state = stateBuilding

		case kindNoise:
			// A question's text is always exactly one source line. A noise
			// line restarts the question only when the next line opens a
			// fresh option list; everything else is discarded.
			if state == stateBuilding && nextLineOpensOptions(lines, i) {
				commit()
				begin(line)
			}
		}
	}

	if state == stateBuilding {
		commit()
	}

	return validate(committed)
}

// splitLines normalizes line endings and drops empty or whitespace-only
// lines, preserving order.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// classify decides what a single line is. Classification is greedy: a line
// that looks like a question start is never treated as an option.
func classify(line string) lineKind {
	if isQuestionStart(line) {
		return kindQuestionStart
	}
	if isOption(line) {
		return kindOption
	}
	return kindNoise
}

// isQuestionStart reports whether the line begins with an integer in [1,99]
// immediately followed by '.' or ')'.
func isQuestionStart(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i > 2 {
		return false
	}
	if line[0] == '0' { // "01." is not a question number
		return false
	}
	if i >= len(line) {
		return false
	}
	return line[i] == '.' || line[i] == ')'
}

// isOption reports whether the line begins, case-insensitively, with a
// letter in {a..g} followed by '.' or ')', and carries option text that is
// not itself the start of a new question.
func isOption(line string) bool {
	if len(line) < 2 {
		return false
	}
	letter := lower(line[0])
	if !strings.ContainsRune(optionLetters, rune(letter)) {
		return false
	}
	if line[1] != '.' && line[1] != ')' {
		return false
	}
	text := strings.TrimSpace(line[2:])
	return text != "" && !isQuestionStart(text)
}

// splitOption returns the lowercase option letter and the trimmed text
// after the 2-character prefix. Callers must have checked isOption first.
func splitOption(line string) (string, string) {
	return string(lower(line[0])), strings.TrimSpace(line[2:])
}

// nextLineOpensOptions reports whether the line after index i starts with
// option letter 'a' or 'b'. Only the first two letters count: a stray "c)"
// mid-paragraph must not restart a question.
func nextLineOpensOptions(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	next := lines[i+1]
	if len(next) < 2 {
		return false
	}
	letter := lower(next[0])
	if letter != 'a' && letter != 'b' {
		return false
	}
	return next[1] == '.' || next[1] == ')'
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// validate drops questions with fewer than 2 options, sorts surviving
// options by letter ascending, and renumbers questions densely from 1
// preserving relative order.
func validate(questions []model.Question) []model.Question {
	var valid []model.Question
	for _, q := range questions {
		if len(q.Options) < 2 {
			continue
		}
		sort.SliceStable(q.Options, func(i, j int) bool {
			return q.Options[i].ID < q.Options[j].ID
		})
		q.ID = len(valid) + 1
		valid = append(valid, q)
	}

	if len(valid) == 0 {
		valid = []model.Question{{
			ID:   1,
			Text: sentinelText,
			Options: []model.Option{
				{ID: "a", Text: "Option A"},
				{ID: "b", Text: "Option B"},
			},
		}}
	}
	return valid
}
