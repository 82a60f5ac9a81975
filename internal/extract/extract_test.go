package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DictatorXP/ExamWeb/internal/model"
)

func TestQuestionsBasicTwoQuestions(t *testing.T) {
	text := "1. Q1\na. X\nb. Y\n2. Q2\na. Z\nb. W"

	qs := Questions(text)

	require.Len(t, qs, 2)
	assert.Equal(t, 1, qs[0].ID)
	assert.Equal(t, "1. Q1", qs[0].Text)
	assert.Equal(t, []model.Option{{ID: "a", Text: "X"}, {ID: "b", Text: "Y"}}, qs[0].Options)
	assert.Equal(t, 2, qs[1].ID)
	assert.Equal(t, []model.Option{{ID: "a", Text: "Z"}, {ID: "b", Text: "W"}}, qs[1].Options)
}

func TestQuestionsDeterministic(t *testing.T) {
	text := "1) First?\nb) Beta\na) Alpha\nnoise line\n2) Second?\na) One\nb) Two\nc) Three"

	first := Questions(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Questions(text))
	}
}

func TestQuestionsInsufficientOptionsDropped(t *testing.T) {
	text := "1. Only one option\na. Lonely\n2. Valid\na. X\nb. Y"

	qs := Questions(text)

	require.Len(t, qs, 1)
	// Surviving questions are renumbered densely from 1.
	assert.Equal(t, 1, qs[0].ID)
	assert.Equal(t, "2. Valid", qs[0].Text)
}

func TestQuestionsOptionsSortedByLetter(t *testing.T) {
	text := "1. Scrambled\nc. Third\na. First\nb. Second"

	qs := Questions(text)

	require.Len(t, qs, 1)
	require.Len(t, qs[0].Options, 3)
	assert.Equal(t, "a", qs[0].Options[0].ID)
	assert.Equal(t, "b", qs[0].Options[1].ID)
	assert.Equal(t, "c", qs[0].Options[2].ID)
}

func TestQuestionsDuplicateLettersKept(t *testing.T) {
	text := "1. Dup\na. First\na. Again\nb. Second"

	qs := Questions(text)

	require.Len(t, qs, 1)
	// Both "a" entries survive validation; the sort is stable.
	require.Len(t, qs[0].Options, 3)
	assert.Equal(t, "First", qs[0].Options[0].Text)
	assert.Equal(t, "Again", qs[0].Options[1].Text)
}

func TestQuestionsSentinelOnEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   \n\n  ", "just some prose\nwith no structure"} {
		qs := Questions(raw)
		require.Len(t, qs, 1)
		assert.Equal(t, 1, qs[0].ID)
		assert.Len(t, qs[0].Options, 2)
	}
}

func TestQuestionsNoiseLineWithLookaheadRestartsQuestion(t *testing.T) {
	// "Unnumbered question" is noise, but the next line opens with "a)",
	// so the built question commits and the noise line becomes a new one.
	text := "1. Numbered\na. X\nb. Y\nUnnumbered question\na) P\nb) Q"

	qs := Questions(text)

	require.Len(t, qs, 2)
	assert.Equal(t, "1. Numbered", qs[0].Text)
	assert.Equal(t, "Unnumbered question", qs[1].Text)
	assert.Equal(t, "P", qs[1].Options[0].Text)
}

func TestQuestionsNoiseLineWithoutLookaheadDiscarded(t *testing.T) {
	// Multi-line question text is not supported: the continuation line
	// vanishes and the following options attach to the first line.
	text := "1. Question text that\ncontinues on a second line\na. X\nb. Y"

	qs := Questions(text)

	require.Len(t, qs, 1)
	assert.Equal(t, "1. Question text that", qs[0].Text)
	require.Len(t, qs[0].Options, 2)
}

func TestQuestionsOptionLikeLineHoldingQuestionNumber(t *testing.T) {
	// "a. 3. something" is a question start after the prefix, so it is not
	// an option.
	text := "1. Q\na. 3. nested number\nb. Real"

	qs := Questions(text)

	// Only one real option accumulated, so the question is dropped and the
	// sentinel takes its place.
	require.Len(t, qs, 1)
	assert.Contains(t, qs[0].Text, "No valid questions")
}

func TestQuestionsNumberBounds(t *testing.T) {
	assert.True(t, isQuestionStart("1. text"))
	assert.True(t, isQuestionStart("99) text"))
	assert.True(t, isQuestionStart("7)"))
	assert.False(t, isQuestionStart("100. text"))
	assert.False(t, isQuestionStart("0. text"))
	assert.False(t, isQuestionStart("01. text"))
	assert.False(t, isQuestionStart("1x text"))
	assert.False(t, isQuestionStart("text 1."))
}

func TestQuestionsWindowsLineEndings(t *testing.T) {
	text := "1. Q\r\na. X\r\nb. Y\r\n"

	qs := Questions(text)

	require.Len(t, qs, 1)
	assert.Len(t, qs[0].Options, 2)
}

func TestQuestionsUppercaseOptionLetters(t *testing.T) {
	text := "1. Q\nA. X\nB) Y"

	qs := Questions(text)

	require.Len(t, qs, 1)
	assert.Equal(t, "a", qs[0].Options[0].ID)
	assert.Equal(t, "b", qs[0].Options[1].ID)
}
