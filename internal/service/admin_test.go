package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DictatorXP/ExamWeb/internal/catalog"
)

func TestImportExamText(t *testing.T) {
	f := newFixture(t)

	count, err := f.admin.ImportExamText(adminActor, "1. Q1\na. X\nb. Y\n2. Q2\na. Z\nb. W")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, f.catalog.QuestionCount())
}

func TestSetAnswerKeyValidations(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.SetAnswerKey(context.Background(), adminActor, "ab")
	assert.ErrorIs(t, err, catalog.ErrNoExamActive)

	_, err = f.admin.ImportExamText(adminActor, "1. Q1\na. X\nb. Y\n2. Q2\na. Z\nb. W")
	require.NoError(t, err)

	_, err = f.admin.SetAnswerKey(context.Background(), adminActor, "abc")
	assert.ErrorIs(t, err, catalog.ErrKeyLengthMismatch)

	_, err = f.admin.SetAnswerKey(context.Background(), adminActor, "az")
	assert.ErrorIs(t, err, catalog.ErrKeyInvalidSymbol)

	count, err := f.admin.SetAnswerKey(context.Background(), adminActor, "AB")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	// Input is lowercased before validation.
	assert.Equal(t, []string{"a", "b"}, f.catalog.AnswerKey())
}

func TestSetAnswerKeySurvivesNotifyFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.admin.ImportExamText(adminActor, "1. Q1\na. X\nb. Y")
	require.NoError(t, err)

	f.notifier.setFail(true)
	_, err = f.admin.SetAnswerKey(context.Background(), adminActor, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, f.catalog.AnswerKey())
}

func TestDeleteExamClearsResults(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)
	approve(t, f, "s1")

	_, err := f.controller.SubmitAnswers(context.Background(), "s1", map[string]string{"1": "a", "2": "b"})
	require.NoError(t, err)

	require.NoError(t, f.admin.DeleteExam(adminActor))

	assert.Nil(t, f.catalog.Exam())
	assert.Empty(t, f.catalog.AnswerKey())
	_, ok := f.controller.Result("s1")
	assert.False(t, ok)
}

func TestListAndClearResults(t *testing.T) {
	f := newFixture(t)
	f.loadExam(t)
	approve(t, f, "s2")
	approve(t, f, "s1")

	for _, id := range []string{"s1", "s2"} {
		_, err := f.controller.SubmitAnswers(context.Background(), id, map[string]string{"1": "a", "2": "b"})
		require.NoError(t, err)
	}

	results, err := f.admin.ListResults(adminActor)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Ordered by student ID.
	assert.Equal(t, "s1", results[0].Student.StudentID)
	assert.Equal(t, "s2", results[1].Student.StudentID)
	assert.Equal(t, 2, results[0].Result.Correct)
	assert.Equal(t, "Ada", results[0].Student.Name)

	require.NoError(t, f.admin.ClearResults(adminActor))
	results, err = f.admin.ListResults(adminActor)
	require.NoError(t, err)
	assert.Empty(t, results)
}
