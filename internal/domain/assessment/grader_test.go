package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildQuizExercise возвращает упражнение из двух объективных вопросов
// (вес 5 и 10) и одного вопроса со свободным текстом.
func buildQuizExercise() *Exercise {
	return &Exercise{
		ID:        "ex-1",
		Title:     "Quiz",
		Published: true,
		Questions: []Question{
			{
				ID:          "q1",
				Type:        QuestionMultipleChoice,
				ScoreWeight: 5,
				Options: []Option{
					{ID: "q1-a", QuestionID: "q1", IsCorrect: true},
					{ID: "q1-b", QuestionID: "q1", IsCorrect: false},
				},
			},
			{
				ID:          "q2",
				Type:        QuestionTrueFalse,
				ScoreWeight: 10,
				Options: []Option{
					{ID: "q2-true", QuestionID: "q2", IsCorrect: false},
					{ID: "q2-false", QuestionID: "q2", IsCorrect: true},
				},
			},
			{
				ID:          "q3",
				Type:        QuestionFreeText,
				ScoreWeight: 20,
			},
		},
	}
}

func TestExercise_MaxScore_ObjectiveOnly(t *testing.T) {
	// Свободный текст в максимальный балл не входит.
	assert.Equal(t, 15, buildQuizExercise().MaxScore())
}

func TestGradeAnswer_Correct(t *testing.T) {
	exercise := buildQuizExercise()
	answer := &Answer{QuestionID: "q1", SelectedOptionID: "q1-a"}

	GradeAnswer(exercise.FindQuestion("q1"), answer)

	assert.NotNil(t, answer.ScoreAwarded)
	assert.Equal(t, 5, *answer.ScoreAwarded)
	assert.NotNil(t, answer.IsCorrect)
	assert.True(t, *answer.IsCorrect)
}

func TestGradeAnswer_Incorrect(t *testing.T) {
	exercise := buildQuizExercise()
	answer := &Answer{QuestionID: "q1", SelectedOptionID: "q1-b"}

	GradeAnswer(exercise.FindQuestion("q1"), answer)

	assert.Equal(t, 0, *answer.ScoreAwarded)
	assert.False(t, *answer.IsCorrect)
}

func TestGradeAnswer_ManualQuestionStaysUngraded(t *testing.T) {
	exercise := buildQuizExercise()
	answer := &Answer{QuestionID: "q3", TextResponse: "my essay"}

	GradeAnswer(exercise.FindQuestion("q3"), answer)

	assert.Nil(t, answer.ScoreAwarded)
	assert.Nil(t, answer.IsCorrect)
}

func TestGradeAttempt(t *testing.T) {
	exercise := buildQuizExercise()
	attempt := &Attempt{
		ID:     "at-1",
		UserID: 7,
		Status: AttemptInProgress,
		Answers: []Answer{
			{QuestionID: "q1", SelectedOptionID: "q1-a"},   // верно, +5
			{QuestionID: "q2", SelectedOptionID: "q2-true"}, // неверно, 0
			{QuestionID: "q3", TextResponse: "essay"},       // ручная проверка
		},
	}

	result := GradeAttempt(exercise, attempt)

	assert.Equal(t, 5, result.TotalScore)
	assert.Equal(t, 15, result.MaxScore)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 2, result.GradedCount)
	assert.Equal(t, 1, result.PendingCount)
}

func TestGradeAttempt_MutatesAnswersInPlace(t *testing.T) {
	exercise := buildQuizExercise()
	attempt := &Attempt{
		Status:  AttemptInProgress,
		Answers: []Answer{{QuestionID: "q2", SelectedOptionID: "q2-false"}},
	}

	GradeAttempt(exercise, attempt)

	assert.NotNil(t, attempt.Answers[0].ScoreAwarded)
	assert.Equal(t, 10, *attempt.Answers[0].ScoreAwarded)
}

func TestGradeAttempt_UnansweredQuestionsScoreZero(t *testing.T) {
	exercise := buildQuizExercise()
	attempt := &Attempt{Status: AttemptInProgress, Answers: []Answer{}}

	result := GradeAttempt(exercise, attempt)

	assert.Equal(t, 0, result.TotalScore)
	assert.Equal(t, 15, result.MaxScore)
	assert.Equal(t, 0, result.GradedCount)
}

func TestGradeAttempt_UnknownQuestionSkipped(t *testing.T) {
	exercise := buildQuizExercise()
	attempt := &Attempt{
		Status:  AttemptInProgress,
		Answers: []Answer{{QuestionID: "not-in-exercise", SelectedOptionID: "x"}},
	}

	result := GradeAttempt(exercise, attempt)
	assert.Equal(t, 0, result.GradedCount)
	assert.Equal(t, 0, result.PendingCount)
}
