package assessment

// ══════════════════════════════════════════════════════════════════════════════
// AUTO-GRADER
// Автоматическая проверка попытки на момент её завершения.
// Проверяются только объективные вопросы (multiple_choice, true_false);
// свободный текст и файлы остаются без оценки до ручной проверки.
// ══════════════════════════════════════════════════════════════════════════════

// GradeResult - итог автопроверки попытки.
type GradeResult struct {
	// TotalScore - сумма начисленных баллов по объективным вопросам.
	TotalScore int

	// MaxScore - максимально возможный балл упражнения.
	MaxScore int

	// CorrectCount - количество верных ответов.
	CorrectCount int

	// GradedCount - количество автоматически проверенных ответов.
	GradedCount int

	// PendingCount - количество ответов, ожидающих ручной проверки.
	PendingCount int
}

// GradeAnswer проверяет один ответ по вопросу и заполняет
// поля ScoreAwarded и IsCorrect. Для вопросов с ручной проверкой
// оба поля остаются nil.
func GradeAnswer(question *Question, answer *Answer) {
	if question == nil || answer == nil {
		return
	}

	if !question.Type.IsObjective() {
		answer.ScoreAwarded = nil
		answer.IsCorrect = nil
		return
	}

	correct := false
	if answer.SelectedOptionID != "" {
		if opt := question.FindOption(answer.SelectedOptionID); opt != nil {
			correct = opt.IsCorrect
		}
	}

	score := 0
	if correct {
		score = question.ScoreWeight
	}

	answer.ScoreAwarded = &score
	answer.IsCorrect = &correct
}

// GradeAttempt проверяет все ответы попытки по вопросам упражнения.
// Вопросы без ответа в счёт не идут: невыбранный вариант - это 0 баллов.
func GradeAttempt(exercise *Exercise, attempt *Attempt) GradeResult {
	result := GradeResult{
		MaxScore: exercise.MaxScore(),
	}

	for i := range attempt.Answers {
		answer := &attempt.Answers[i]
		question := exercise.FindQuestion(answer.QuestionID)
		if question == nil {
			continue
		}

		GradeAnswer(question, answer)

		if !question.Type.IsObjective() {
			result.PendingCount++
			continue
		}

		result.GradedCount++
		if answer.ScoreAwarded != nil {
			result.TotalScore += *answer.ScoreAwarded
		}
		if answer.IsCorrect != nil && *answer.IsCorrect {
			result.CorrectCount++
		}
	}

	return result
}
