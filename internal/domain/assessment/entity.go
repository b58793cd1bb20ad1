// Package assessment содержит доменную модель упражнений и попыток их решения.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package assessment

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// QuestionType определяет тип вопроса в упражнении.
type QuestionType string

const (
	// QuestionMultipleChoice - выбор одного варианта из нескольких.
	QuestionMultipleChoice QuestionType = "multiple_choice"
	// QuestionTrueFalse - утверждение верно/неверно.
	QuestionTrueFalse QuestionType = "true_false"
	// QuestionFreeText - свободный текстовый ответ.
	QuestionFreeText QuestionType = "free_text"
	// QuestionFileUpload - загрузка файла с решением.
	QuestionFileUpload QuestionType = "file_upload"
)

// IsValid проверяет, что тип вопроса корректен.
func (q QuestionType) IsValid() bool {
	switch q {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionFreeText, QuestionFileUpload:
		return true
	default:
		return false
	}
}

// IsObjective возвращает true, если вопрос проверяется автоматически.
// Свободный текст и файлы ожидают ручной проверки преподавателем.
func (q QuestionType) IsObjective() bool {
	return q == QuestionMultipleChoice || q == QuestionTrueFalse
}

// AttemptStatus определяет статус попытки решения упражнения.
type AttemptStatus string

const (
	// AttemptInProgress - попытка начата, ответы можно менять.
	AttemptInProgress AttemptStatus = "in_progress"
	// AttemptCompleted - попытка завершена, автопроверка выполнена.
	AttemptCompleted AttemptStatus = "completed"
)

// IsValid проверяет, что статус попытки корректен.
func (s AttemptStatus) IsValid() bool {
	return s == AttemptInProgress || s == AttemptCompleted
}

// ══════════════════════════════════════════════════════════════════════════════
// EXERCISE & QUESTIONS
// ══════════════════════════════════════════════════════════════════════════════

// Exercise - упражнение, привязанное к курсу.
type Exercise struct {
	// ID - уникальный идентификатор упражнения (UUID).
	ID string

	// CourseID - курс, к которому относится упражнение.
	CourseID string

	// Title - название упражнения.
	Title string

	// Published - доступно ли упражнение студентам.
	Published bool

	// XPReward - количество XP за завершение попытки.
	XPReward int

	// AvailableFrom - начало окна доступности (nil - без ограничения).
	AvailableFrom *time.Time

	// AvailableUntil - конец окна доступности, не включается
	// (nil - без ограничения).
	AvailableUntil *time.Time

	// Questions - вопросы упражнения (в порядке Position).
	Questions []Question

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// Question - один вопрос упражнения.
type Question struct {
	// ID - уникальный идентификатор вопроса (UUID).
	ID string

	// ExerciseID - упражнение, к которому относится вопрос.
	ExerciseID string

	// Type - тип вопроса.
	Type QuestionType

	// Prompt - текст вопроса.
	Prompt string

	// ScoreWeight - количество баллов за правильный ответ.
	ScoreWeight int

	// Position - порядковый номер вопроса в упражнении.
	Position int

	// Options - варианты ответа (пусто для free_text и file_upload).
	Options []Option
}

// Option - вариант ответа на вопрос.
type Option struct {
	// ID - уникальный идентификатор варианта (UUID).
	ID string

	// QuestionID - вопрос, к которому относится вариант.
	QuestionID string

	// Text - текст варианта.
	Text string

	// IsCorrect - является ли вариант правильным.
	IsCorrect bool

	// Position - порядковый номер варианта.
	Position int
}

// CorrectOption возвращает правильный вариант вопроса (nil, если его нет).
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// FindOption находит вариант по ID (nil, если не найден).
func (q *Question) FindOption(optionID string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}

// IsAvailableAt возвращает true, если окно доступности упражнения
// содержит указанный момент. Начало окна включается, конец - нет.
func (e *Exercise) IsAvailableAt(at time.Time) bool {
	if e.AvailableFrom != nil && at.Before(*e.AvailableFrom) {
		return false
	}
	if e.AvailableUntil != nil && !at.Before(*e.AvailableUntil) {
		return false
	}
	return true
}

// MaxScore возвращает максимально возможный балл за упражнение.
// Учитываются только автоматически проверяемые вопросы.
func (e *Exercise) MaxScore() int {
	total := 0
	for _, q := range e.Questions {
		if q.Type.IsObjective() {
			total += q.ScoreWeight
		}
	}
	return total
}

// FindQuestion находит вопрос по ID (nil, если не найден).
func (e *Exercise) FindQuestion(questionID string) *Question {
	for i := range e.Questions {
		if e.Questions[i].ID == questionID {
			return &e.Questions[i]
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT & ANSWERS
// ══════════════════════════════════════════════════════════════════════════════

// Attempt - попытка студента решить упражнение.
type Attempt struct {
	// ID - уникальный идентификатор попытки (UUID).
	ID string

	// ExerciseID - упражнение, которое решает студент.
	ExerciseID string

	// UserID - идентификатор студента.
	UserID int64

	// Status - текущий статус попытки.
	Status AttemptStatus

	// Answers - ответы студента (не более одного на вопрос).
	Answers []Answer

	// TotalScore - суммарный балл автопроверки (nil до завершения).
	TotalScore *int

	// StartedAt - время начала попытки.
	StartedAt time.Time

	// CompletedAt - время завершения (nil, пока попытка не завершена).
	CompletedAt *time.Time

	// DurationSeconds - длительность попытки в секундах (0 до завершения).
	DurationSeconds int
}

// Answer - ответ студента на один вопрос.
type Answer struct {
	// ID - уникальный идентификатор ответа (UUID).
	ID string

	// AttemptID - попытка, к которой относится ответ.
	AttemptID string

	// QuestionID - вопрос, на который дан ответ.
	QuestionID string

	// SelectedOptionID - выбранный вариант (для multiple_choice и true_false).
	SelectedOptionID string

	// TextResponse - текстовый ответ (для free_text).
	TextResponse string

	// FileURL - ссылка на загруженный файл (для file_upload).
	FileURL string

	// ScoreAwarded - начисленный балл (nil для вопросов с ручной проверкой).
	ScoreAwarded *int

	// IsCorrect - верен ли ответ (nil для вопросов с ручной проверкой).
	IsCorrect *bool

	// SubmittedAt - время последней отправки ответа.
	SubmittedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAttemptNotInProgress - попытка уже завершена, ответы изменить нельзя.
	ErrAttemptNotInProgress = errors.New("attempt is not in progress")

	// ErrAttemptAlreadyCompleted - попытку нельзя завершить дважды.
	ErrAttemptAlreadyCompleted = errors.New("attempt is already completed")

	// ErrQuestionNotInExercise - вопрос не принадлежит упражнению попытки.
	ErrQuestionNotInExercise = errors.New("question does not belong to the exercise")

	// ErrOptionNotInQuestion - вариант не принадлежит вопросу.
	ErrOptionNotInQuestion = errors.New("option does not belong to the question")

	// ErrExerciseNotPublished - упражнение недоступно студентам.
	ErrExerciseNotPublished = errors.New("exercise is not published")

	// ErrInvalidQuestionType - невалидный тип вопроса.
	ErrInvalidQuestionType = errors.New("invalid question type")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewAttemptParams содержит параметры для создания новой попытки.
type NewAttemptParams struct {
	ID         string
	ExerciseID string
	UserID     int64
}

// NewAttempt создаёт новую попытку с валидацией всех полей.
func NewAttempt(params NewAttemptParams) (*Attempt, error) {
	if params.ID == "" {
		return nil, errors.New("attempt id is required")
	}

	if params.ExerciseID == "" {
		return nil, errors.New("exercise id is required")
	}

	if params.UserID <= 0 {
		return nil, errors.New("user id must be positive")
	}

	return &Attempt{
		ID:         params.ID,
		ExerciseID: params.ExerciseID,
		UserID:     params.UserID,
		Status:     AttemptInProgress,
		Answers:    []Answer{},
		StartedAt:  time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// IsInProgress возвращает true, если попытку ещё можно дополнять ответами.
func (a *Attempt) IsInProgress() bool {
	return a.Status == AttemptInProgress
}

// FindAnswer находит ответ на вопрос (nil, если не найден).
func (a *Attempt) FindAnswer(questionID string) *Answer {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}

// PutAnswer сохраняет ответ на вопрос. Повторный ответ на тот же вопрос
// заменяет предыдущий. Разрешено только пока попытка in_progress.
func (a *Attempt) PutAnswer(answer Answer) error {
	if !a.IsInProgress() {
		return ErrAttemptNotInProgress
	}

	answer.AttemptID = a.ID
	answer.SubmittedAt = time.Now().UTC()

	for i := range a.Answers {
		if a.Answers[i].QuestionID == answer.QuestionID {
			// Сохраняем ID существующей строки, содержимое заменяем.
			answer.ID = a.Answers[i].ID
			a.Answers[i] = answer
			return nil
		}
	}

	a.Answers = append(a.Answers, answer)
	return nil
}

// Complete завершает попытку ровно один раз: фиксирует время,
// длительность и итоговый балл автопроверки.
func (a *Attempt) Complete(totalScore int) error {
	if a.Status == AttemptCompleted {
		return ErrAttemptAlreadyCompleted
	}

	now := time.Now().UTC()
	a.Status = AttemptCompleted
	a.CompletedAt = &now
	a.DurationSeconds = int(now.Sub(a.StartedAt).Seconds())
	a.TotalScore = &totalScore

	return nil
}

// CorrectCount возвращает количество верных ответов в попытке.
func (a *Attempt) CorrectCount() int {
	count := 0
	for _, ans := range a.Answers {
		if ans.IsCorrect != nil && *ans.IsCorrect {
			count++
		}
	}
	return count
}

// String возвращает строковое представление попытки для логирования.
func (a *Attempt) String() string {
	score := "-"
	if a.TotalScore != nil {
		score = fmt.Sprintf("%d", *a.TotalScore)
	}
	return fmt.Sprintf(
		"Attempt{ID: %s, User: %d, Exercise: %s, Status: %s, Score: %s}",
		a.ID, a.UserID, a.ExerciseID, a.Status, score,
	)
}

// Clone создаёт глубокую копию попытки.
func (a *Attempt) Clone() *Attempt {
	if a == nil {
		return nil
	}

	clone := *a
	clone.Answers = make([]Answer, len(a.Answers))
	copy(clone.Answers, a.Answers)
	if a.TotalScore != nil {
		v := *a.TotalScore
		clone.TotalScore = &v
	}
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
