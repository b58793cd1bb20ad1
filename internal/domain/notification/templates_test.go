package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForType_LevelUp(t *testing.T) {
	subject, body := ForType(TypeLevelUp, 5, 640)
	assert.Equal(t, "Новый уровень!", subject)
	assert.Contains(t, body, "уровня 5")
	assert.Contains(t, body, "«Ученик»") // звание из шкалы уровней
	assert.Contains(t, body, "640 XP")
}

func TestForType_ChallengeCompleted(t *testing.T) {
	subject, body := ForType(TypeChallengeCompleted, "Три урока в день", 50)
	assert.Equal(t, "Челлендж выполнен", subject)
	assert.Contains(t, body, "Три урока в день")
	assert.Contains(t, body, "50 XP")
}

func TestForType_Enrollment(t *testing.T) {
	subject, body := ForType(TypeEnrollmentApproved, "Основы Go")
	assert.Equal(t, "Зачисление одобрено", subject)
	assert.Contains(t, body, "Основы Go")

	subject, _ = ForType(TypeEnrollmentDeclined, "Основы Go")
	assert.Equal(t, "Запрос отклонён", subject)
}

func TestForType_EnrollmentResolution(t *testing.T) {
	// Каждый исход запроса на зачисление получает свой шаблон.
	subject, body := ForType(TypeEnrollmentActive, "Основы Go")
	assert.Equal(t, "Ты зачислен", subject)
	assert.Contains(t, body, "Основы Go")

	subject, body = ForType(TypeEnrollmentPending, "Основы Go")
	assert.Equal(t, "Запрос отправлен", subject)
	assert.Contains(t, body, "Основы Go")
}

func TestForType_UnknownTypeOrMissingArgs(t *testing.T) {
	subject, body := ForType("unknown")
	assert.Empty(t, subject)
	assert.Empty(t, body)

	// Шаблону не хватает аргументов - безопасный пустой результат.
	subject, body = ForType(TypeLevelUp, 5)
	assert.Empty(t, subject)
	assert.Empty(t, body)
}
