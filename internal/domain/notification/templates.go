package notification

import (
	"fmt"

	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEMPLATES
// Готовые тексты уведомлений. Тексты собираются здесь, а не в
// инфраструктуре, чтобы формулировки были частью доменной модели.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentActive - текст о немедленном зачислении на открытый курс.
func EnrollmentActive(courseTitle string) (subject, body string) {
	subject = "Ты зачислен"
	body = fmt.Sprintf("🎓 Ты зачислен на курс «%s» и можешь начинать учиться прямо сейчас.", courseTitle)
	return subject, body
}

// EnrollmentPending - текст о запросе, ожидающем решения преподавателя.
func EnrollmentPending(courseTitle string) (subject, body string) {
	subject = "Запрос отправлен"
	body = fmt.Sprintf("⏳ Запрос на зачисление на курс «%s» отправлен преподавателю. Мы сообщим о решении.", courseTitle)
	return subject, body
}

// EnrollmentApproved - текст об одобренном зачислении.
func EnrollmentApproved(courseTitle string) (subject, body string) {
	subject = "Зачисление одобрено"
	body = fmt.Sprintf("🎓 Тебя зачислили на курс «%s». Удачи в учёбе!", courseTitle)
	return subject, body
}

// EnrollmentDeclined - текст об отклонённом запросе.
func EnrollmentDeclined(courseTitle string) (subject, body string) {
	subject = "Запрос отклонён"
	body = fmt.Sprintf("Запрос на зачисление на курс «%s» отклонён преподавателем.", courseTitle)
	return subject, body
}

// LevelUp - текст о новом уровне. Звание берётся из доменной шкалы уровней.
func LevelUp(newLevel, totalXP int) (subject, body string) {
	subject = "Новый уровень!"
	body = fmt.Sprintf("🚀 Поздравляем! Ты достиг уровня %d «%s» (%d XP). Так держать!",
		newLevel, shared.Level(newLevel).Title(), totalXP)
	return subject, body
}

// ChallengeCompleted - текст о выполненном челлендже.
func ChallengeCompleted(challengeTitle string, xpReward int) (subject, body string) {
	subject = "Челлендж выполнен"
	body = fmt.Sprintf("🏆 Челлендж «%s» выполнен! Забери награду: %d XP.", challengeTitle, xpReward)
	return subject, body
}

// RewardClaimed - текст о полученной награде.
func RewardClaimed(challengeTitle string, xpEarned int) (subject, body string) {
	subject = "Награда получена"
	body = fmt.Sprintf("✨ Награда за «%s» зачислена: +%d XP.", challengeTitle, xpEarned)
	return subject, body
}

// CourseCompleted - текст о завершённом курсе.
func CourseCompleted(courseTitle string) (subject, body string) {
	subject = "Курс завершён"
	body = fmt.Sprintf("🎉 Ты полностью прошёл курс «%s». Отличная работа!", courseTitle)
	return subject, body
}

// ForType выбирает шаблон по типу уведомления.
// args интерпретируются по типу; неизвестный тип возвращает пустые строки.
func ForType(t Type, args ...interface{}) (subject, body string) {
	switch t {
	case TypeEnrollmentActive:
		if len(args) >= 1 {
			return EnrollmentActive(fmt.Sprint(args[0]))
		}
	case TypeEnrollmentPending:
		if len(args) >= 1 {
			return EnrollmentPending(fmt.Sprint(args[0]))
		}
	case TypeEnrollmentApproved:
		if len(args) >= 1 {
			return EnrollmentApproved(fmt.Sprint(args[0]))
		}
	case TypeEnrollmentDeclined:
		if len(args) >= 1 {
			return EnrollmentDeclined(fmt.Sprint(args[0]))
		}
	case TypeLevelUp:
		if len(args) >= 2 {
			return LevelUp(toInt(args[0]), toInt(args[1]))
		}
	case TypeChallengeCompleted:
		if len(args) >= 2 {
			return ChallengeCompleted(fmt.Sprint(args[0]), toInt(args[1]))
		}
	case TypeRewardClaimed:
		if len(args) >= 2 {
			return RewardClaimed(fmt.Sprint(args[0]), toInt(args[1]))
		}
	case TypeCourseCompleted:
		if len(args) >= 1 {
			return CourseCompleted(fmt.Sprint(args[0]))
		}
	}
	return "", ""
}

func toInt(v interface{}) int {
	if n, ok := v.(int); ok {
		return n
	}
	return 0
}
