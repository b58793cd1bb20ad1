package enrollment

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE (Admission Policy Holder)
// ══════════════════════════════════════════════════════════════════════════════

// Course - курс с настройками политики приёма студентов.
type Course struct {
	// ID - уникальный идентификатор курса (UUID).
	ID string

	// Title - название курса.
	Title string

	// Mode - режим приёма новых студентов.
	Mode Mode

	// KeyHash - bcrypt-хеш ключа зачисления (пустой, если режим не key_based).
	KeyHash string

	// Published - открыт ли курс для записи.
	Published bool

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

var (
	// ErrKeyMismatch - предоставленный ключ зачисления не совпал с хешем.
	ErrKeyMismatch = errors.New("enrollment key does not match")

	// ErrKeyRequired - режим key_based требует непустой ключ.
	ErrKeyRequired = errors.New("enrollment key is required")

	// ErrCourseUnpublished - курс закрыт для записи.
	ErrCourseUnpublished = errors.New("course is not published")
)

// SetEnrollmentKey хеширует и устанавливает ключ зачисления для курса.
func (c *Course) SetEnrollmentKey(plainKey string) error {
	plainKey = strings.TrimSpace(plainKey)
	if plainKey == "" {
		return ErrKeyRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	c.KeyHash = string(hash)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// VerifyEnrollmentKey сравнивает ключ с bcrypt-хешем курса.
func (c *Course) VerifyEnrollmentKey(plainKey string) error {
	if plainKey == "" {
		return ErrKeyRequired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(c.KeyHash), []byte(plainKey)); err != nil {
		return ErrKeyMismatch
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMISSION POLICY RESOLVER
// ══════════════════════════════════════════════════════════════════════════════

// ResolveAdmission определяет начальный статус зачисления по политике курса.
//
//   - auto_accept: запрос сразу активируется;
//   - key_based:   ключ проверяется по bcrypt-хешу, при совпадении активация;
//   - approval:    запрос ставится в очередь на одобрение (pending).
//
// Неизвестный режим трактуется как auto_accept: запись на курс не должна
// ломаться из-за появления нового режима в другом сервисе раньше, чем здесь.
func ResolveAdmission(course *Course, providedKey string) (Status, error) {
	if course == nil {
		return "", ErrInvalidCourseID
	}

	if !course.Published {
		return "", ErrCourseUnpublished
	}

	switch course.Mode {
	case ModeAutoAccept:
		return StatusActive, nil

	case ModeKeyBased:
		if err := course.VerifyEnrollmentKey(providedKey); err != nil {
			return "", err
		}
		return StatusActive, nil

	case ModeApproval:
		return StatusPending, nil

	default:
		return StatusActive, nil
	}
}
