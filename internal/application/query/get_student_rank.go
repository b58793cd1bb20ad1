package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT RANK QUERY
// Получает позицию конкретного студента. Ранг вычисляется из текущей
// статистики XP при каждом запросе: награда, начисленная секунду
// назад, уже видна, даже если проекция рейтинга ещё не пересобрана.
// Студент без статистики - валидный результат, не ошибка.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentRankQuery содержит параметры запроса позиции.
type GetStudentRankQuery struct {
	// UserID - идентификатор студента.
	UserID int64
}

// Validate проверяет корректность параметров запроса.
func (q GetStudentRankQuery) Validate() error {
	if q.UserID <= 0 {
		return fmt.Errorf("invalid user_id: %d", q.UserID)
	}
	return nil
}

// GetStudentRankResult содержит позицию студента в рейтинге.
type GetStudentRankResult struct {
	// UserID - идентификатор студента.
	UserID int64 `json:"user_id"`

	// Ranked - есть ли студент в рейтинге.
	Ranked bool `json:"ranked"`

	// Rank - позиция студента (0, если не в рейтинге).
	Rank int `json:"rank"`

	// TopTen - входит ли студент в первую десятку.
	TopTen bool `json:"top_ten"`

	// TotalXP - накопленный XP.
	TotalXP int `json:"total_xp"`

	// Level - уровень студента.
	Level int `json:"level"`

	// TotalCount - общее количество участников.
	TotalCount int `json:"total_count"`
}

// GetStudentRankHandler обрабатывает запросы позиции студента.
type GetStudentRankHandler struct {
	ranker leaderboard.Ranker
}

// NewGetStudentRankHandler создаёт новый обработчик запроса позиции.
func NewGetStudentRankHandler(ranker leaderboard.Ranker) *GetStudentRankHandler {
	return &GetStudentRankHandler{ranker: ranker}
}

// Handle выполняет запрос позиции студента.
func (h *GetStudentRankHandler) Handle(ctx context.Context, query GetStudentRankQuery) (*GetStudentRankResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStudentRank", shared.ErrValidation, err.Error(), err)
	}

	entry, err := h.ranker.RankOf(ctx, query.UserID)
	if err != nil {
		if errors.Is(err, leaderboard.ErrUserNotRanked) {
			return &GetStudentRankResult{UserID: query.UserID}, nil
		}
		return nil, shared.WrapError("query", "GetStudentRank", shared.ErrNotFound, "failed to get rank", err)
	}

	totalCount, err := h.ranker.Count(ctx)
	if err != nil {
		totalCount = entry.Rank
	}

	return &GetStudentRankResult{
		UserID:     query.UserID,
		Ranked:     true,
		Rank:       entry.Rank,
		TopTen:     shared.Rank(entry.Rank).IsTop10(),
		TotalXP:    entry.TotalXP,
		Level:      entry.Level,
		TotalCount: totalCount,
	}, nil
}
