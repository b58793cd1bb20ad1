package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET NEIGHBORS QUERY
// Получает окно рейтинга вокруг студента: ±K позиций, вычисленных из
// текущей статистики XP. У краёв рейтинга окно усечённое, не сдвинутое.
// ══════════════════════════════════════════════════════════════════════════════

// GetNeighborsQuery содержит параметры запроса окружения.
type GetNeighborsQuery struct {
	// UserID - идентификатор студента в центре окна.
	UserID int64

	// Span - количество позиций с каждой стороны (по умолчанию 2, максимум 10).
	Span int
}

// Validate проверяет корректность параметров запроса.
func (q *GetNeighborsQuery) Validate() error {
	if q.UserID <= 0 {
		return fmt.Errorf("invalid user_id: %d", q.UserID)
	}
	if q.Span < 0 {
		return errors.New("span cannot be negative")
	}
	if q.Span == 0 {
		q.Span = 2
	}
	if q.Span > 10 {
		q.Span = 10
	}
	return nil
}

// GetNeighborsResult содержит окно рейтинга вокруг студента.
type GetNeighborsResult struct {
	// UserID - идентификатор студента в центре окна.
	UserID int64 `json:"user_id"`

	// Rank - позиция студента.
	Rank int `json:"rank"`

	// Entries - записи окна по возрастанию ранга, включая самого студента.
	Entries []EntryDTO `json:"entries"`
}

// GetNeighborsHandler обрабатывает запросы окружения студента.
type GetNeighborsHandler struct {
	ranker leaderboard.Ranker
}

// NewGetNeighborsHandler создаёт новый обработчик запроса окружения.
func NewGetNeighborsHandler(ranker leaderboard.Ranker) *GetNeighborsHandler {
	return &GetNeighborsHandler{ranker: ranker}
}

// Handle выполняет запрос окружения студента.
func (h *GetNeighborsHandler) Handle(ctx context.Context, query GetNeighborsQuery) (*GetNeighborsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetNeighbors", shared.ErrValidation, err.Error(), err)
	}

	self, err := h.ranker.RankOf(ctx, query.UserID)
	if err != nil {
		if errors.Is(err, leaderboard.ErrUserNotRanked) {
			return nil, shared.ErrNotRanked
		}
		return nil, shared.WrapError("query", "GetNeighbors", shared.ErrNotFound, "failed to get rank", err)
	}

	entries, err := h.ranker.Around(ctx, query.UserID, query.Span)
	if err != nil {
		return nil, shared.WrapError("query", "GetNeighbors", shared.ErrNotFound, "failed to get neighbors", err)
	}

	return &GetNeighborsResult{
		UserID:  query.UserID,
		Rank:    self.Rank,
		Entries: toDTOs(entries),
	}, nil
}
