// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Страница рейтинга читается из Redis-кеша с откатом на таблицу
// проекции; персональный ранг всегда вычисляется из статистики XP.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/campus-hub/campus-lms/internal/domain/leaderboard"
	"github.com/campus-hub/campus-lms/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Получает страницу рейтинга: топ или произвольную страницу.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса рейтинга.
type GetLeaderboardQuery struct {
	// Page - номер страницы (начиная с 1; 0 означает первую).
	Page int

	// PageSize - размер страницы (по умолчанию 20, максимум 100).
	PageSize int
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if q.PageSize < 0 {
		return errors.New("page size cannot be negative")
	}
	return nil
}

// pagination нормализует параметры страницы.
func (q GetLeaderboardQuery) pagination() shared.Pagination {
	return shared.NewPagination(q.Page, q.PageSize)
}

// EntryDTO - DTO для записи рейтинга (Data Transfer Object).
type EntryDTO struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`

	// Medal - медаль призовой позиции (пустая вне первой тройки).
	Medal string `json:"medal,omitempty"`

	// UserID - идентификатор студента.
	UserID int64 `json:"user_id"`

	// TotalXP - накопленный XP.
	TotalXP int `json:"total_xp"`

	// Level - уровень студента.
	Level int `json:"level"`

	// UpdatedAt - время пересборки записи.
	UpdatedAt time.Time `json:"updated_at"`
}

// GetLeaderboardResult содержит результат запроса рейтинга.
type GetLeaderboardResult struct {
	// Entries - записи рейтинга.
	Entries []EntryDTO `json:"entries"`

	// TotalCount - общее количество участников.
	TotalCount int `json:"total_count"`

	// HasMore - есть ли ещё записи после текущей страницы.
	HasMore bool `json:"has_more"`

	// Page - текущая страница (1-based).
	Page int `json:"page"`

	// PageSize - размер страницы.
	PageSize int `json:"page_size"`

	// FromCache - получен ли результат из кеша.
	FromCache bool `json:"from_cache"`
}

// GetLeaderboardHandler обрабатывает запросы на получение рейтинга.
type GetLeaderboardHandler struct {
	repo  leaderboard.Repository
	cache leaderboard.Cache
}

// NewGetLeaderboardHandler создаёт новый обработчик запроса рейтинга.
func NewGetLeaderboardHandler(repo leaderboard.Repository, cache leaderboard.Cache) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		repo:  repo,
		cache: cache,
	}
}

// Handle выполняет запрос на получение рейтинга.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrValidation, err.Error(), err)
	}

	p := query.pagination()

	entries, fromCache := h.fetch(ctx, p)
	var err error
	if entries == nil {
		if p.Offset() == 0 {
			entries, err = h.repo.Top(ctx, p.Limit())
		} else {
			entries, err = h.repo.Page(ctx, p.Offset(), p.Limit())
		}
		if err != nil {
			return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrNotFound, "failed to get leaderboard", err)
		}
	}

	totalCount, err := h.repo.Count(ctx)
	if err != nil {
		totalCount = p.Offset() + len(entries)
	}

	return &GetLeaderboardResult{
		Entries:    toDTOs(entries),
		TotalCount: totalCount,
		HasMore:    p.Offset()+len(entries) < totalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		FromCache:  fromCache,
	}, nil
}

// fetch пытается получить страницу из кеша. Возвращает nil при
// промахе: страница будет прочитана из таблицы проекции.
func (h *GetLeaderboardHandler) fetch(ctx context.Context, p shared.Pagination) ([]*leaderboard.Entry, bool) {
	if h.cache == nil {
		return nil, false
	}

	var (
		entries []*leaderboard.Entry
		err     error
	)
	if p.Offset() == 0 {
		entries, err = h.cache.GetTop(ctx, p.Limit())
	} else {
		entries, err = h.cache.GetRange(ctx, p.Offset()+1, p.Offset()+p.Limit())
	}
	if err != nil {
		return nil, false
	}

	return entries, true
}

// toDTOs конвертирует доменные записи в DTO.
func toDTOs(entries []*leaderboard.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{
			Rank:      e.Rank,
			Medal:     shared.Rank(e.Rank).Medal(),
			UserID:    e.UserID,
			TotalXP:   e.TotalXP,
			Level:     e.Level,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return dtos
}
