package storage

import (
	"context"
	"log/slog"
	"strconv"

	"mushaf/internal/logging"
)

const lastPagePrefix = "last_page/"

// PositionStore implements domain.PositionStore on a KV.
type PositionStore struct {
	kv KV
}

func NewPositionStore(kv KV) *PositionStore {
	return &PositionStore{kv: kv}
}

func (s *PositionStore) SaveLastPage(ctx context.Context, documentID string, page int) error {
	return s.kv.Set(ctx, lastPagePrefix+documentID, []byte(strconv.Itoa(page)))
}

// LoadLastPage reports false when nothing usable is stored.
func (s *PositionStore) LoadLastPage(ctx context.Context, documentID string) (int, bool) {
	data, err := s.kv.Get(ctx, lastPagePrefix+documentID)
	if err != nil {
		logging.Logger().Warn("load last page", slog.String("document", documentID), slog.Any("error", err))
		return 0, false
	}
	if data == nil {
		return 0, false
	}
	page, err := strconv.Atoi(string(data))
	if err != nil || page < 0 {
		return 0, false
	}
	return page, true
}
