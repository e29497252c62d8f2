package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"mushaf/internal/domain"
	"mushaf/internal/ink"
	"mushaf/internal/logging"
)

const drawingsPrefix = "drawings/"

// AnnotationStore implements domain.AnnotationStore on a KV. Each document
// is one record: a JSON object mapping the decimal page index to the
// encoded drawing.
type AnnotationStore struct {
	kv    KV
	codec ink.Codec
}

// NewAnnotationStore creates an AnnotationStore. A nil codec uses ink.JSONCodec.
func NewAnnotationStore(kv KV, codec ink.Codec) *AnnotationStore {
	if codec == nil {
		codec = ink.JSONCodec{}
	}
	return &AnnotationStore{kv: kv, codec: codec}
}

func drawingsKey(documentID string) string { return drawingsPrefix + documentID }

// Save overwrites the record of documentID. A drawing that fails to encode
// is left out of the record; the rest is still saved. Without any
// non-empty drawing the record is removed.
func (s *AnnotationStore) Save(ctx context.Context, documentID string, drawings domain.Drawings) error {
	record := make(map[string][]byte, len(drawings))
	for page, d := range drawings {
		if d.IsEmpty() {
			continue
		}
		data, err := s.codec.Encode(d)
		if err != nil {
			logging.Logger().Warn("dropping drawing that failed to encode",
				slog.String("document", documentID), slog.Int("page", page), slog.Any("error", err))
			continue
		}
		record[strconv.Itoa(page)] = data
	}
	if len(record) == 0 {
		return s.Clear(ctx, documentID)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode drawings record: %w", err)
	}
	return s.kv.Set(ctx, drawingsKey(documentID), data)
}

// Load returns the drawings of documentID. Missing or unreadable data
// yields an empty map.
func (s *AnnotationStore) Load(ctx context.Context, documentID string) domain.Drawings {
	log := logging.Logger()
	out := domain.Drawings{}

	data, err := s.kv.Get(ctx, drawingsKey(documentID))
	if err != nil {
		log.Warn("load drawings", slog.String("document", documentID), slog.Any("error", err))
		return out
	}
	if len(data) == 0 {
		return out
	}

	var record map[string][]byte
	if err := json.Unmarshal(data, &record); err != nil {
		log.Warn("malformed drawings record", slog.String("document", documentID), slog.Any("error", err))
		return out
	}
	for key, blob := range record {
		page, err := strconv.Atoi(key)
		if err != nil || page < 0 {
			log.Warn("skipping malformed page key", slog.String("document", documentID), slog.String("key", key))
			continue
		}
		d, err := s.codec.Decode(blob)
		if err != nil {
			log.Warn("skipping undecodable drawing",
				slog.String("document", documentID), slog.Int("page", page), slog.Any("error", err))
			continue
		}
		out[page] = d
	}
	return out
}

// Clear deletes the record of documentID.
func (s *AnnotationStore) Clear(ctx context.Context, documentID string) error {
	return s.kv.Delete(ctx, drawingsKey(documentID))
}

// Documents lists the document IDs that have a drawings record.
func (s *AnnotationStore) Documents(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, drawingsPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id, ok := strings.CutPrefix(k, drawingsPrefix); ok && id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
