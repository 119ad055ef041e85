package redis

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/index"
)

const (
	fieldVector = "vector"
	fieldText   = "text"
	fieldSource = "source"

	hnswM           = 16
	hnswEFConstruct = 200
)

// EnsureIndex creates the FT index if absent: HNSW vector field with cosine
// distance and the exact embedding dimension, plus text and source metadata.
func (s *Store) EnsureIndex(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.ErrVectorDimMismatch
	}

	exists, err := s.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	args := []string{
		s.name,
		"ON", "HASH",
		"PREFIX", "1", s.prefix,
		"SCHEMA",
		fieldVector, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dimension),
		"DISTANCE_METRIC", "COSINE",
		"M", strconv.Itoa(hnswM),
		"EF_CONSTRUCTION", strconv.Itoa(hnswEFConstruct),
		fieldText, "TEXT", "NOINDEX",
		fieldSource, "TAG",
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return indexErr("create index", err)
	}
	return nil
}

// indexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) indexExists(ctx context.Context) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(s.name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, indexErr("index info", err)
	}
	return true, nil
}

// Upsert writes records as hashes in a single DoMulti round-trip. Records with
// empty IDs get a fresh UUID.
func (s *Store) Upsert(ctx context.Context, records []index.Record) error {
	if len(records) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(records))
	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		cmd := s.b().Hset().Key(s.prefix + id).FieldValue().
			FieldValue(fieldVector, vectorToBytes(rec.Vector)).
			FieldValue(fieldText, rec.Text).
			FieldValue(fieldSource, rec.Source).
			Build()
		cmds = append(cmds, cmd)
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return indexErr("upsert record "+records[i].ID, err)
		}
	}
	return nil
}
