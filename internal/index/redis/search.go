package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/lexhaven/lexrag/internal/index"
)

const scoreField = "__" + fieldVector + "_score"

// Query runs a KNN vector similarity search via FT.SEARCH, returning chunk
// text and source alongside each score so callers need no second lookup.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB]", topK, fieldVector)

	args := []string{
		s.name, queryStr,
		"RETURN", "3", fieldText, fieldSource, scoreField,
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(topK),
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, indexErr("search knn", err)
	}

	return parseKNNResult(raw)
}

func parseKNNResult(raw []rueidis.RedisMessage) ([]index.Match, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	matches := make([]index.Match, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		pairs := parseFieldPairs(fields)
		m := index.Match{
			Text:   pairs[fieldText],
			Source: pairs[fieldSource],
		}
		if scoreStr, ok := pairs[scoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				m.Score = max(0, 1.0-d) // cosine distance → similarity, clamped to [0,1]
			}
		}
		matches = append(matches, m)
	}

	return matches, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
