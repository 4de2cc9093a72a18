package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/metrics"
)

// Decode parses a collection document. It never fails: an empty or
// malformed document yields an empty collection and the failure is logged.
func Decode[T any](key string, data []byte) []T {
	items := []T{}
	if len(data) == 0 {
		return items
	}
	if err := json.Unmarshal(data, &items); err != nil {
		metrics.SignalParseFailures.WithLabelValues(key).Inc()
		logger := log.WithComponent("storage")
		logger.Warn().
			Err(err).
			Str("key", key).
			Int("bytes", len(data)).
			Msg("malformed collection, treating as empty")
		return []T{}
	}
	if items == nil {
		// a stored JSON null
		items = []T{}
	}
	return items
}

// Load reads a collection from the store. Missing keys, read errors and
// malformed documents all yield an empty collection.
func Load[T any](s Store, key string) []T {
	data, err := s.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger := log.WithComponent("storage")
			logger.Warn().Err(err).Str("key", key).Msg("failed to read collection")
		}
		return []T{}
	}
	return Decode[T](key, data)
}

// Save serializes the whole collection and writes it under key
func Save[T any](s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(key, data)
}

// LoadDocument reads a single JSON document. ok is false when the key is
// missing or the document is malformed.
func LoadDocument[T any](s Store, key string) (doc T, ok bool) {
	data, err := s.Get(key)
	if err != nil {
		return doc, false
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger := log.WithComponent("storage")
		logger.Warn().Err(err).Str("key", key).Msg("malformed document")
		return doc, false
	}
	return doc, true
}

// SaveDocument writes a single JSON document under key
func SaveDocument[T any](s Store, key string, doc T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(key, data)
}
