// Package sqlite provides encoding utilities for SQLite storage
package sqlite

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// keyToInt64 reinterprets a node key for SQLite, which rejects uint64
// values with the high bit set
func keyToInt64(key uint64) int64 {
	return int64(key)
}

// int64ToKey reverses keyToInt64
func int64ToKey(v int64) uint64 {
	return uint64(v)
}

// encodePayloads serializes payload ordinals as a portable Roaring bitmap
func encodePayloads(ordinals []uint32) ([]byte, error) {
	bm := roaring.BitmapOf(ordinals...)
	bm.RunOptimize()
	b, err := bm.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload bitmap: %w", err)
	}
	return b, nil
}

// decodePayloads reads payload ordinals back from a portable Roaring bitmap
func decodePayloads(b []byte) ([]uint32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	bm := roaring.New()
	if err := bm.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("failed to decode payload bitmap: %w", err)
	}
	return bm.ToArray(), nil
}

// orderColumn maps a requested ordering onto a known column
func orderColumn(orderBy string) string {
	switch orderBy {
	case "name", "payload_count", "node_count":
		return orderBy
	default:
		return "created_at"
	}
}

// sortEdges orders edges by source then target for stable output
func sortEdges(edges []types.EdgeRecord) {
	slices.SortFunc(edges, func(a, b types.EdgeRecord) int {
		if a.From != b.From {
			if a.From < b.From {
				return -1
			}
			return 1
		}
		if a.To < b.To {
			return -1
		}
		if a.To > b.To {
			return 1
		}
		return 0
	})
}
