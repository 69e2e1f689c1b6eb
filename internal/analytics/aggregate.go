// Package analytics implements the group-by/reduce engine behind every
// distribution and total in bankpulse.
//
// Pipeline: filter → group → reduce → order → limit. All functions are pure;
// callers pass slices taken from a store snapshot and get fresh results back.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Order selects how Aggregate sorts its buckets
type Order int

const (
	// ByKey sorts buckets by ascending key.
	ByKey Order = iota
	// ByValueDesc sorts buckets by descending value, ties by ascending key.
	ByValueDesc
)

// Bucket is one (key, value) pair of an aggregation result
type Bucket[K cmp.Ordered] struct {
	Key   K               `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// Count returns the bucket value as an integer count
func (b Bucket[K]) Count() int64 {
	return b.Value.IntPart()
}

// Reducer folds the rows of one group into a single value
type Reducer[T any] func(group []T) decimal.Decimal

// Count counts the rows of each group
func Count[T any]() Reducer[T] {
	return func(group []T) decimal.Decimal {
		return decimal.NewFromInt(int64(len(group)))
	}
}

// Sum adds field over the rows of each group
func Sum[T any](field func(T) decimal.Decimal) Reducer[T] {
	return func(group []T) decimal.Decimal {
		total := decimal.Zero
		for _, row := range group {
			total = total.Add(field(row))
		}
		return total
	}
}

// DistinctCount counts the distinct values of field within each group
func DistinctCount[T any, V comparable](field func(T) V) Reducer[T] {
	return func(group []T) decimal.Decimal {
		seen := make(map[V]struct{}, len(group))
		for _, row := range group {
			seen[field(row)] = struct{}{}
		}
		return decimal.NewFromInt(int64(len(seen)))
	}
}

// Query describes one aggregation. GroupBy and Reduce are required; a nil
// Filter keeps every row and a Limit of zero or less keeps every bucket.
type Query[T any, K cmp.Ordered] struct {
	GroupBy func(T) K
	Reduce  Reducer[T]
	Filter  func(T) bool
	Order   Order
	Limit   int
}

// Aggregate runs q over rows. An empty input, or one the filter empties,
// yields an empty slice.
func Aggregate[T any, K cmp.Ordered](rows []T, q Query[T, K]) []Bucket[K] {
	groups := make(map[K][]T)
	for _, row := range rows {
		if q.Filter != nil && !q.Filter(row) {
			continue
		}
		key := q.GroupBy(row)
		groups[key] = append(groups[key], row)
	}

	buckets := make([]Bucket[K], 0, len(groups))
	for key, group := range groups {
		buckets = append(buckets, Bucket[K]{Key: key, Value: q.Reduce(group)})
	}

	SortBuckets(buckets, q.Order)

	if q.Limit > 0 && len(buckets) > q.Limit {
		buckets = buckets[:q.Limit]
	}
	return buckets
}

// SortBuckets orders buckets in place
func SortBuckets[K cmp.Ordered](buckets []Bucket[K], order Order) {
	slices.SortFunc(buckets, func(a, b Bucket[K]) int {
		if order == ByValueDesc {
			if c := b.Value.Cmp(a.Value); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

// Total reduces rows that pass filter into a single value, without grouping
func Total[T any](rows []T, reduce Reducer[T], filter func(T) bool) decimal.Decimal {
	if filter == nil {
		return reduce(rows)
	}
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		if filter(row) {
			kept = append(kept, row)
		}
	}
	return reduce(kept)
}

// DateKey buckets a timestamp by calendar date in its own location
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
