// Package metrics tracks operational counters across the validation pipeline.
package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var counters struct {
	BatchRequests    atomic.Int64
	ItemsProcessed   atomic.Int64
	OEmbedRequests   atomic.Int64
	DataAPIRequests  atomic.Int64
	SearchRequests   atomic.Int64
	RepairAttempts   atomic.Int64
	RepairHits       atomic.Int64
	RateLimited      atomic.Int64
	ValidationErrors atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
}

func IncrBatchRequests()    { counters.BatchRequests.Add(1) }
func IncrItemsProcessed()   { counters.ItemsProcessed.Add(1) }
func IncrOEmbedRequests()   { counters.OEmbedRequests.Add(1) }
func IncrDataAPIRequests()  { counters.DataAPIRequests.Add(1) }
func IncrSearchRequests()   { counters.SearchRequests.Add(1) }
func IncrRepairAttempts()   { counters.RepairAttempts.Add(1) }
func IncrRepairHits()       { counters.RepairHits.Add(1) }
func IncrRateLimited()      { counters.RateLimited.Add(1) }
func IncrValidationErrors() { counters.ValidationErrors.Add(1) }
func IncrCacheHits()        { counters.CacheHits.Add(1) }
func IncrCacheMisses()      { counters.CacheMisses.Add(1) }

// Snapshot returns current counter values keyed by metric name.
func Snapshot() map[string]int64 {
	return map[string]int64{
		"batch_requests":    counters.BatchRequests.Load(),
		"items_processed":   counters.ItemsProcessed.Load(),
		"oembed_requests":   counters.OEmbedRequests.Load(),
		"data_api_requests": counters.DataAPIRequests.Load(),
		"search_requests":   counters.SearchRequests.Load(),
		"repair_attempts":   counters.RepairAttempts.Load(),
		"repair_hits":       counters.RepairHits.Load(),
		"rate_limited":      counters.RateLimited.Load(),
		"validation_errors": counters.ValidationErrors.Load(),
		"cache_hits":        counters.CacheHits.Load(),
		"cache_misses":      counters.CacheMisses.Load(),
	}
}

// Format renders metrics as plain text for the /metrics endpoint.
func Format() string {
	m := Snapshot()
	keys := []string{
		"batch_requests", "items_processed",
		"oembed_requests", "data_api_requests", "search_requests",
		"repair_attempts", "repair_hits",
		"rate_limited", "validation_errors",
		"cache_hits", "cache_misses",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
