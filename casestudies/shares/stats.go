// Package shares is the shared state case study: a counter tab and a profile
// tab reading and writing one Stats value, kept in memory, in app storage or
// in a file.
package shares

import (
	"time"

	"github.com/on-the-ground/composable_go/sharing"
	"github.com/on-the-ground/composable_go/sharing/blob"
	"github.com/on-the-ground/composable_go/sharing/kv"
)

type Stats struct {
	Count          int `json:"count"`
	MaxCount       int `json:"maxCount"`
	MinCount       int `json:"minCount"`
	NumberOfCounts int `json:"numberOfCounts"`
}

func (s *Stats) Increment() {
	s.Count++
	s.NumberOfCounts++
	s.MaxCount = max(s.MaxCount, s.Count)
}

func (s *Stats) Decrement() {
	s.Count--
	s.NumberOfCounts++
	s.MinCount = min(s.MinCount, s.Count)
}

func InMemoryKey() sharing.Key[Stats] {
	return sharing.InMemory[Stats]("stats")
}

func AppStorageKey(backend kv.Backend) sharing.Key[Stats] {
	return sharing.AppStorage[Stats]("stats", backend)
}

// FileStorageKey keeps Stats in stats.json. A debounce <= 0 uses the
// registry's file debounce.
func FileStorageKey(backend blob.Backend, debounce time.Duration) sharing.Key[Stats] {
	return sharing.FileStorage[Stats]("stats.json", backend, debounce)
}

func isPrime(n int) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}
