package benchmark

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/protocol/resp"
	"github.com/yndnr/litekv-go/internal/storage/memory"
)

// KeyCounts are the store sizes benchmarks run against.
var KeyCounts = []int{1000, 10000, 100000}

// ValueSizes are the value lengths in bytes.
var ValueSizes = []int{16, 1024, 64 * 1024}

func key(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

func value(size int) string {
	return strings.Repeat("v", size)
}

// prefillStore sets count keys with small values.
func prefillStore(store *memory.Store, count int) {
	v := value(16)
	for i := 0; i < count; i++ {
		store.Set(key(i), v, nil)
	}
}

// pipeline encodes n commands back to back.
func pipeline(n int, build func(i int) domain.Command) []byte {
	var buf []byte
	for i := 0; i < n; i++ {
		buf = resp.AppendRequest(buf, build(i))
	}
	return buf
}

// reportMemory reports heap usage after a GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

// runWithKeyCounts runs benchFn once per store size.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
