package benchmark

import (
	"runtime"
	"sync"
	"testing"

	"github.com/bulkhash/bulkhash"
	"github.com/bulkhash/bulkhash/workload"
	"github.com/puzpuzpuz/xsync/v4"
)

const total = 1 << 20

func batch(b *testing.B) ([]uint32, []uint32) {
	b.Helper()
	spec := workload.Spec{Count: total, Distribution: workload.Sequential, KeyRange: total, Seed: 1}
	keys, err := spec.Keys()
	if err != nil {
		b.Fatal(err)
	}
	return keys, workload.Values(keys)
}

func BenchmarkInsert_bulkhash_Table(b *testing.B) {
	keys, values := batch(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tbl, err := bulkhash.NewTable(bulkhash.WithCapacity(total * 2))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if _, err := tbl.Insert(keys, values); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInsert_xsync_Map(b *testing.B) {
	keys, values := batch(b)
	workers := runtime.GOMAXPROCS(0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		m := xsync.NewMap[uint32, uint32](xsync.WithPresize(total))
		b.StartTimer()

		var wg sync.WaitGroup
		chunk := (total + workers - 1) / workers
		for lo := 0; lo < total; lo += chunk {
			hi := min(lo+chunk, total)
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for j := lo; j < hi; j++ {
					m.Store(keys[j], values[j])
				}
			}(lo, hi)
		}
		wg.Wait()
	}
}

func BenchmarkInsert_sync_Map(b *testing.B) {
	keys, values := batch(b)
	workers := runtime.GOMAXPROCS(0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		var m sync.Map
		b.StartTimer()

		var wg sync.WaitGroup
		chunk := (total + workers - 1) / workers
		for lo := 0; lo < total; lo += chunk {
			hi := min(lo+chunk, total)
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for j := lo; j < hi; j++ {
					m.Store(keys[j], values[j])
				}
			}(lo, hi)
		}
		wg.Wait()
	}
}

func BenchmarkLookup_bulkhash_Table(b *testing.B) {
	keys, values := batch(b)
	tbl, err := bulkhash.NewTable(bulkhash.WithCapacity(total * 2))
	if err != nil {
		b.Fatal(err)
	}
	if _, err := tbl.Insert(keys, values); err != nil {
		b.Fatal(err)
	}
	hits := make([]bool, len(keys))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := tbl.Contains(keys, hits); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLookup_xsync_Map(b *testing.B) {
	keys, values := batch(b)
	m := xsync.NewMap[uint32, uint32](xsync.WithPresize(total))
	for i := range keys {
		m.Store(keys[i], values[i])
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = m.Load(keys[i])
			i++
			if i >= len(keys) {
				i = 0
			}
		}
	})
}
