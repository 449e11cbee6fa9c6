package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/kv"
	"github.com/benz9527/xtree/lib/layout"
)

func timed(logger *zap.Logger, phase string, count int, fn func()) {
	t0 := time.Now()
	fn()
	logger.Info(phase,
		zap.Duration("elapsed", time.Since(t0)),
		zap.String("ops", humanize.Comma(int64(count))),
	)
}

// sink defeats dead-code elimination of the measured lookups.
var sink int

func bench(logger *zap.Logger, count int) {
	builtinMap := make(map[int]int, count)
	treeMap := kv.NewTreeMap[int, int]()
	rawMap := kv.NewRawMap(layout.Of(8, 8), layout.Of(8, 8), infra.BytesCompare)

	keyBuf := make([]byte, 8)
	valBuf := make([]byte, 8)
	keys := sequentialKeys(count)

	timed(logger, "builtin map insertions", count, func() {
		for _, key := range keys {
			builtinMap[key] = -key
		}
	})
	timed(logger, "TreeMap insertions", count, func() {
		for _, key := range keys {
			_ = treeMap.AddOrUpdate(key, -key)
		}
	})
	timed(logger, "RawMap insertions", count, func() {
		for _, key := range keys {
			_ = rawMap.AddOrUpdate(rawKey(keyBuf, key), rawVal(valBuf, key))
		}
	})

	var treeMapCopy *kv.TreeMap[int, int]
	var rawMapCopy *kv.RawMap
	timed(logger, "TreeMap copy", count, func() {
		treeMapCopy, _ = treeMap.Copy()
	})
	timed(logger, "RawMap copy", count, func() {
		rawMapCopy, _ = rawMap.Copy()
	})
	timed(logger, "TreeMap clear", count, func() {
		treeMapCopy.Purge()
	})
	timed(logger, "RawMap clear", count, func() {
		rawMapCopy.Purge()
	})

	keys = lo.Shuffle(keys)
	timed(logger, "builtin map lookups", count, func() {
		for _, key := range keys {
			sink = builtinMap[key]
		}
	})
	timed(logger, "TreeMap lookups", count, func() {
		for _, key := range keys {
			v, _ := treeMap.Get(key)
			sink = v
		}
	})
	timed(logger, "RawMap lookups", count, func() {
		for _, key := range keys {
			v, _ := rawMap.Get(rawKey(keyBuf, key))
			sink = int(len(v))
		}
	})

	keys = lo.Shuffle(keys)
	timed(logger, "builtin map removals", count, func() {
		for _, key := range keys {
			delete(builtinMap, key)
		}
	})
	timed(logger, "TreeMap removals", count, func() {
		for _, key := range keys {
			treeMap.Delete(key)
		}
	})
	timed(logger, "RawMap removals", count, func() {
		for _, key := range keys {
			rawMap.Delete(rawKey(keyBuf, key))
		}
	})

	ops := mixedOps(count)
	timed(logger, "builtin map random operations", len(ops), func() {
		for _, o := range ops {
			switch o.kind {
			case opInsert:
				builtinMap[o.key] = -o.key
			case opLookup:
				sink = builtinMap[o.key]
			case opRemove:
				delete(builtinMap, o.key)
			}
		}
	})
	timed(logger, "TreeMap random operations", len(ops), func() {
		for _, o := range ops {
			switch o.kind {
			case opInsert:
				_ = treeMap.AddOrUpdate(o.key, -o.key)
			case opLookup:
				v, _ := treeMap.Get(o.key)
				sink = v
			case opRemove:
				treeMap.Delete(o.key)
			}
		}
	})
	timed(logger, "RawMap random operations", len(ops), func() {
		for _, o := range ops {
			switch o.kind {
			case opInsert:
				_ = rawMap.AddOrUpdate(rawKey(keyBuf, o.key), rawVal(valBuf, o.key))
			case opLookup:
				v, _ := rawMap.Get(rawKey(keyBuf, o.key))
				sink = int(len(v))
			case opRemove:
				rawMap.Delete(rawKey(keyBuf, o.key))
			}
		}
	})
}
