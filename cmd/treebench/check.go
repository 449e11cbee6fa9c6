package main

import (
	"bytes"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/kv"
	"github.com/benz9527/xtree/lib/layout"
)

// check replays the randomized workloads with invariant validation
// after every mutation, over both container variants.
func check(logger *zap.Logger, count int) error {
	if err := checkTreeMap(count); err != nil {
		return err
	}
	if err := checkRawMap(count); err != nil {
		return err
	}
	logger.Info("invariant check passed", zap.Int("count", count))
	return nil
}

func checkTreeMap(count int) error {
	m := kv.NewTreeMap[int, int]()

	keys := sequentialKeys(count)
	for _, key := range keys {
		if err := m.AddOrUpdate(key, -key); err != nil {
			return err
		}
		if err := m.Check(); err != nil {
			return err
		}
		if v, ok := m.Get(key); !ok || v != -key {
			return fmt.Errorf("TreeMap lookup after insert of %d returned (%d, %t)", key, v, ok)
		}
	}

	twin, err := m.Copy()
	if err != nil {
		return err
	}
	if err = twin.Check(); err != nil {
		return err
	}
	for _, key := range keys {
		if v, ok := twin.Get(key); !ok || v != -key {
			return fmt.Errorf("TreeMap copy lookup of %d returned (%d, %t)", key, v, ok)
		}
	}
	twin.Purge()

	for _, key := range lo.Shuffle(keys) {
		if !m.Delete(key) {
			return fmt.Errorf("TreeMap removal of %d reported absent", key)
		}
		if err = m.Check(); err != nil {
			return err
		}
		if _, ok := m.Get(key); ok {
			return fmt.Errorf("TreeMap lookup of %d succeeded after removal", key)
		}
	}
	if m.Len() != 0 {
		return fmt.Errorf("TreeMap not empty after removals: %d", m.Len())
	}

	live := make(map[int]int, count)
	for _, o := range mixedOps(count) {
		switch o.kind {
		case opInsert:
			if err = m.AddOrUpdate(o.key, -o.key); err != nil {
				return err
			}
			live[o.key] = -o.key
		case opRemove:
			removed := m.Delete(o.key)
			if _, ok := live[o.key]; ok != removed {
				return fmt.Errorf("TreeMap removal of %d reported %t", o.key, removed)
			}
			delete(live, o.key)
		case opLookup:
		}

		if err = m.Check(); err != nil {
			return err
		}
		v, ok := m.Get(o.key)
		expected, want := live[o.key]
		if ok != want || (ok && v != expected) {
			return fmt.Errorf("TreeMap lookup of %d returned (%d, %t), want (%d, %t)", o.key, v, ok, expected, want)
		}
	}
	return nil
}

func checkRawMap(count int) error {
	m := kv.NewRawMap(layout.Of(8, 8), layout.Of(8, 8), infra.BytesCompare)
	keyBuf := make([]byte, 8)
	valBuf := make([]byte, 8)

	keys := sequentialKeys(count)
	for _, key := range keys {
		if err := m.AddOrUpdate(rawKey(keyBuf, key), rawVal(valBuf, key)); err != nil {
			return err
		}
		if err := m.Check(); err != nil {
			return err
		}
		if v, ok := m.Get(rawKey(keyBuf, key)); !ok || !bytes.Equal(v, rawVal(valBuf, key)) {
			return fmt.Errorf("RawMap lookup after insert of %d returned (%x, %t)", key, v, ok)
		}
	}

	twin, err := m.Copy()
	if err != nil {
		return err
	}
	if err = twin.Check(); err != nil {
		return err
	}
	twin.Purge()

	for _, key := range lo.Shuffle(keys) {
		if !m.Delete(rawKey(keyBuf, key)) {
			return fmt.Errorf("RawMap removal of %d reported absent", key)
		}
		if err = m.Check(); err != nil {
			return err
		}
	}
	if m.Len() != 0 {
		return fmt.Errorf("RawMap not empty after removals: %d", m.Len())
	}
	return nil
}
