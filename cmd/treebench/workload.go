package main

import (
	"encoding/binary"

	"github.com/samber/lo"
)

type opKind int

const (
	opInsert opKind = iota
	opLookup
	opRemove
)

type op struct {
	kind opKind
	key  int
}

// sequentialKeys returns 0..count-1 in a fresh shuffle.
func sequentialKeys(count int) []int {
	keys := make([]int, count)
	for i := range keys {
		keys[i] = i
	}
	return lo.Shuffle(keys)
}

// mixedOps returns one INSERT, LOOKUP and REMOVE per key, shuffled.
func mixedOps(count int) []op {
	ops := make([]op, 0, count*3)
	for i := 0; i < count; i++ {
		ops = append(ops, op{opInsert, i}, op{opLookup, i}, op{opRemove, i})
	}
	return lo.Shuffle(ops)
}

func rawKey(buf []byte, key int) []byte {
	binary.BigEndian.PutUint64(buf, uint64(key))
	return buf
}

func rawVal(buf []byte, key int) []byte {
	binary.BigEndian.PutUint64(buf, uint64(-key))
	return buf
}
