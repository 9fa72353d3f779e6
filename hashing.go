// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// Hash functions

// _PAIR is a mapping function that maps (bijectively) a pair of integer (a, b)
// into a unique integer (up to overflow). It is used for hashing nodes in the
// unique table and entries in the operation cache.
func _PAIR(a, b uint64) uint64 {
	return ((a+b)*(a+b+1))/2 + a
}

func _TRIPLE(a, b, c uint64) uint64 {
	return _PAIR(c, _PAIR(a, b))
}

func _QUAD(a, b, c, d uint64) uint64 {
	return _PAIR(d, _TRIPLE(a, b, c))
}

// ************************************************************

// The hash function for cache entries is #(kind, tag, a, b, c).

func entryhash(kind uint8, tag uint32, a, b, c Node) uint64 {
	return _QUAD(uint64(tag)<<3|uint64(kind), uint64(a), uint64(b), uint64(c))
}
