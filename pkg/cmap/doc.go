// Package cmap provides a concurrent map split into independently locked
// shards.
//
//	m := cmap.New[string, *Entry]()
//	e, _ := m.GetOrCreate("10.0.0.1", newEntry)
//	m.DeleteFunc(func(_ string, e *Entry) bool { return e.Idle() })
//
// Keys are distributed with hash/maphash by default; NewStrings shards
// string keys with murmur3 instead.
package cmap
