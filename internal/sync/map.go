// SPDX-License-Identifier: Apache-2.0

package sync

import (
	"sync"
)

// Map is a map guarded by a read/write mutex.
type Map[T comparable, K any] struct {
	m     map[T]K
	mutex sync.RWMutex
}

func NewMap[T comparable, K any]() *Map[T, K] {
	return &Map[T, K]{
		m: make(map[T]K),
	}
}

func (m *Map[T, K]) Get(key T) (K, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	value, ok := m.m[key]
	return value, ok
}

func (m *Map[T, K]) Set(key T, value K) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.m[key] = value
}

// Replace swaps the whole content of the map. The map on input is owned by
// the Map afterwards. A nil input empties it.
func (m *Map[T, K]) Replace(content map[T]K) {
	if content == nil {
		content = make(map[T]K)
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.m = content
}

func (m *Map[T, K]) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.m)
}
