// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package evm

// stackedMap maintains maps in a stack. Each map inherits the key/values of
// the maps below it, so popping a level reverts every put made since the
// matching push.
type stackedMap struct {
	src      mapGetter
	levels   []*level
	keyLevel map[any][]int
}

type level struct {
	kvs     map[any]any
	journal []journalEntry
}

type journalEntry struct {
	key   any
	value any
}

// mapGetter loads the value of a key never put.
type mapGetter func(key any) (value any, err error)

func newStackedMap(src mapGetter) *stackedMap {
	return &stackedMap{
		src:      src,
		keyLevel: make(map[any][]int),
	}
}

// Depth returns the number of levels.
func (sm *stackedMap) Depth() int {
	return len(sm.levels)
}

// Push pushes a new level and returns the depth before the push.
func (sm *stackedMap) Push() int {
	sm.levels = append(sm.levels, &level{kvs: make(map[any]any)})
	return len(sm.levels) - 1
}

// Pop drops the top level, reverting its puts.
func (sm *stackedMap) Pop() {
	top := sm.levels[len(sm.levels)-1]
	for key := range top.kvs {
		revs := sm.keyLevel[key]
		if len(revs) == 1 {
			delete(sm.keyLevel, key)
		} else {
			sm.keyLevel[key] = revs[:len(revs)-1]
		}
	}
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pops levels until the depth is depth.
func (sm *stackedMap) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get returns the latest value put for key, or the source value.
func (sm *stackedMap) Get(key any) (any, error) {
	if revs, ok := sm.keyLevel[key]; ok {
		return sm.levels[revs[len(revs)-1]].kvs[key], nil
	}
	return sm.src(key)
}

// Put sets key on the top level. It panics when the stack is empty.
func (sm *stackedMap) Put(key, value any) {
	rev := len(sm.levels) - 1
	top := sm.levels[rev]
	if _, ok := top.kvs[key]; !ok {
		sm.keyLevel[key] = append(sm.keyLevel[key], rev)
	}
	top.kvs[key] = value
	top.journal = append(top.journal, journalEntry{key, value})
}

// Journal calls cb with every live put, oldest first, until cb returns false.
func (sm *stackedMap) Journal(cb func(key, value any) bool) {
	for _, lvl := range sm.levels {
		for _, e := range lvl.journal {
			if !cb(e.key, e.value) {
				return
			}
		}
	}
}
