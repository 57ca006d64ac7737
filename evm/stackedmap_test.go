// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package evm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackedMap(t *testing.T) {
	src := map[string]string{"foo": "bar"}
	sm := newStackedMap(func(key any) (any, error) {
		return src[key.(string)], nil
	})
	sm.Push()

	tests := []struct {
		f        func()
		depth    int
		putKey   string
		putValue string
		getKey   string
		want     string
	}{
		{func() {}, 1, "", "", "foo", "bar"},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", "baz"},
		{func() {}, 2, "foo", "baz1", "foo", "baz1"},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", "qux"},
		{func() { sm.Pop() }, 2, "", "", "foo", "baz1"},
		{func() { sm.Pop() }, 1, "", "", "foo", "bar"},
		{func() { sm.Push(); sm.Push() }, 3, "", "", "", ""},
		{func() { sm.PopTo(1) }, 1, "", "", "foo", "bar"},
	}

	for i, test := range tests {
		test.f()
		assert.Equal(t, test.depth, sm.Depth(), "case %d", i)
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			v, err := sm.Get(test.getKey)
			assert.NoError(t, err)
			assert.Equal(t, test.want, v, "case %d", i)
		}
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := newStackedMap(func(any) (any, error) { return nil, nil })
	sm.Push()
	sm.Put("a", 1)
	rev := sm.Push()
	sm.Put("b", 2)
	sm.Put("a", 3)
	sm.Push()
	sm.Put("c", 4)

	collect := func() (keys []any) {
		sm.Journal(func(k, _ any) bool {
			keys = append(keys, k)
			return true
		})
		return
	}
	assert.Equal(t, []any{"a", "b", "a", "c"}, collect())

	sm.PopTo(rev)
	assert.Equal(t, []any{"a"}, collect())
	v, _ := sm.Get("a")
	assert.Equal(t, 1, v)
}

func TestStackedMapSourceError(t *testing.T) {
	errLoad := errors.New("load")
	sm := newStackedMap(func(any) (any, error) { return 0, errLoad })
	sm.Push()

	_, err := sm.Get("x")
	assert.ErrorIs(t, err, errLoad)

	sm.Put("x", 1)
	v, err := sm.Get("x")
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}
