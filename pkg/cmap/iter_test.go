package cmap

import (
	"sort"
	"sync"
	"testing"
)

func TestRange(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 6 {
		t.Errorf("sum = %d, want 6", sum)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("visited = %d after early stop, want 1", visited)
	}
}

func TestKeys(t *testing.T) {
	m := New[int]()
	m.Set("b", 1)
	m.Set("a", 2)

	keys := m.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}
}

func TestUpdate(t *testing.T) {
	m := New[int]()

	m.Update("n", func(v int, exists bool) (int, bool) {
		if exists {
			t.Error("exists = true for new key")
		}
		return v + 1, false
	})
	m.Update("n", func(v int, exists bool) (int, bool) {
		return v + 1, false
	})
	if v, _ := m.Get("n"); v != 2 {
		t.Errorf("Get(n) = %d, want 2", v)
	}

	m.Update("n", func(int, bool) (int, bool) { return 0, true })
	if m.Has("n") {
		t.Error("Update with remove=true kept the key")
	}
}

func TestUpdate_Concurrent(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update("counter", func(v int, _ bool) (int, bool) { return v + 1, false })
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != 50 {
		t.Errorf("counter = %d, want 50", v)
	}
}

func TestPop(t *testing.T) {
	m := New[string]()
	m.Set("k", "v")

	if v, ok := m.Pop("k"); !ok || v != "v" {
		t.Errorf("Pop = (%q, %v), want (v, true)", v, ok)
	}
	if _, ok := m.Pop("k"); ok {
		t.Error("second Pop reported present")
	}
}
