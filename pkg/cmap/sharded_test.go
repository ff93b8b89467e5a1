package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.ShardCount() != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", m.ShardCount(), DefaultShardCount)
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int](tt.input)
			if m.ShardCount() != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, m.ShardCount(), tt.expected)
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	m := New[int]()

	m.Set("key1", 100)
	m.Set("key2", 200)
	m.Set("key1", 101)

	if val, ok := m.Get("key1"); !ok || val != 101 {
		t.Errorf("Get(key1) = (%d, %v), want (101, true)", val, ok)
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}

	m.Delete("key1")
	if m.Has("key1") {
		t.Error("key1 still present after Delete")
	}

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", m.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i)
				m.Set(key, i)
				m.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if m.Count() != 800 {
		t.Errorf("Count() = %d, want 800", m.Count())
	}
}
