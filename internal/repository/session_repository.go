// Package repository 提供了数据访问层的实现。
package repository

import (
	"sync"
	"time"
)

// SessionRepository 定义了会话的存取接口。会话只保存在内存中，重启后丢失。
type SessionRepository[T any] interface {
	Save(id string, value T)
	// Find 查找会话并刷新其最近访问时间。
	Find(id string) (T, bool)
	Delete(id string) (T, bool)
	// DeleteIdleSince 删除最近访问早于 cutoff 的会话并返回它们。
	DeleteIdleSince(cutoff time.Time) []T
	Count() int
}

type sessionEntry[T any] struct {
	value    T
	lastSeen time.Time
}

type memorySessionRepository[T any] struct {
	mu    sync.Mutex
	items map[string]*sessionEntry[T]
	now   func() time.Time
}

// NewSessionRepository 创建一个基于内存的 SessionRepository 实例。
func NewSessionRepository[T any]() SessionRepository[T] {
	return newSessionRepositoryWithClock[T](time.Now)
}

func newSessionRepositoryWithClock[T any](now func() time.Time) *memorySessionRepository[T] {
	return &memorySessionRepository[T]{items: make(map[string]*sessionEntry[T]), now: now}
}

func (r *memorySessionRepository[T]) Save(id string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id] = &sessionEntry[T]{value: value, lastSeen: r.now()}
}

func (r *memorySessionRepository[T]) Find(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastSeen = r.now()
	return e.value, true
}

func (r *memorySessionRepository[T]) Delete(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.items, id)
	return e.value, true
}

func (r *memorySessionRepository[T]) DeleteIdleSince(cutoff time.Time) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []T
	for id, e := range r.items {
		if e.lastSeen.Before(cutoff) {
			removed = append(removed, e.value)
			delete(r.items, id)
		}
	}
	return removed
}

func (r *memorySessionRepository[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
