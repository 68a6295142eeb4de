package util

import (
	"errors"
	"sync"
	"time"
)

// Lazy 保存一个稍后才会到达的值。Take在值到达前阻塞。
type Lazy interface {
	Store(v interface{})
	Take(timeout time.Duration) (v interface{}, err error)
}

////

var ErrTakeTimeout = errors.New("take value timeout")

func NewLazy() Lazy {
	return &lazy{
		ready: make(chan struct{}),
	}
}

type lazy struct {
	mutex sync.RWMutex
	once  sync.Once
	ready chan struct{}
	value interface{}
}

// Store 保存值，后到的值覆盖先前的值
func (l *lazy) Store(v interface{}) {
	l.mutex.Lock()
	l.value = v
	l.mutex.Unlock()
	l.once.Do(func() {
		close(l.ready)
	})
}

func (l *lazy) Take(timeout time.Duration) (v interface{}, err error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil, ErrTakeTimeout

	case <-l.ready:
		l.mutex.RLock()
		defer l.mutex.RUnlock()
		return l.value, nil
	}
}
