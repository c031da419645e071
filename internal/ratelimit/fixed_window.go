// Package ratelimit は呼び出し元ごとの固定窓カウンタ。
// 状態はプロセス内のみで、再起動でリセットされる。
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// テストから時刻を差し替えるための約束
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type window struct {
	start time.Time
	count int
}

// キー（ユーザーID/IP）ごとに固定窓で回数を数える
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	span    time.Duration
	clock   Clock
	windows map[string]*window
}

func NewFixedWindow(limit int, span time.Duration, clock Clock) *FixedWindow {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FixedWindow{
		limit:   limit,
		span:    span,
		clock:   clock,
		windows: make(map[string]*window),
	}
}

// Allow は1回分を消費する。拒否のときは再試行までの秒数を返す。
func (l *FixedWindow) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.span {
		// 窓の開始（または期限切れで張り直し）
		l.windows[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < l.limit {
		w.count++
		return true, 0
	}

	retryAfter := int(math.Ceil(l.span.Seconds() - now.Sub(w.start).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}
