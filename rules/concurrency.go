//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupGo suggests sync.WaitGroup.Go over the Add/Done pair.
//
//	wg.Add(1)
//	go func() { defer wg.Done(); work() }()
//
// becomes
//
//	wg.Go(work)
func WaitGroupGo(m dsl.Matcher) {
	m.Match(`go func() { defer $wg.Done(); $*body }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report(`use $wg.Go(func() { ... })`).
		Suggest(`$wg.Go(func() { $body })`)

	m.Match(`$wg.Add(1)`).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report(`$wg.Go adds and marks done itself`)
}

// UnlockNotDeferred flags Lock followed by a bare Unlock on the next
// statement's path. Panics inside the section would keep the lock.
func UnlockNotDeferred(m dsl.Matcher) {
	m.Match(`$mu.Lock(); $stmt; $mu.Unlock()`).
		Where(m["mu"].Type.Is("sync.Mutex") || m["mu"].Type.Is("*sync.Mutex") ||
			m["mu"].Type.Is("sync.RWMutex") || m["mu"].Type.Is("*sync.RWMutex")).
		Report(`defer $mu.Unlock()`)
}
