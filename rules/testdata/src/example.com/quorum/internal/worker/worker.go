package worker

import "sync"

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock() // want `defer c\.mu\.Unlock\(\)`
	c.n++
	c.mu.Unlock()
}

func (c *counter) add(k int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += k
}

func fanOut(jobs []func()) {
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1) // want `wg\.Go adds and marks done itself`
		go func() { // want `use wg\.Go`
			defer wg.Done()
			job()
		}()
	}
	wg.Wait()
}

func fanOutGo(jobs []func()) {
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Go(job)
	}
	wg.Wait()
}
