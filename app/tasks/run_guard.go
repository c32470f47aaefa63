package tasks

import "sync"

// RunGuard prevents overlapping runs of the same schedule. A run that cannot
// acquire the guard is skipped, not queued.
type RunGuard struct {
	mu      sync.Mutex
	running map[string]bool
}

func NewRunGuard() *RunGuard {
	return &RunGuard{
		running: make(map[string]bool),
	}
}

func (g *RunGuard) TryAcquire(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running[name] {
		return false
	}
	g.running[name] = true
	return true
}

func (g *RunGuard) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, name)
}
