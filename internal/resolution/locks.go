package resolution

import "sync"

// lockPool hands out one mutex per character identity, serializing the
// read-compute-write cycle for that character across concurrent
// resolutions. The pool map is guarded by its own lock, held only during
// create-or-fetch and never during a resolution body. Locks are cached for
// the pool's lifetime, which is tied to the owning engine.
type lockPool struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newLockPool() *lockPool {
	return &lockPool{locks: make(map[int64]*sync.Mutex)}
}

// get lazily creates-or-fetches the lock for a character.
func (p *lockPool) get(characterID int64) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[characterID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[characterID] = lock
	}
	return lock
}
