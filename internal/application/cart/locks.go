package cart

import "sync"

// ownerLocks serializa las mutaciones por ownerKey dentro del proceso. La
// escritura sigue protegida por versión en el almacenamiento; el lock evita
// que escritores del mismo proceso quemen reintentos entre sí.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *ownerLocks) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// Lock toma el lock de la clave y devuelve la función que lo libera.
func (l *ownerLocks) Lock(key string) func() {
	m := l.lockFor(key)
	m.Lock()
	return m.Unlock
}

// LockPair toma los locks de dos claves en el orden en que se pasan (la
// migración pasa siempre guest antes que user, orden global fijo que evita
// deadlocks con una hipotética operación inversa concurrente).
func (l *ownerLocks) LockPair(first, second string) func() {
	if first == second {
		return l.Lock(first)
	}
	m1 := l.lockFor(first)
	m2 := l.lockFor(second)
	m1.Lock()
	m2.Lock()
	return func() {
		m2.Unlock()
		m1.Unlock()
	}
}
