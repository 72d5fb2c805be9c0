package store

import "sync"

// SubjectLocker serialises access per subject: many readers or one writer
// for the same subject, with different subjects fully independent.
// Entries are dropped once no goroutine holds or waits for them.
type SubjectLocker struct {
	mu    sync.Mutex
	locks map[string]*subjectLock
}

type subjectLock struct {
	rw   sync.RWMutex
	refs int
}

// NewSubjectLocker returns an empty locker.
func NewSubjectLocker() *SubjectLocker {
	return &SubjectLocker{locks: make(map[string]*subjectLock)}
}

// Lock takes the write lock for subject and returns its release func.
func (l *SubjectLocker) Lock(subject string) (unlock func()) {
	sl := l.acquire(subject)
	sl.rw.Lock()
	return l.releaser(subject, sl, sl.rw.Unlock)
}

// RLock takes the read lock for subject and returns its release func.
func (l *SubjectLocker) RLock(subject string) (unlock func()) {
	sl := l.acquire(subject)
	sl.rw.RLock()
	return l.releaser(subject, sl, sl.rw.RUnlock)
}

func (l *SubjectLocker) acquire(subject string) *subjectLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = make(map[string]*subjectLock)
	}
	sl, ok := l.locks[subject]
	if !ok {
		sl = &subjectLock{}
		l.locks[subject] = sl
	}
	sl.refs++
	return sl
}

func (l *SubjectLocker) releaser(subject string, sl *subjectLock, unlock func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			unlock()

			l.mu.Lock()
			defer l.mu.Unlock()
			sl.refs--
			if sl.refs == 0 {
				delete(l.locks, subject)
			}
		})
	}
}

// size reports the number of live entries.
func (l *SubjectLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
