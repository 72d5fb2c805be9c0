package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubjectLocker_WritersExclude(t *testing.T) {
	t.Parallel()

	l := NewSubjectLocker()
	var active, maxActive atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("Biology")
			defer unlock()

			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.Equal(t, 0, l.size())
}

func TestSubjectLocker_ReadersShare(t *testing.T) {
	t.Parallel()

	l := NewSubjectLocker()
	r1 := l.RLock("Biology")
	acquired := make(chan struct{})
	go func() {
		r2 := l.RLock("Biology")
		close(acquired)
		r2()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked")
	}
	r1()
}

func TestSubjectLocker_SubjectsIndependent(t *testing.T) {
	t.Parallel()

	l := NewSubjectLocker()
	unlockA := l.Lock("A")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlockB := l.Lock("B")
		close(acquired)
		unlockB()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on B blocked behind A")
	}
}

func TestSubjectLocker_WriterWaitsForReader(t *testing.T) {
	t.Parallel()

	l := NewSubjectLocker()
	runlock := l.RLock("A")

	acquired := make(chan struct{})
	go func() {
		unlock := l.Lock("A")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired while reader held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	runlock()
	runlock() // releasing twice is a no-op

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired")
	}
}

func TestSubjectLocker_ZeroValue(t *testing.T) {
	t.Parallel()

	var l SubjectLocker
	unlock := l.Lock("x")
	assert.Equal(t, 1, l.size())
	unlock()
	assert.Equal(t, 0, l.size())
}
