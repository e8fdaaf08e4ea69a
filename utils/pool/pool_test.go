package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&PoolTestSuite{})

type PoolTestSuite struct{}

func (s *PoolTestSuite) TestPool(c *C) {
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	job := func(input string) {
		mu.Lock()
		seen[input] = true
		mu.Unlock()
	}
	p := NewPool(3, job)

	p.Run([]string{"a.wal", "b.wal", "c.wal", "d.wal", "e.wal"})

	c.Assert(len(seen), Equals, 5)
	c.Assert(seen["c.wal"], Equals, true)
}

func (s *PoolTestSuite) TestPoolLimitsConcurrency(c *C) {
	var running, maxRunning int32
	job := func(input string) {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}
	p := NewPool(2, job)

	p.Run([]string{"1", "2", "3", "4", "5", "6"})

	c.Assert(atomic.LoadInt32(&maxRunning) <= 2, Equals, true)
	c.Assert(atomic.LoadInt32(&maxRunning) >= 1, Equals, true)
}

func (s *PoolTestSuite) TestPoolWithoutInputs(c *C) {
	calls := 0
	p := NewPool(0, func(string) { calls++ })

	p.Run(nil)

	c.Assert(calls, Equals, 0)
}
