package pool

import (
	"sync"
)

// Pool is a basic work pool that runs one job per input
// with at most a fixed number of goroutines at once.
type Pool struct {
	workerQ chan struct{}
	f       func(input string)
	wg      sync.WaitGroup
}

// NewPool creates a new worker pool with a goroutine limit
// and a job function to execute on the incoming inputs.
// A limit below 1 is treated as 1.
func NewPool(routines int, job func(input string)) *Pool {
	if routines < 1 {
		routines = 1
	}
	q := make(chan struct{}, routines)
	for i := 0; i < routines; i++ {
		q <- struct{}{}
	}
	return &Pool{
		workerQ: q,
		f:       job,
	}
}

// Work is a blocking call that starts the
// pool working on an input channel until it is closed.
func (p *Pool) Work(c <-chan string) {
	for v := range c {
		<-p.workerQ
		p.wg.Add(1)
		go func(input string) {
			defer p.wg.Done()
			p.f(input)
			p.workerQ <- struct{}{}
		}(v)
	}
}

// Wait waits until the pool is finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Run feeds every input to the pool and waits for all jobs to finish.
func (p *Pool) Run(inputs []string) {
	c := make(chan string)
	go func() {
		defer close(c)
		for _, in := range inputs {
			c <- in
		}
	}()
	p.Work(c)
	p.Wait()
}
