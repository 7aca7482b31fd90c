package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWorkerPool(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 3, 3},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -2, runtime.GOMAXPROCS(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWorkerPool(tt.workers)
			defer p.Close()

			if got := p.Workers(); got != tt.want {
				t.Errorf("Workers() = %d, want %d", got, tt.want)
			}
			if !p.IsRunning() {
				t.Error("new pool is not running")
			}
		})
	}
}

func TestExecuteAllFillsEverySlot(t *testing.T) {
	p := NewWorkerPool(4)

	// more jobs than the queue holds
	const n = 100
	out := make([]int, n)
	work := make([]func(), n)
	for i := range work {
		work[i] = func() { out[i] = i * i }
	}
	work[7] = nil

	if !p.ExecuteAll(work) {
		t.Fatal("ExecuteAll() = false on a running pool")
	}
	for i, v := range out {
		want := i * i
		if i == 7 {
			want = 0
		}
		if v != want {
			t.Fatalf("out[%d] = %d, want %d", i, v, want)
		}
	}
	// Executed is counted once the worker returns
	p.Close()
	if got := p.Executed(); got != n {
		t.Errorf("Executed() = %d, want %d", got, n)
	}
}

func TestExecuteAllEmpty(t *testing.T) {
	p := NewWorkerPool(2)
	if !p.ExecuteAll(nil) {
		t.Error("ExecuteAll(nil) = false on a running pool")
	}
	p.Close()
	if p.ExecuteAll(nil) {
		t.Error("ExecuteAll(nil) = true on a closed pool")
	}
}

func TestCloseWaitsForBatch(t *testing.T) {
	p := NewWorkerPool(1)

	started := make(chan struct{})
	var ran atomic.Int32
	work := make([]func(), 8)
	for i := range work {
		work[i] = func() {
			if i == 0 {
				close(started)
			}
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}
	}

	done := make(chan bool)
	go func() { done <- p.ExecuteAll(work) }()
	<-started
	p.Close()
	p.Close()

	if got := ran.Load(); got != 8 {
		t.Errorf("ran %d jobs of the batch before Close returned, want 8", got)
	}
	if !<-done {
		t.Error("ExecuteAll() = false for a batch started before Close")
	}
	if p.IsRunning() {
		t.Error("closed pool is running")
	}
	if p.ExecuteAll([]func(){func() { t.Error("job ran on a closed pool") }}) {
		t.Error("ExecuteAll() after Close = true")
	}
}

func TestConcurrentBatches(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	var total atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work := make([]func(), 25)
			for i := range work {
				work[i] = func() { total.Add(1) }
			}
			p.ExecuteAll(work)
		}()
	}
	wg.Wait()

	if got := total.Load(); got != 200 {
		t.Errorf("ran %d jobs, want 200", got)
	}
}

func BenchmarkExecuteAll(b *testing.B) {
	p := NewWorkerPool(0)
	defer p.Close()

	work := make([]func(), 64)
	for i := range work {
		work[i] = func() {}
	}

	b.ResetTimer()
	for b.Loop() {
		p.ExecuteAll(work)
	}
}
