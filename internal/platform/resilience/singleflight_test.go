package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32
	release := make(chan struct{})

	const callers = 16
	results := make([]any, callers)
	var entered sync.WaitGroup
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		entered.Add(1)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			entered.Done()
			out, err, _ := flight.Do("token", func() (any, error) {
				executions.Add(1)
				<-release
				return "shared-value", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[idx] = out
		}(i)
	}

	// Let the goroutines pile up behind the first flight before releasing it.
	entered.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected exactly 1 execution, got %d", got)
	}
	for i, out := range results {
		if out != "shared-value" {
			t.Fatalf("caller %d got %v", i, out)
		}
	}
}

func TestSingleFlight_IndependentKeysRunSeparately(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32

	fn := func() (any, error) {
		executions.Add(1)
		return nil, nil
	}

	if _, _, shared := flight.Do("a", fn); shared {
		t.Fatalf("solo flight reported as shared")
	}
	flight.Do("b", fn)

	if got := executions.Load(); got != 2 {
		t.Fatalf("expected 2 executions for distinct keys, got %d", got)
	}
}
