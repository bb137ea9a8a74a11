package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[[]byte]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, err, _ := g.Do("/sport_events/sr:sport_event:1/summary.xml", func() ([]byte, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return []byte("<summary/>"), nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if string(got) != "<summary/>" {
				t.Errorf("unexpected shared value: %q", got)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_ReleasesKeyAfterPanic(t *testing.T) {
	var g SingleFlight[int]

	func() {
		defer func() { _ = recover() }()
		_, _, _ = g.Do("k", func() (int, error) { panic("boom") })
	}()

	got, err, shared := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil || got != 7 || shared {
		t.Fatalf("unexpected result after panic: got=%d err=%v shared=%v", got, err, shared)
	}
}
