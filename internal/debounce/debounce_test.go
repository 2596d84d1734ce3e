package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := New(30 * time.Millisecond)
	defer d.Stop()

	var calls int32
	var last int32

	// Серия быстрых вызовов в пределах окна ожидания
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Do(func() {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("ожидался один вызов, получили %d", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Fatalf("должна выполниться последняя функция, получили %d", got)
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var calls int32

	d.Do(func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(60 * time.Millisecond)

	d.Do(func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("две отдельные серии должны дать два вызова, получили %d", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := New(20 * time.Millisecond)

	var calls int32
	d.Do(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("после Stop вызовов быть не должно, получили %d", got)
	}
}
