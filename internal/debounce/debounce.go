package debounce

import (
	"sync"
	"time"
)

// DefaultWait - стандартное окно дебаунса.
const DefaultWait = 300 * time.Millisecond

// Debouncer откладывает выполнение функции: из серии вызовов в пределах окна
// ожидания выполняется только последняя запланированная функция. Счётчик
// поколений гарантирует, что «опоздавший» таймер устаревшего вызова никогда
// не выполнится после более нового.
type Debouncer struct {
	mu    sync.Mutex
	wait  time.Duration
	timer *time.Timer
	gen   uint64
}

// New создаёт Debouncer с заданным окном ожидания.
func New(wait time.Duration) *Debouncer {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Debouncer{wait: wait}
}

// Do планирует выполнение fn через окно ожидания. Незапущенный предыдущий
// вызов отменяется.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		stale := gen != d.gen
		d.mu.Unlock()

		// Таймер мог сработать между Stop и перепланированием.
		if stale {
			return
		}
		fn()
	})
}

// Stop отменяет отложенный вызов, если он ещё не выполнился.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
