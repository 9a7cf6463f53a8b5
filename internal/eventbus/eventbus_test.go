package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ n int }
type pong struct{}

func TestDispatchByType(t *testing.T) {
	b := New()
	var got []int
	On(b, func(_ context.Context, p ping) { got = append(got, p.n) })
	On(b, func(_ context.Context, _ pong) { t.Fatal("pong handler called for ping") })

	Emit(context.Background(), b, ping{1})
	Emit(context.Background(), b, ping{2})
	assert.Equal(t, []int{1, 2}, got)
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	b := New()
	var first, second int
	unsubscribe := On(b, func(context.Context, ping) { first++ })
	On(b, func(context.Context, ping) { second++ })

	Emit(context.Background(), b, ping{})
	unsubscribe()
	unsubscribe()
	Emit(context.Background(), b, ping{})

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestNilBus(t *testing.T) {
	var b *Bus
	On(b, func(context.Context, ping) {})()
	Emit(context.Background(), b, ping{})
}

func TestGlobalBus(t *testing.T) {
	Use(New())
	defer Use(nil)

	var mu sync.Mutex
	count := 0
	defer Subscribe(func(context.Context, ping) {
		mu.Lock()
		count++
		mu.Unlock()
	})()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Publish(context.Background(), ping{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, count)

	Use(nil)
	Publish(context.Background(), ping{})
	assert.Equal(t, 8, count)
}
