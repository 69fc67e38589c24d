package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{}
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, 5, NewPool(ctx, 5).workers)
	assert.Equal(t, 1, NewPool(ctx, 0).workers)
	assert.Equal(t, 1, NewPool(ctx, -1).workers)
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10
	go func() {
		for i := 0; i < count; i++ {
			pool.Submit(&mockJob{executed: &executed})
		}
		pool.Close()
	}()

	var results []Result
	for r := range pool.Results() {
		results = append(results, r)
	}

	assert.Len(t, results, count)
	assert.Equal(t, int32(count), atomic.LoadInt32(&executed))
}

type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	j.start()
	time.Sleep(j.duration)
	j.end()
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 4
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current, maxConcurrent, completed int32
	var mu sync.Mutex
	totalJobs := 20

	go func() {
		for i := 0; i < totalJobs; i++ {
			pool.Submit(&concurrencyJob{
				start: func() {
					curr := atomic.AddInt32(&current, 1)
					mu.Lock()
					if curr > maxConcurrent {
						maxConcurrent = curr
					}
					mu.Unlock()
				},
				end: func() {
					atomic.AddInt32(&current, -1)
					atomic.AddInt32(&completed, 1)
				},
				duration: 5 * time.Millisecond,
			})
		}
		pool.Close()
	}()

	for range pool.Results() {
	}

	assert.Equal(t, int32(totalJobs), atomic.LoadInt32(&completed))
	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxConcurrent, int32(workers))
}

func TestPool_CloseIsIdempotent(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	require.True(t, pool.Submit(&mockJob{shouldErr: true}))
	require.True(t, pool.Submit(&mockJob{}))

	pool.Close()
	assert.NotPanics(t, pool.Close)

	failed := 0
	count := 0
	for res := range pool.Results() {
		count++
		if res.GetError() != nil {
			failed++
		}
	}
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, failed)
	assert.NotPanics(t, pool.Close)
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	require.True(t, pool.Submit(&mockJob{duration: time.Minute}))
	cancel()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&mockJob{})
	}()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after cancel")
	}

	pool.Close()
	for range pool.Results() {
	}
}
