package scheduler

import (
	"testing"
	"time"

	"github.com/qrng-team/qrng-engine/core"
	"github.com/qrng-team/qrng-engine/selector"
	"github.com/stretchr/testify/assert"
	"go.uber.org/dig"
)

func setupSystemWithScheduler(t *testing.T, e core.CircuitExecutor) *core.SystemComponents {
	t.Helper()
	c := dig.New()
	assert.Nil(t, c.Provide(func() core.CircuitExecutor { return e }))
	assert.Nil(t, c.Provide(func() core.ReadoutMitigator { return &core.UnimplementedMitigator{} }))
	assert.Nil(t, c.Provide(func() core.Scheduler { return &NormalScheduler{} }))
	assert.Nil(t, c.Provide(func() (selector.Strategy, error) { return selector.NewStrategy("mode") }))
	s := core.NewSystemComponents(c)
	assert.Nil(t, s.Setup(&core.Conf{Shots: 1024, MaxGroupWidth: 10, QueueMaxSize: 10}))
	assert.Nil(t, s.StartContainer())
	return s
}

func waitForResult(t *testing.T, s *core.SystemComponents) *core.RequestData {
	t.Helper()
	select {
	case rd := <-s.ResultChan:
		return rd
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
		return nil
	}
}

func TestSchedulerProcessesRequest(t *testing.T) {
	e := &core.FixedCountsExecutor{
		CountsByWidth: map[int]core.Counts{
			2: {"00": 100, "01": 824, "10": 50, "11": 50},
		},
	}
	s := setupSystemWithScheduler(t, e)
	defer s.TearDown()

	rd, err := core.NewRequestWithValidation(&core.RequestParam{
		NumPossibleOutcomes: 4,
		Shots:               1024,
		MaxGroupWidth:       10,
	})
	assert.Nil(t, err)

	err = s.Invoke(func(sc core.Scheduler) { sc.HandleRequest(rd) })
	assert.Nil(t, err)

	result := waitForResult(t, s)
	assert.Equal(t, core.SUCCEEDED, result.Status)
	assert.Equal(t, uint64(1), result.Result.Number)
	assert.Equal(t, "01", result.Result.Bitstring)
}

func TestSchedulerReportsBackendFailure(t *testing.T) {
	s := setupSystemWithScheduler(t, &core.FailingExecutor{})
	defer s.TearDown()

	rd, err := core.NewRequestWithValidation(&core.RequestParam{
		NumPossibleOutcomes: 100,
		Shots:               1024,
		MaxGroupWidth:       10,
	})
	assert.Nil(t, err)

	err = s.Invoke(func(sc core.Scheduler) { sc.HandleRequest(rd) })
	assert.Nil(t, err)

	result := waitForResult(t, s)
	assert.Equal(t, core.FAILED, result.Status)
	assert.NotEmpty(t, result.Result.Message)
}

func TestSchedulerProcessesInOrder(t *testing.T) {
	e := &core.FixedCountsExecutor{
		CountsByWidth: map[int]core.Counts{
			3: {"000": 100, "110": 924},
		},
	}
	s := setupSystemWithScheduler(t, e)
	defer s.TearDown()

	ids := []string{}
	for i := 0; i < 3; i++ {
		rd, err := core.NewRequestWithValidation(&core.RequestParam{
			NumPossibleOutcomes: 8,
			Shots:               1024,
			MaxGroupWidth:       10,
		})
		assert.Nil(t, err)
		ids = append(ids, rd.ID)
		assert.Nil(t, s.Invoke(func(sc core.Scheduler) { sc.HandleRequest(rd) }))
	}

	for i := 0; i < 3; i++ {
		result := waitForResult(t, s)
		assert.Equal(t, ids[i], result.ID)
		assert.Equal(t, core.SUCCEEDED, result.Status)
		assert.Equal(t, uint64(6), result.Result.Number)
	}
}

func TestSchedulerCancelsQueuedRequests(t *testing.T) {
	// no StartContainer, so requests stay queued until the cancel
	c := dig.New()
	assert.Nil(t, c.Provide(func() core.CircuitExecutor { return &core.UnimplementedExecutor{} }))
	assert.Nil(t, c.Provide(func() core.ReadoutMitigator { return &core.UnimplementedMitigator{} }))
	assert.Nil(t, c.Provide(func() core.Scheduler { return &NormalScheduler{} }))
	s := core.NewSystemComponents(c)
	assert.Nil(t, s.Setup(&core.Conf{Shots: 1024, MaxGroupWidth: 10, QueueMaxSize: 10}))
	defer s.TearDown()

	ids := []string{}
	for i := 0; i < 2; i++ {
		rd, err := core.NewRequestWithValidation(&core.RequestParam{
			NumPossibleOutcomes: 4,
			Shots:               1024,
			MaxGroupWidth:       10,
		})
		assert.Nil(t, err)
		ids = append(ids, rd.ID)
		assert.Nil(t, s.Invoke(func(sc core.Scheduler) { sc.HandleRequest(rd) }))
	}
	assert.Equal(t, 2, s.GetCurrentQueueSize())

	cancelled := make(chan int, 1)
	go func() {
		var count int
		_ = s.Invoke(func(sc core.Scheduler) { count = sc.CancelQueuedRequests() })
		cancelled <- count
	}()

	for i := 0; i < 2; i++ {
		result := waitForResult(t, s)
		assert.Equal(t, ids[i], result.ID)
		assert.Equal(t, core.CANCELLED, result.Status)
		assert.Equal(t, "cancelled before execution", result.Result.Message)
	}
	assert.Equal(t, 2, <-cancelled)
	assert.Equal(t, 0, s.GetCurrentQueueSize())
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := &NormalQueue{}
	assert.Nil(t, q.Setup(&core.Conf{QueueMaxSize: 1}))

	rd := core.NewRequestData()
	rd.ID = "first"
	assert.Nil(t, q.Enqueue(&requestInScheduler{requestData: rd}))
	assert.Equal(t, 1, q.GetLen())

	rd2 := core.NewRequestData()
	rd2.ID = "second"
	err := q.Enqueue(&requestInScheduler{requestData: rd2})
	assert.EqualError(t, err, "queue is full(1)")
}
