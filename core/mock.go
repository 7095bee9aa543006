package core

import (
	"fmt"
	"sync"

	"go.uber.org/dig"
)

const MockMaxQubits int = 10
const MockMaxShots int = 10000

// UnimplementedExecutor returns the same fixed counts for every run.
// The counts are uniform over the group bitstrings so tests get a
// well-formed distribution without touching any backend.
type UnimplementedExecutor struct{}

func (u *UnimplementedExecutor) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedExecutor) Run(width int, layout Layout, shots int) (Counts, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrorBackendExecution, err.Error())
	}
	counts := make(Counts)
	size := 1 << uint(width)
	per := uint32(shots / size)
	for i := 0; i < size; i++ {
		counts[fmt.Sprintf("%0*b", width, i)] = per
	}
	return counts, nil
}

func (u *UnimplementedExecutor) GetBackendInfo() *BackendInfo {
	return &BackendInfo{
		BackendName:  "unimplementedBackend",
		ProviderName: "unimplementedProvider",
		Type:         "mock",
		Status:       Available,
		MaxQubits:    MockMaxQubits,
		MaxShots:     MockMaxShots,
	}
}

// FixedCountsExecutor replays counts prepared by a test, keyed by group
// width. Runs for a width with no prepared counts fail. Safe for the
// parallel per-group runs of a generation call.
type FixedCountsExecutor struct {
	CountsByWidth map[int]Counts

	mu         sync.Mutex
	RunLayouts []Layout
}

func (f *FixedCountsExecutor) Setup(*Conf) error {
	return nil
}

func (f *FixedCountsExecutor) Run(width int, layout Layout, shots int) (Counts, error) {
	f.mu.Lock()
	f.RunLayouts = append(f.RunLayouts, layout.Clone())
	f.mu.Unlock()
	counts, ok := f.CountsByWidth[width]
	if !ok {
		return nil, fmt.Errorf("%w: no fixed counts for width %d", ErrorBackendExecution, width)
	}
	clone := make(Counts, len(counts))
	for k, v := range counts {
		clone[k] = v
	}
	return clone, nil
}

func (f *FixedCountsExecutor) GetBackendInfo() *BackendInfo {
	return &BackendInfo{
		BackendName:  "fixedCountsBackend",
		ProviderName: "unimplementedProvider",
		Type:         "mock",
		Status:       Available,
		MaxQubits:    MockMaxQubits,
		MaxShots:     MockMaxShots,
	}
}

// FailingExecutor fails every run, for error-path tests.
type FailingExecutor struct{}

func (f *FailingExecutor) Setup(*Conf) error {
	return nil
}

func (f *FailingExecutor) Run(width int, layout Layout, shots int) (Counts, error) {
	return nil, fmt.Errorf("%w: mock backend is gone", ErrorBackendExecution)
}

func (f *FailingExecutor) GetBackendInfo() *BackendInfo {
	return &BackendInfo{
		BackendName:  "failingBackend",
		ProviderName: "unimplementedProvider",
		Type:         "mock",
		Status:       Unavailable,
		MaxQubits:    MockMaxQubits,
		MaxShots:     MockMaxShots,
	}
}

// UnimplementedMitigator converts counts to relative frequencies and
// applies no correction.
type UnimplementedMitigator struct{}

func (u *UnimplementedMitigator) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedMitigator) Correct(counts Counts, width int, layout Layout) (QuasiProbs, error) {
	total := counts.TotalShots()
	if total == 0 {
		return QuasiProbs{}, nil
	}
	quasis := make(QuasiProbs, len(counts))
	for k, v := range counts {
		quasis[k] = float64(v) / float64(total)
	}
	return quasis, nil
}

type UnimplementedScheduler struct{}

func (u *UnimplementedScheduler) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedScheduler) Start() error {
	return nil
}

func (u *UnimplementedScheduler) HandleRequest(*RequestData) {
	return
}

func (u *UnimplementedScheduler) CancelQueuedRequests() int {
	return 0
}

func (u *UnimplementedScheduler) GetCurrentQueueSize() int {
	return 0
}

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	_ = c.Provide(func() CircuitExecutor { return &UnimplementedExecutor{} })
	_ = c.Provide(func() ReadoutMitigator { return &UnimplementedMitigator{} })
	_ = c.Provide(func() Scheduler { return &UnimplementedScheduler{} })
	s := NewSystemComponents(c)
	if err := s.Setup(&Conf{}); err != nil {
		panic(err)
	}
	return s
}

func SCWithExecutorContainer(e CircuitExecutor, m ReadoutMitigator) *SystemComponents {
	c := dig.New()
	_ = c.Provide(func() CircuitExecutor { return e })
	_ = c.Provide(func() ReadoutMitigator { return m })
	_ = c.Provide(func() Scheduler { return &UnimplementedScheduler{} })
	s := NewSystemComponents(c)
	if err := s.Setup(&Conf{}); err != nil {
		panic(err)
	}
	return s
}
