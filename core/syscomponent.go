package core

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var systemComponents *SystemComponents

type ResultChan chan *RequestData

type Channels struct {
	ResultChan
	// when more channels are needed, add here
}

func NewChannels() *Channels {
	return &Channels{
		ResultChan: make(ResultChan),
	}
}

func (c *Channels) Close() {
	close(c.ResultChan)
}

func (c *Channels) Check() error {
	if c.ResultChan == nil {
		return fmt.Errorf("ResultChan is nil")
	}
	return nil
}

type BackendStatus int

const (
	Available BackendStatus = iota
	Unavailable
)

func (bs BackendStatus) String() string {
	switch bs {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// QubitReadoutError holds the readout assignment errors of one physical
// qubit of the backend.
type QubitReadoutError struct {
	ProbMeas1Prep0 float64 `json:"prob_meas1_prep0"`
	ProbMeas0Prep1 float64 `json:"prob_meas0_prep1"`
}

type BackendInfo struct {
	BackendName   string              `json:"backend_name"`
	ProviderName  string              `json:"provider_name"`
	Type          string              `json:"type"`
	Status        BackendStatus       `json:"status"`
	MaxQubits     int                 `json:"max_qubits"`
	MaxShots      int                 `json:"max_shots"`
	ReadoutErrors []QubitReadoutError `json:"readout_errors"`
}

// CircuitExecutor runs the uniform-superposition measurement circuit for
// one group. The layout assigns logical qubits to physical positions so
// the same logical circuit can be spread over different hardware
// placements. Returned counts are keyed by MSB-first logical bitstrings
// of the group width and sum to the shot count.
type CircuitExecutor interface {
	Setup(*Conf) error
	Run(width int, layout Layout, shots int) (Counts, error)
	GetBackendInfo() *BackendInfo
}

// ReadoutMitigator corrects raw counts for measurement-readout error and
// returns a quasi-probability distribution over the same bitstring keys.
// Values may be slightly negative; implementations must not clamp them.
type ReadoutMitigator interface {
	Setup(*Conf) error
	Correct(counts Counts, width int, layout Layout) (QuasiProbs, error)
}

// Scheduler owns the request queue. CancelQueuedRequests discards every
// request still waiting in the queue; a request already dispatched to
// the generator runs to completion.
type Scheduler interface {
	Setup(*Conf) error
	Start() error
	HandleRequest(*RequestData)
	CancelQueuedRequests() int
	GetCurrentQueueSize() int
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	var err error
	zap.L().Debug("Setting up executor")
	err = s.Invoke(
		func(e CircuitExecutor) error {
			return e.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up mitigator")
	err = s.Invoke(
		func(m ReadoutMitigator) error {
			return m.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up scheduler")
	err = s.Invoke(
		func(sc Scheduler) error {
			return sc.Setup(conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() {
	s.Channels.Close()
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(sc Scheduler) error {
			return sc.Start()
		})
}

func (s *SystemComponents) GetBackendInfo() *BackendInfo {
	var backendInfo *BackendInfo
	s.Invoke(
		func(e CircuitExecutor) error {
			backendInfo = e.GetBackendInfo()
			return nil
		})
	return backendInfo
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	s.Invoke(
		func(sc Scheduler) {
			size = sc.GetCurrentQueueSize()
		})
	return size
}
