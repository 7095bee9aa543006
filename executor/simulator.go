package executor

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/qrng-team/qrng-engine/core"
	"go.uber.org/zap"
)

const SimulatorBackendName = "NoisySimulator"
const SimulatorProviderName = "LocalProvider"
const simulatorMaxQubits = 32
const simulatorMaxShots = 100000

// flip probabilities vary around the base value per physical qubit so a
// permuted layout actually changes which bias a logical qubit sees
const flipProbSpread = 0.5

// SimulatorExecutor measures a uniform-superposition circuit (a
// Hadamard wall over the group qubits) on a simulated backend with
// per-physical-qubit readout bias. The layout decides which physical
// qubit, and therefore which bias, serves each logical qubit.
type SimulatorExecutor struct {
	mu  sync.Mutex
	rng *rand.Rand

	readoutErrors []core.QubitReadoutError
	backendInfo   *core.BackendInfo
}

func (s *SimulatorExecutor) Setup(conf *core.Conf) error {
	zap.L().Debug("setting up simulator executor")
	seed := conf.SimulatorSeed
	flipProb := conf.ReadoutFlipProb
	if v, ok := core.GetComponentSetting("simulator"); ok {
		switch setting := v.(type) {
		case core.SimulatorSetting:
			if setting.Seed != 0 {
				seed = setting.Seed
			}
			flipProb = setting.ReadoutFlipProb
		case map[string]interface{}:
			if s, ok := setting["seed"].(int64); ok {
				seed = s
			}
			if p, ok := setting["readout_flip_prob"].(float64); ok {
				flipProb = p
			}
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if flipProb < 0 || flipProb >= 0.5 {
		return fmt.Errorf("readout flip probability(%g) must be in [0, 0.5)", flipProb)
	}
	s.rng = rand.New(rand.NewSource(seed))

	s.readoutErrors = make([]core.QubitReadoutError, simulatorMaxQubits)
	for q := range s.readoutErrors {
		s.readoutErrors[q] = core.QubitReadoutError{
			ProbMeas1Prep0: flipProb * (1 + flipProbSpread*(s.rng.Float64()*2-1)),
			ProbMeas0Prep1: flipProb * (1 + flipProbSpread*(s.rng.Float64()*2-1)),
		}
	}
	s.backendInfo = &core.BackendInfo{
		BackendName:   SimulatorBackendName,
		ProviderName:  SimulatorProviderName,
		Type:          "simulator",
		Status:        core.Available,
		MaxQubits:     simulatorMaxQubits,
		MaxShots:      simulatorMaxShots,
		ReadoutErrors: s.readoutErrors,
	}
	zap.L().Debug(fmt.Sprintf("simulator executor is ready/seed:%d/base flip prob:%g", seed, flipProb))
	return nil
}

func (s *SimulatorExecutor) Run(width int, layout core.Layout, shots int) (core.Counts, error) {
	if s.rng == nil {
		return nil, fmt.Errorf("%w: simulator executor is not set up", core.ErrorBackendExecution)
	}
	if width <= 0 || width > simulatorMaxQubits {
		return nil, fmt.Errorf("%w: width(%d) is out of the simulator range",
			core.ErrorBackendExecution, width)
	}
	if shots <= 0 || shots > simulatorMaxShots {
		return nil, fmt.Errorf("%w: shots(%d) is out of the simulator range",
			core.ErrorBackendExecution, shots)
	}
	if layout.Width() != width {
		return nil, fmt.Errorf("%w: layout width(%d) does not match circuit width(%d)",
			core.ErrorBackendExecution, layout.Width(), width)
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrorBackendExecution, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(core.Counts)
	bits := make([]byte, width)
	for shot := 0; shot < shots; shot++ {
		for logical := 0; logical < width; logical++ {
			re := s.readoutErrors[layout[logical]]
			ideal := s.rng.Intn(2)
			measured := ideal
			if ideal == 0 && s.rng.Float64() < re.ProbMeas1Prep0 {
				measured = 1
			} else if ideal == 1 && s.rng.Float64() < re.ProbMeas0Prep1 {
				measured = 0
			}
			// MSB-first: logical qubit 0 is the rightmost character
			bits[width-1-logical] = byte('0' + measured)
		}
		counts[string(bits)]++
	}
	zap.L().Debug(fmt.Sprintf("simulator run finished/width:%d/shots:%d/distinct outcomes:%d",
		width, shots, len(counts)))
	return counts, nil
}

func (s *SimulatorExecutor) GetBackendInfo() *core.BackendInfo {
	if s.backendInfo == nil {
		return &core.BackendInfo{Status: core.Unavailable}
	}
	return s.backendInfo
}
