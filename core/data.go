package core

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

type Status int
type Counts map[string]uint32
type QuasiProbs map[string]float64

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	READY Status = iota // Accepted but has never been dispatched.
	RUNNING
	SUCCEEDED
	FAILED
	CANCELLED
)

func (s Status) String() string {
	switch s {
	case READY:
		return "ready"
	case RUNNING:
		return "running"
	case SUCCEEDED:
		return "succeeded"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "ready":
		return READY, nil
	case "running":
		return RUNNING, nil
	case "succeeded":
		return SUCCEEDED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

func (c Counts) TotalShots() uint64 {
	var total uint64
	for _, v := range c {
		total += uint64(v)
	}
	return total
}

func (q QuasiProbs) String() string {
	st, err := jsonIter.Marshal(q)
	if err != nil {
		zap.L().Error("Failed to marshal core.QuasiProbs")
		return ""
	}
	return string(st)
}

// TotalMass sums all quasi-probabilities. Slightly negative entries
// are summed as-is, never clamped.
func (q QuasiProbs) TotalMass() float64 {
	var total float64
	for _, v := range q {
		total += v
	}
	return total
}

func (q QuasiProbs) Clone() QuasiProbs {
	clone := make(QuasiProbs, len(q))
	for k, v := range q {
		clone[k] = v
	}
	return clone
}

// BitWidthFor returns the number of bits needed to address
// numPossibleOutcomes values, i.e. ceil(log2(n)).
func BitWidthFor(numPossibleOutcomes int) (int, error) {
	if numPossibleOutcomes < 2 {
		return 0, fmt.Errorf("%w: num possible outcomes(%d) must be at least 2",
			ErrorInvalidInput, numPossibleOutcomes)
	}
	width := 0
	for (uint64(1) << uint(width)) < uint64(numPossibleOutcomes) {
		width++
	}
	return width, nil
}

// BoundBitstring returns numPossibleOutcomes formatted as a fixed-width
// binary string, the upper bound used to filter selectable outcomes.
func BoundBitstring(numPossibleOutcomes, width int) string {
	return fmt.Sprintf("%0*b", width, numPossibleOutcomes)
}

// BitstringToUint converts an MSB-first binary string to an unsigned integer.
func BitstringToUint(bitstring string) (uint64, error) {
	if bitstring == "" {
		return 0, fmt.Errorf("empty bitstring")
	}
	var value uint64
	for _, c := range bitstring {
		switch c {
		case '0':
			value = value << 1
		case '1':
			value = value<<1 | 1
		default:
			return 0, fmt.Errorf("invalid character %q in bitstring %s", c, bitstring)
		}
	}
	return value, nil
}

type Result struct {
	Number        uint64        `json:"number"`
	Bitstring     string        `json:"bitstring"`
	TotalMass     float64       `json:"total_mass"`
	Message       string        `json:"message"`
	ExecutionTime time.Duration `json:"execution_time"`
}

func NewResult() *Result {
	return &Result{}
}

func (r *Result) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.Result")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

type RequestData struct {
	ID                  string
	Status              Status
	NumPossibleOutcomes int
	Shots               int
	MaxGroupWidth       int
	GateMitigation      bool
	MitigationLevel     float64
	Result              *Result
	Created             strfmt.DateTime
	Ended               strfmt.DateTime
}

func NewRequestData() *RequestData {
	return &RequestData{
		Result:  NewResult(),
		Created: strfmt.DateTime(time.Now()),
	}
}

func (rd *RequestData) Clone() *RequestData {
	c := deepcopy.Copy(rd).(*RequestData)
	c.Created = *rd.Created.DeepCopy()
	c.Ended = *rd.Ended.DeepCopy()
	return c
}

func SetFailureWithError(rd *RequestData, err error) (msg string) {
	msg = err.Error()
	rd.Result.Message = msg
	rd.Status = FAILED
	rd.Ended = strfmt.DateTime(time.Now())
	return msg
}
