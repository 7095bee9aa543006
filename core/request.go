package core

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RequestParam struct {
	RequestID           string
	NumPossibleOutcomes int
	Shots               int
	MaxGroupWidth       int
	GateMitigation      bool
	MitigationLevel     float64
}

func NewRequestWithValidation(p *RequestParam) (*RequestData, error) {
	if p.RequestID == "" {
		p.RequestID = uuid.NewString()
	}
	if err := validateRequestParam(p); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate request param. Reason:%s", err.Error()))
		return nil, err
	}
	rd := NewRequestData()
	rd.ID = p.RequestID
	rd.Status = READY
	rd.NumPossibleOutcomes = p.NumPossibleOutcomes
	rd.Shots = p.Shots
	rd.MaxGroupWidth = p.MaxGroupWidth
	rd.GateMitigation = p.GateMitigation
	rd.MitigationLevel = p.MitigationLevel
	return rd, nil
}

func validateRequestParam(p *RequestParam) (err error) {
	err = nil
	if p.NumPossibleOutcomes < 2 {
		msg := fmt.Sprintf("num possible outcomes(%d) must be at least 2", p.NumPossibleOutcomes)
		zap.L().Info(msg + fmt.Sprintf("/requestID:%s", p.RequestID))
		return fmt.Errorf("%w: %s", ErrorInvalidInput, msg)
	}
	if p.MitigationLevel < 0 || p.MitigationLevel > 1 {
		msg := fmt.Sprintf("mitigation level(%g) must be in [0,1]", p.MitigationLevel)
		zap.L().Info(msg + fmt.Sprintf("/requestID:%s", p.RequestID))
		return fmt.Errorf("%w: %s", ErrorInvalidInput, msg)
	}
	if p.Shots <= 0 {
		msg := fmt.Sprintf("shots(%d) must be greater than 0", p.Shots)
		zap.L().Info(msg + fmt.Sprintf("/requestID:%s", p.RequestID))
		return fmt.Errorf("%w: %s", ErrorInvalidInput, msg)
	}
	if p.MaxGroupWidth <= 0 {
		msg := fmt.Sprintf("max group width(%d) must be greater than 0", p.MaxGroupWidth)
		zap.L().Info(msg + fmt.Sprintf("/requestID:%s", p.RequestID))
		return fmt.Errorf("%w: %s", ErrorInvalidInput, msg)
	}
	s := GetSystemComponents()
	if s == nil {
		// no running system, nothing backend-specific to check
		return
	}
	bi := s.GetBackendInfo()
	if bi == nil {
		return
	}
	if p.Shots > bi.MaxShots {
		msg := fmt.Sprintf("shots(%d) is over the limit(%d)", p.Shots, bi.MaxShots)
		zap.L().Info(msg + fmt.Sprintf("/requestID:%s", p.RequestID))
		return fmt.Errorf("%w: %s", ErrorInvalidInput, msg)
	}
	if p.MaxGroupWidth > bi.MaxQubits {
		msg := fmt.Sprintf("max group width(%d) is over the backend qubits(%d)",
			p.MaxGroupWidth, bi.MaxQubits)
		zap.L().Info(msg + fmt.Sprintf("/requestID:%s", p.RequestID))
		return fmt.Errorf("%w: %s", ErrorInvalidInput, msg)
	}
	return
}
