package core

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/qrng-team/qrng-engine/common"
	"go.uber.org/zap"
)

type SimulatorSetting struct {
	Seed            int64   `toml:"seed"`
	ReadoutFlipProb float64 `toml:"readout_flip_prob"`
}

func NewSimulatorSetting() SimulatorSetting {
	return SimulatorSetting{
		Seed:            0,
		ReadoutFlipProb: 0.02,
	}
}

var globalSetting *Setting

type Setting struct {
	ComponentSetting map[string]interface{} `toml:"com,omitempty"`
}

func ResetSetting() {
	globalSetting = &Setting{
		ComponentSetting: make(map[string]interface{}),
	}
	return
}

func RegisterSetting(settingName string, settingVal interface{}) {
	globalSetting.ComponentSetting[settingName] = settingVal
}

func ParseSettingFromPath(settingsPath string) error {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return err
	}
	return globalSetting.parseSetting(tomlString)
}

func GetGlobalSetting() *Setting {
	return globalSetting
}

func GetComponentSetting(name string) (interface{}, bool) {
	if globalSetting == nil {
		zap.L().Error("Setting is not initialized")
		return nil, false
	}
	val, ok := globalSetting.ComponentSetting[name]
	return val, ok
}

func (s *Setting) parseSetting(tomlString string) error {
	_, err := toml.Decode(tomlString, s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	zap.L().Debug(fmt.Sprintf("Setting is %v", s.ComponentSetting))
	return nil
}
