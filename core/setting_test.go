package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSetting(t *testing.T) {
	ResetSetting()
	tomlString := `
[com.simulator]
seed = 12345
readout_flip_prob = 0.03
`
	err := globalSetting.parseSetting(tomlString)
	assert.Nil(t, err)

	v, ok := GetComponentSetting("simulator")
	assert.True(t, ok)
	m, ok := v.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, int64(12345), m["seed"])
	assert.Equal(t, 0.03, m["readout_flip_prob"])
}

func TestParseSettingBrokenToml(t *testing.T) {
	ResetSetting()
	err := globalSetting.parseSetting("[com.simulator\nseed = ")
	assert.NotNil(t, err)
}

func TestParseSettingFromPath(t *testing.T) {
	ResetSetting()
	dir := t.TempDir()
	path := filepath.Join(dir, "setting.toml")
	err := os.WriteFile(path, []byte("[com.simulator]\nseed = 7\n"), 0644)
	assert.Nil(t, err)

	assert.Nil(t, ParseSettingFromPath(path))
	_, ok := GetComponentSetting("simulator")
	assert.True(t, ok)
	assert.Equal(t, globalSetting, GetGlobalSetting())

	assert.NotNil(t, ParseSettingFromPath(filepath.Join(dir, "missing.toml")))
}

func TestGetComponentSettingUninitialized(t *testing.T) {
	globalSetting = nil
	defer ResetSetting()

	_, ok := GetComponentSetting("simulator")
	assert.False(t, ok)
}
