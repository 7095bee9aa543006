package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	assert.Nil(t, os.WriteFile(path, []byte("hello"), 0644))

	contents, err := ReadFile(path)
	assert.Nil(t, err)
	assert.Equal(t, "hello", contents)

	_, err = ReadFile(filepath.Join(dir, "missing.txt"))
	assert.NotNil(t, err)
}

func TestReadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setting.toml")
	assert.Nil(t, os.WriteFile(path, []byte("[com]\n"), 0644))

	contents, err := ReadSettingsFile(path)
	assert.Nil(t, err)
	assert.Equal(t, "[com]\n", contents)

	_, err = ReadSettingsFile(filepath.Join(dir, "missing.toml"))
	assert.NotNil(t, err)
}

func TestIsDirWritable(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, IsDirWritable(dir))

	assert.NotNil(t, IsDirWritable(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "plain.txt")
	assert.Nil(t, os.WriteFile(file, []byte("x"), 0644))
	assert.NotNil(t, IsDirWritable(file))
}
