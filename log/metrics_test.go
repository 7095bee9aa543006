package log

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyLoggerWrite(t *testing.T) {
	dir := t.TempDir()
	dl := newDailyLogger(dir)
	defer dl.Close()

	n, err := dl.Write([]byte("first\n"))
	assert.Nil(t, err)
	assert.Equal(t, 6, n)
	_, err = dl.Write([]byte("second\n"))
	assert.Nil(t, err)

	fileName := fmt.Sprintf("metrics-%s.log", time.Now().Format("2006-01-02"))
	contents, err := os.ReadFile(filepath.Join(dir, fileName))
	assert.Nil(t, err)
	assert.Equal(t, "first\nsecond\n", string(contents))
}

func TestNewQueueMetricsLoggerUnwritableDir(t *testing.T) {
	_, err := NewQueueMetricsLogger("/no/such/dir", time.Second)
	assert.NotNil(t, err)
}
