package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qrng-team/qrng-engine/common"
	"github.com/qrng-team/qrng-engine/core"
	"go.uber.org/zap"
)

const queueLengthKeyInMetrics = "queue_length"
const backendStatusKeyInMetrics = "backend_status"

// QueueMetricsLogger periodically writes the request-queue length and
// backend status as JSON lines to a daily-rotated file.
type QueueMetricsLogger struct {
	interval time.Duration

	dl   *dailyLogger
	sc   *core.SystemComponents
	done chan struct{}
}

func NewQueueMetricsLogger(fileDir string, interval time.Duration) (*QueueMetricsLogger, error) {
	if err := common.IsDirWritable(fileDir); err != nil {
		return nil, fmt.Errorf("failed to write to %s: %w", fileDir, err)
	}
	dl := newDailyLogger(fileDir)
	slog.SetDefault(slog.New(slog.NewJSONHandler(dl, nil)))
	return &QueueMetricsLogger{
		interval: interval,
		dl:       dl,
		done:     make(chan struct{}),
	}, nil
}

func (m *QueueMetricsLogger) Start() {
	m.sc = core.GetSystemComponents()
	if m.sc == nil {
		zap.L().Error("system components are not set up. metrics logging is disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.log()
			case <-m.done:
				return
			}
		}
	}()
}

func (m *QueueMetricsLogger) log() {
	status := core.Unavailable
	if info := m.sc.GetBackendInfo(); info != nil {
		status = info.Status
	}
	slog.Info(
		"Metrics",
		slog.Int(queueLengthKeyInMetrics, m.sc.GetCurrentQueueSize()),
		slog.String(backendStatusKeyInMetrics, status.String()),
	)
}

func (m *QueueMetricsLogger) Stop() {
	close(m.done)
	if err := m.dl.Close(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to close metrics log/reason:%s", err))
	}
}

type dailyLogger struct {
	mu              sync.Mutex
	fileDir         string
	currentFileName string
	file            *os.File
}

func newDailyLogger(fileDir string) *dailyLogger {
	return &dailyLogger{
		fileDir: fileDir,
	}
}

func (dl *dailyLogger) Write(p []byte) (n int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	fileName := fmt.Sprintf("metrics-%s.log", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dl.fileDir, fileName)
	currentFilePath := filepath.Join(dl.fileDir, dl.currentFileName)

	if dl.file == nil || currentFilePath != filePath {
		if dl.file != nil {
			dl.file.Close()
		}
		var err error
		dl.file, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, err
		}
		dl.currentFileName = fileName
	}

	return dl.file.Write(p)
}

func (dl *dailyLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		return dl.file.Close()
	}
	return nil
}
