package core

type Conf struct {
	Version            string  `long:"version" description:"version of qrng engine" env:"QRNG_ENGINE_VERSION"`
	DevMode            bool    `long:"dev-mode" description:"run in dev mode" env:"QRNG_ENGINE_DEV_MODE"`
	DisableStdoutLog   bool    `long:"disable-stdout-log" description:"do not log in standard output" env:"QRNG_ENGINE_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool    `long:"enable-file-log" description:"enable log in file" env:"QRNG_ENGINE_ENABLE_FILE_LOG"`
	LogDir             string  `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QRNG_ENGINE_LOG_DIR"`
	LogLevel           string  `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QRNG_ENGINE_LOG_LEVEL"`
	LogRotationMaxDays int     `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QRNG_ENGINE_LOG_ROTATION_MAX_DAYS"`
	Shots              int     `long:"shots" description:"shots per circuit execution" default:"1024" env:"QRNG_ENGINE_SHOTS"`
	MaxGroupWidth      int     `long:"max-group-width" description:"max qubits per circuit group" default:"10" env:"QRNG_ENGINE_MAX_GROUP_WIDTH"`
	SimulatorSeed      int64   `long:"simulator-seed" description:"seed of the simulator backend, 0 means time-based" env:"QRNG_ENGINE_SIMULATOR_SEED"`
	ReadoutFlipProb    float64 `long:"readout-flip-prob" description:"base readout flip probability of the simulator backend" default:"0.02" env:"QRNG_ENGINE_READOUT_FLIP_PROB"`
	QueueMaxSize       int     `long:"queue-max-size" description:"queue max size" default:"100" env:"QRNG_ENGINE_QUEUE_MAX_SIZE"`
	EnableMetricsLog   bool    `long:"enable-metrics-log" description:"enable queue metrics log in file" env:"QRNG_ENGINE_ENABLE_METRICS_LOG"`
	MetricsLogDir      string  `long:"metrics-log-dir" description:"queue metrics log file dir" default:"./shares/metrics" env:"QRNG_ENGINE_METRICS_LOG_DIR"`
	MetricsIntervalSec int     `long:"metrics-interval-sec" description:"queue metrics log interval in seconds" default:"60" env:"QRNG_ENGINE_METRICS_INTERVAL_SEC"`
	SettingPath        string  `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QRNG_ENGINE_SETTING_PATH"`
}
