package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"

	"github.com/qrng-team/qrng-engine/core"
	"github.com/qrng-team/qrng-engine/executor"
	"github.com/qrng-team/qrng-engine/log"
	"github.com/qrng-team/qrng-engine/mitig"
	"github.com/qrng-team/qrng-engine/scheduler"
	"github.com/qrng-team/qrng-engine/selector"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var engine *Engine

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	engine = &Engine{}
	setParser(engine)
}

type Engine struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	Executor  string `long:"executor" description:"executor-type" default:"simulator" choice:"simulator" choice:"mock" env:"QRNG_ENGINE_EXECUTOR_TYPE"`
	Mitigator string `long:"mitigator" description:"mitigator-type" default:"tensored" choice:"tensored" choice:"frequency" env:"QRNG_ENGINE_MITIGATOR_TYPE"`
	Strategy  string `long:"strategy" description:"selection-strategy" default:"mode" choice:"mode" choice:"weighted" env:"QRNG_ENGINE_SELECTION_STRATEGY"`
}

func setParser(engine *Engine) {
	parser = flags.NewParser(engine, flags.Default)
	parser.ShortDescription = "qrng engine"
	parser.LongDescription = "quantum random number generation engine with readout and gate error mitigation."
	parser.AddCommand("generate", "generate a random number",
		"generate one random number through the scheduler", newGenerateCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to parse flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (e *Engine) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = nil
	err = c.Provide(func() (core.CircuitExecutor, error) {
		switch e.DIContainerParameters.Executor {
		case "simulator":
			return &executor.SimulatorExecutor{}, nil
		case "mock":
			return &core.UnimplementedExecutor{}, nil
		default:
			return &executor.SimulatorExecutor{}, fmt.Errorf("%s is an unknown executor", e.DIContainerParameters.Executor)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.ReadoutMitigator, error) {
		switch e.DIContainerParameters.Mitigator {
		case "tensored":
			return &mitig.TensoredInverseMitigator{}, nil
		case "frequency":
			return &mitig.FrequencyMitigator{}, nil
		default:
			return &mitig.FrequencyMitigator{}, fmt.Errorf("%s is an unknown mitigator", e.DIContainerParameters.Mitigator)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.Scheduler { return &scheduler.NormalScheduler{} })
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (selector.Strategy, error) {
		return selector.NewStrategy(e.DIContainerParameters.Strategy)
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			level)
		cores = append(cores, debugCore)
	}
	zcore := zapcore.NewTee(cores...)
	return zap.New(zcore, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "qrngd-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("failed to set up logger, because %s\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	return logger
}

func main() {
	parse()
}

type generateCmd struct {
	Outcomes        int     `long:"outcomes" description:"number of possible outcomes" required:"true"`
	GateMitigation  bool    `long:"gate-mitigation" description:"spread gate error over permuted layouts"`
	MitigationLevel float64 `long:"mitigation-level" description:"mitigation level in [0,1]" default:"1"`
	Timeout         int     `long:"timeout" description:"generation timeout in seconds" default:"300"`
}

func newGenerateCmd() *generateCmd {
	return &generateCmd{}
}

func (c *generateCmd) Execute(args []string) error {
	logger := setZap(engine.Conf)
	defer logger.Sync()
	core.SetVersion(versionByBuildFlag)

	core.ResetSetting()
	if err := core.ParseSettingFromPath(engine.Conf.SettingPath); err != nil {
		zap.L().Debug(fmt.Sprintf("no setting file, using flags only/reason:%s", err))
	}

	con, err := engine.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to provide DI container/reason:%s", err.Error()))
		return err
	}
	s := core.NewSystemComponents(con)
	if err := s.Setup(engine.Conf); err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup system components/reason:%s", err.Error()))
		return err
	}
	defer s.TearDown()
	if err := s.StartContainer(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to start scheduler/reason:%s", err.Error()))
		return err
	}

	if engine.Conf.EnableMetricsLog {
		ml, err := log.NewQueueMetricsLogger(
			engine.Conf.MetricsLogDir,
			time.Duration(engine.Conf.MetricsIntervalSec)*time.Second)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to set up metrics log/reason:%s", err.Error()))
			return err
		}
		ml.Start()
		defer ml.Stop()
	}

	rd, err := core.NewRequestWithValidation(&core.RequestParam{
		NumPossibleOutcomes: c.Outcomes,
		Shots:               engine.Conf.Shots,
		MaxGroupWidth:       engine.Conf.MaxGroupWidth,
		GateMitigation:      c.GateMitigation,
		MitigationLevel:     c.MitigationLevel,
	})
	if err != nil {
		return err
	}

	err = s.Invoke(func(sc core.Scheduler) {
		sc.HandleRequest(rd)
	})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to hand request to scheduler/reason:%s", err.Error()))
		return err
	}

	var g run.Group
	done := make(chan struct{})
	g.Add(func() error {
		select {
		case result := <-s.ResultChan:
			if result.Status != core.SUCCEEDED {
				return fmt.Errorf("generation failed: %s", result.Result.Message)
			}
			zap.L().Info(fmt.Sprintf("generated number for request(%s)", result.ID))
			fmt.Println(result.Result.Number)
			return nil
		case <-done:
			return nil
		}
	}, func(error) {
		close(done)
	})
	g.Add(func() error {
		select {
		case <-time.After(time.Duration(c.Timeout) * time.Second):
			return fmt.Errorf("generation timed out after %d seconds", c.Timeout)
		case <-done:
			return nil
		}
	}, func(error) {})
	return g.Run()
}
