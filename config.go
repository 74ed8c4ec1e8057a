package main

import (
	"fmt"
	"image/color"
	"io"
	"math/rand"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKernelSize   = 3
	DefaultThreshold    = 0.4
	DefaultBoundarySize = 2
	DefaultIterations   = 100
	DefaultStep         = 0.1

	// Canny hysteresis thresholds expressed as fractions of 255
	DefaultThreshLow  = 200.0 / 255
	DefaultThreshHigh = 220.0 / 255

	SolverSpectral  = "spectral"
	SolverIterative = "iterative"
)

type CropConfig struct {
	Threshold    float64 `yaml:"threshold" validate:"gte=0,lte=1"`
	BoundarySize int     `yaml:"boundary_size" validate:"gte=0"`
}

type SolverConfig struct {
	Method       string  `yaml:"method" validate:"oneof=spectral iterative"`
	Iterations   int     `yaml:"iterations" validate:"gt=0"`
	Step         float64 `yaml:"step" validate:"gt=0"`
	BoundaryZero bool    `yaml:"boundary_zero"`
	Seed         int64   `yaml:"seed"`
}

type DetectConfig struct {
	ThreshLow  float64 `yaml:"thresh_low" validate:"gte=0"`
	ThreshHigh float64 `yaml:"thresh_high" validate:"gtfield=ThreshLow"`
	BoxColor   []uint8 `yaml:"box_color" validate:"len=3"`
	Thickness  int     `yaml:"thickness" validate:"gt=0"`
}

type AppConfig struct {
	Debug      bool         `yaml:"debug"`
	Info       bool         `yaml:"info"`
	Human      bool         `yaml:"human"`
	LogFile    string       `yaml:"log_file"`
	KernelSize int          `yaml:"kernel_size" validate:"gt=0,lte=31,odd"`
	Workers    int          `yaml:"workers" validate:"gte=0"`
	Crop       CropConfig   `yaml:"crop"`
	Solver     SolverConfig `yaml:"solver"`
	Detect     DetectConfig `yaml:"detect"`
}

// DefaultConfig returns the configuration used for any key the config file
// leaves out.
func DefaultConfig() AppConfig {
	return AppConfig{
		Info:       true,
		KernelSize: DefaultKernelSize,
		Crop: CropConfig{
			Threshold:    DefaultThreshold,
			BoundarySize: DefaultBoundarySize,
		},
		Solver: SolverConfig{
			Method:       SolverSpectral,
			Iterations:   DefaultIterations,
			Step:         DefaultStep,
			BoundaryZero: true,
			Seed:         1,
		},
		Detect: DetectConfig{
			ThreshLow:  DefaultThreshLow,
			ThreshHigh: DefaultThreshHigh,
			BoxColor:   []uint8{0, 0, 255},
			Thickness:  1,
		},
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig and validates it.
func LoadConfig(filename string) (AppConfig, error) {
	configFile, err := os.ReadFile(filename)
	if err != nil {
		return AppConfig{}, err
	}
	return ParseConfig(configFile)
}

func ParseConfig(data []byte) (AppConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}

	if err := newValidator().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: %v: %w", err, ErrInvalidArgument)
	}
	return cfg, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 1
	})
	return v
}

// SetupLogging configures the global zerolog logger from cfg.
func SetupLogging(cfg AppConfig, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	if cfg.Info {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if cfg.Debug || debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var out io.Writer = os.Stderr
	if cfg.Human {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	log.Logger = log.Output(out)
}

func (cfg AppConfig) Estimator() Estimator {
	return Estimator{
		Diff:       SobelDifferentiator{},
		KernelSize: cfg.KernelSize,
		Workers:    cfg.Workers,
	}
}

// PoissonSolver builds the configured reconstruction strategy.
func (cfg AppConfig) PoissonSolver() PoissonSolver {
	if cfg.Solver.Method == SolverIterative {
		return &IterativeSolver{
			Diff:         SobelDifferentiator{},
			Rand:         rand.New(rand.NewSource(cfg.Solver.Seed)),
			KernelSize:   cfg.KernelSize,
			Iterations:   cfg.Solver.Iterations,
			Step:         cfg.Solver.Step,
			BoundaryZero: cfg.Solver.BoundaryZero,
		}
	}
	return SpectralSolver{}
}

func (cfg AppConfig) Locator() Locator {
	c := cfg.Detect.BoxColor
	return Locator{
		Edges:      CannyEdgeDetector{},
		ThreshLow:  cfg.Detect.ThreshLow,
		ThreshHigh: cfg.Detect.ThreshHigh,
		Color:      color.RGBA{R: c[0], G: c[1], B: c[2], A: 255},
		Thickness:  cfg.Detect.Thickness,
	}
}
