// Package config loads solver runs from yaml files and maps a small set
// of built-in physical models onto solve problems.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/qtraj"
	"github.com/san-kum/qtraj/method"
	"github.com/san-kum/qtraj/operator"
	"github.com/san-kum/qtraj/prng"
)

const (
	DefaultDuration  = 10.0
	DefaultSaveCount = 101
	DefaultNTraj     = 100
	DefaultGamma     = 1.0
	DefaultOmega     = 2.0
	DefaultKappa     = 0.5
	DefaultDim       = 10
	DefaultNMaxClick = 10000
)

type Config struct {
	Model     string       `yaml:"model"`
	Method    string       `yaml:"method"`
	Dt        float64      `yaml:"dt"`
	Rtol      float64      `yaml:"rtol"`
	Atol      float64      `yaml:"atol"`
	Duration  float64      `yaml:"duration"`
	SaveCount int          `yaml:"save_count"`
	NTraj     int          `yaml:"ntraj"`
	Seed      uint64       `yaml:"seed"`
	Smart     bool         `yaml:"smart_sampling"`
	NMaxClick int          `yaml:"nmax_click"`
	Params    ParamsConfig `yaml:"params"`
}

type ParamsConfig struct {
	Gamma float64 `yaml:"gamma"`
	Omega float64 `yaml:"omega"`
	Delta float64 `yaml:"delta"`
	Kappa float64 `yaml:"kappa"`
	Dim   int     `yaml:"dim"`
	Level int     `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     "decay",
		Method:    "dopri5",
		Duration:  DefaultDuration,
		SaveCount: DefaultSaveCount,
		NTraj:     DefaultNTraj,
		Seed:      42,
		Smart:     true,
		NMaxClick: DefaultNMaxClick,
		Params: ParamsConfig{
			Gamma: DefaultGamma,
			Omega: DefaultOmega,
			Kappa: DefaultKappa,
			Dim:   DefaultDim,
			Level: 1,
		},
	}
}

// Load reads a yaml config on top of the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) noClick() (method.NoClickMethod, error) {
	switch c.Method {
	case "euler":
		if c.Dt <= 0 {
			return nil, fmt.Errorf("config: euler requires dt > 0")
		}
		return method.Euler{Dt: c.Dt}, nil
	case "rk4":
		if c.Dt <= 0 {
			return nil, fmt.Errorf("config: rk4 requires dt > 0")
		}
		return method.RK4{Dt: c.Dt}, nil
	case "dopri5", "":
		m := method.NewDopri5()
		if c.Rtol > 0 {
			m.Rtol = c.Rtol
		}
		if c.Atol > 0 {
			m.Atol = c.Atol
		}
		return m, nil
	default:
		return nil, fmt.Errorf("config: unknown method %q", c.Method)
	}
}

// Build assembles the solve problem for the configured model.
func (c *Config) Build() (qtraj.Problem, error) {
	nc, err := c.noClick()
	if err != nil {
		return qtraj.Problem{}, err
	}
	ev := method.DefaultEvent()
	ev.NoClick = nc
	ev.SmartSampling = c.Smart

	var (
		h    *mat.CDense
		ls   []*mat.CDense
		psi0 []complex128
		obs  []*mat.CDense
	)
	switch c.Model {
	case "decay":
		h = mat.NewCDense(2, 2, nil)
		ls = []*mat.CDense{scaled(sigmaMinus(), math.Sqrt(c.Params.Gamma))}
		psi0 = []complex128{1, 0}
		obs = []*mat.CDense{sigmaZ()}
	case "rabi":
		h = addScaled(scaled(sigmaX(), c.Params.Omega/2), sigmaZ(), c.Params.Delta/2)
		ls = []*mat.CDense{scaled(sigmaMinus(), math.Sqrt(c.Params.Gamma))}
		psi0 = []complex128{0, 1}
		obs = []*mat.CDense{sigmaZ()}
	case "cavity":
		n := c.Params.Dim
		if n < 2 {
			return qtraj.Problem{}, fmt.Errorf("config: cavity requires dim >= 2, got %d", n)
		}
		if c.Params.Level < 0 || c.Params.Level >= n {
			return qtraj.Problem{}, fmt.Errorf("config: cavity level %d outside [0, %d)", c.Params.Level, n)
		}
		h = scaled(number(n), c.Params.Delta)
		ls = []*mat.CDense{scaled(annihilation(n), math.Sqrt(c.Params.Kappa))}
		psi0 = make([]complex128, n)
		psi0[c.Params.Level] = 1
		obs = []*mat.CDense{number(n)}
	default:
		return qtraj.Problem{}, fmt.Errorf("config: unknown model %q", c.Model)
	}

	if c.SaveCount < 2 {
		return qtraj.Problem{}, fmt.Errorf("config: save_count must be at least 2, got %d", c.SaveCount)
	}
	if c.Duration <= 0 {
		return qtraj.Problem{}, fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.NTraj < 1 {
		return qtraj.Problem{}, fmt.Errorf("config: ntraj must be at least 1, got %d", c.NTraj)
	}

	times := make([]float64, c.SaveCount)
	for i := range times {
		times[i] = c.Duration * float64(i) / float64(c.SaveCount-1)
	}

	jumpOps := make([]operator.Operator, len(ls))
	for i, l := range ls {
		jumpOps[i] = operator.Constant(l)
	}

	opts := qtraj.DefaultOptions()
	if c.NMaxClick > 0 {
		opts.NMaxClick = c.NMaxClick
	}

	return qtraj.Problem{
		H:           operator.Constant(h),
		JumpOps:     jumpOps,
		Psi0:        operator.Ket(psi0),
		SaveTimes:   times,
		Keys:        prng.NewKey(c.Seed).Split(c.NTraj),
		Observables: obs,
		Method:      ev,
		Options:     opts,
	}, nil
}
