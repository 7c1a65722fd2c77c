package config

var Presets = map[string]map[string]*Config{
	"decay": {
		"slow": {
			Model: "decay", Method: "dopri5", Duration: 10.0, SaveCount: 101,
			NTraj: 200, Seed: 42, Smart: true, NMaxClick: DefaultNMaxClick,
			Params: ParamsConfig{Gamma: 0.3},
		},
		"fast": {
			Model: "decay", Method: "dopri5", Duration: 3.0, SaveCount: 61,
			NTraj: 200, Seed: 42, Smart: true, NMaxClick: DefaultNMaxClick,
			Params: ParamsConfig{Gamma: 2.0},
		},
	},
	"rabi": {
		"resonant": {
			Model: "rabi", Method: "dopri5", Duration: 20.0, SaveCount: 201,
			NTraj: 300, Seed: 42, NMaxClick: DefaultNMaxClick,
			Params: ParamsConfig{Gamma: 0.2, Omega: 2.0, Delta: 0},
		},
		"detuned": {
			Model: "rabi", Method: "dopri5", Duration: 20.0, SaveCount: 201,
			NTraj: 300, Seed: 42, NMaxClick: DefaultNMaxClick,
			Params: ParamsConfig{Gamma: 0.2, Omega: 2.0, Delta: 1.5},
		},
	},
	"cavity": {
		"fock": {
			Model: "cavity", Method: "dopri5", Duration: 8.0, SaveCount: 101,
			NTraj: 200, Seed: 42, Smart: true, NMaxClick: DefaultNMaxClick,
			Params: ParamsConfig{Kappa: 0.5, Dim: 10, Level: 5},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil when it does not
// exist.
func GetPreset(model, name string) *Config {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := group[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the preset names of a model.
func ListPresets(model string) []string {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
