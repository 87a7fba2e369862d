package config

import "sort"

// Presets are named tuning profiles layered over DefaultConfig.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"dense": {
		DemoNodes: 200,
		Forces: ForceConfig{
			LinkDistance:    40,
			ChargeStrength:  -120,
			ChargeTheta:     DefaultChargeTheta,
			CollideStrength: 1.5,
			CollideMargin:   10,
			Quiescence:      DefaultQuiescence,
		},
		WarmupTicks: 300,
		FrameRate:   DefaultFrameRate,
		Zoom:        0.5,
	},
	"sparse": {
		DemoNodes: 25,
		Forces: ForceConfig{
			LinkDistance:    120,
			ChargeStrength:  -400,
			ChargeTheta:     DefaultChargeTheta,
			CollideStrength: DefaultCollideStrength,
			CollideMargin:   30,
			Quiescence:      DefaultQuiescence,
		},
		WarmupTicks: DefaultWarmupTicks,
		FrameRate:   DefaultFrameRate,
		Zoom:        1,
	},
	// frozen disables the warm start so restored snapshots display as
	// saved until the user drags something.
	"frozen": {
		DemoNodes: DefaultDemoNodes,
		Forces: ForceConfig{
			LinkDistance:    DefaultLinkDistance,
			ChargeStrength:  DefaultChargeStrength,
			ChargeTheta:     DefaultChargeTheta,
			CollideStrength: DefaultCollideStrength,
			CollideMargin:   DefaultCollideMargin,
			Quiescence:      0,
		},
		WarmupTicks: 0,
		FrameRate:   DefaultFrameRate,
		Zoom:        1,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	if out.DataDir == "" {
		out.DataDir = defaultDataDir()
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
