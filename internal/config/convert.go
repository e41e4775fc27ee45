package config

import "github.com/danmuck/mlbridge/internal/foreign"

// BackendOptions maps the heap section onto backend factory options.
func BackendOptions(cfg Config) foreign.Options {
	return foreign.Options{
		InitialWords: cfg.Heap.InitialWords,
		Stress:       cfg.Heap.Stress,
	}
}
