package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/drape/config"
	"github.com/pthm-cable/drape/scene"
	"github.com/pthm-cable/drape/telemetry"
)

// Objective weights.
const (
	weightStretch = 100.0 // per unit of relative stretch
	weightKinetic = 1.0   // per joule left at the end
	weightDrop    = 10.0  // per metre off the target lowest point

	warmupWindows = 2 // skip first N windows
	unstable      = 1e6
)

// FitnessEvaluator runs headless scenes and scores how well the cloth holds
// its shape and settles.
type FitnessEvaluator struct {
	params     *ParamVector
	maxFrames  int32
	seeds      []int64
	baseConfig *config.Config
	targetMinY float64 // NaN disables the drop term

	mu          sync.Mutex
	lastStretch float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames int32, seeds []int64, baseCfg *config.Config, targetMinY float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxFrames:  maxFrames,
		seeds:      seeds,
		baseConfig: baseCfg,
		targetMinY: targetMinY,
	}
}

// LastStretch returns the mean stretch from the most recent evaluation.
func (fe *FitnessEvaluator) LastStretch() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStretch
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	stretch float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds vary the wind and run in parallel.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(x, s)
			results[idx] = fe.score(windows)
		}(i, seed)
	}
	wg.Wait()

	fitness := make([]float64, len(results))
	stretch := make([]float64, len(results))
	for i, r := range results {
		fitness[i] = r.fitness
		stretch[i] = r.stretch
	}

	fe.mu.Lock()
	fe.lastStretch = stat.Mean(stretch, nil)
	fe.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	s, err := scene.New(cfg, scene.Options{Seed: seed, StepsPerUpdate: 1})
	if err != nil {
		return nil
	}
	defer s.Close()

	var windows []telemetry.WindowStats
	s.SetStatsCallback(func(ws []telemetry.WindowStats) {
		windows = append(windows, ws...)
	})
	for s.Frame() < fe.maxFrames {
		s.UpdateHeadless()
	}
	return windows
}

// copyConfig creates a copy of the base config that runs can modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Cloths = slices.Clone(fe.baseConfig.Cloths)
	return &cfg
}

// score reduces a run to a scalar fitness: mean stretch after warmup, the
// kinetic energy left in the last window and the distance from the target
// lowest point. Non-finite stats count as a blown-up run.
func (fe *FitnessEvaluator) score(windows []telemetry.WindowStats) seedResult {
	if len(windows) <= warmupWindows {
		return seedResult{fitness: unstable}
	}
	valid := windows[warmupWindows:]

	stretch := make([]float64, 0, len(valid))
	for _, w := range valid {
		if !finite(w.StretchP90) || !finite(w.KineticEnd) || !finite(w.MinY) {
			return seedResult{fitness: unstable, stretch: math.Inf(1)}
		}
		stretch = append(stretch, w.StretchP90)
	}
	meanStretch := stat.Mean(stretch, nil)

	// Last window of each cloth
	lastByCloth := make(map[string]telemetry.WindowStats)
	for _, w := range valid {
		lastByCloth[w.Cloth] = w
	}
	var kinetic, drop float64
	for _, w := range lastByCloth {
		kinetic += w.KineticEnd
		if !math.IsNaN(fe.targetMinY) {
			drop += math.Abs(w.MinY - fe.targetMinY)
		}
	}

	return seedResult{
		fitness: weightStretch*meanStretch + weightKinetic*kinetic + weightDrop*drop,
		stretch: meanStretch,
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
