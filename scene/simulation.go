package scene

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/drape/telemetry"
)

// UpdateHeadless advances StepsPerUpdate frames.
func (s *Scene) UpdateHeadless() {
	for i := 0; i < s.stepsPerUpdate; i++ {
		s.Step()
	}
}

// Run calls UpdateHeadless until ctx is done or, when maxFrames > 0, the
// frame count reaches maxFrames. It returns ctx.Err() on cancellation.
func (s *Scene) Run(ctx context.Context, maxFrames int32) error {
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("simulation interrupted", "frame", s.frame)
			return err
		}
		s.UpdateHeadless()
		if maxFrames > 0 && s.frame >= maxFrames {
			slog.Info("max frames reached", "frame", s.frame)
			return nil
		}
	}
}

// Step advances every unpaused cloth by one frame, then records telemetry
// and writes a snapshot when one is due.
func (s *Scene) Step() {
	cfg := s.cfg
	dt := cfg.Derived.DT32
	subDT := cfg.Derived.SubDT32

	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseWind)
	s.gatherActive()

	s.perfCollector.StartPhase(telemetry.PhaseSpatialHash)
	for _, a := range s.active {
		a.cloth.PreIntegration(dt)
	}

	for range cfg.Simulation.Substeps {
		s.perfCollector.StartPhase(telemetry.PhasePreSolve)
		for _, a := range s.active {
			a.cloth.PreSolve(subDT, a.accel)
		}
		s.perfCollector.StartPhase(telemetry.PhaseSolve)
		for _, a := range s.active {
			a.cloth.Solve(subDT)
		}
		s.perfCollector.StartPhase(telemetry.PhasePostSolve)
		for _, a := range s.active {
			a.cloth.PostSolve(subDT)
		}
	}

	s.perfCollector.StartPhase(telemetry.PhaseNormals)
	for _, a := range s.active {
		a.cloth.UpdateVertexNormals()
	}

	s.frame++
	s.simTime += float64(dt)

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	for _, a := range s.active {
		st := a.cloth.Stats()
		s.last[a.name] = st
		s.collector.Record(a.name, st)
	}
	s.flushTelemetry()

	s.perfCollector.EndTick()

	if s.snapshotDue() {
		if _, err := s.SaveSnapshot(); err != nil {
			slog.Error("failed to save snapshot", "frame", s.frame, "error", err)
		}
	}
}

// gatherActive collects the unpaused cloths and the acceleration each feels
// this frame: gravity plus the wind scaled by its response.
func (s *Scene) gatherActive() {
	s.active = s.active[:0]
	wind := s.wind.At(s.simTime)

	query := s.clothFilter.Query()
	for query.Next() {
		body, _, label, resp := query.Get()
		if s.pausedMap.Has(query.Entity()) {
			continue
		}
		a := activeCloth{name: label.Name, cloth: body.Cloth, accel: s.gravity}
		for i := range a.accel {
			a.accel[i] += resp.Scale * wind[i]
		}
		s.active = append(s.active, a)
	}
}

func (s *Scene) snapshotDue() bool {
	n := s.cfg.Snapshot.EveryN
	return s.snapshotDir != "" && n > 0 && s.frame%int32(n) == 0
}
