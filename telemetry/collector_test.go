package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/drape/cloth"
)

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(3, 0.5)

	for frame := int32(1); frame <= 3; frame++ {
		c.Record("a", cloth.Stats{KineticEnergy: float64(frame), MaxStretch: 0.1 * float64(frame), Pairs: 10, Contacts: 2, MinY: -float32(frame)})
		c.Record("b", cloth.Stats{KineticEnergy: 1})
		if frame < 3 && c.ShouldFlush(frame) {
			t.Fatalf("ShouldFlush(%d) = true before window end", frame)
		}
	}
	if !c.ShouldFlush(3) {
		t.Fatal("ShouldFlush(3) = false at window end")
	}

	stats := c.Flush(3)
	if len(stats) != 2 || stats[0].Cloth != "a" || stats[1].Cloth != "b" {
		t.Fatalf("Flush = %+v, want cloths a then b", stats)
	}

	a := stats[0]
	if a.KineticMean != 2 || a.KineticMax != 3 || a.KineticEnd != 3 {
		t.Errorf("kinetic = %v/%v/%v, want 2/3/3", a.KineticMean, a.KineticMax, a.KineticEnd)
	}
	if math.Abs(a.StretchMax-0.3) > 1e-9 {
		t.Errorf("StretchMax = %v, want 0.3", a.StretchMax)
	}
	if a.ContactsTotal != 6 || a.PairsMean != 10 || a.MinY != -3 {
		t.Errorf("contacts/pairs/minY = %d/%v/%v", a.ContactsTotal, a.PairsMean, a.MinY)
	}
	if a.SimTimeSec != 1.5 {
		t.Errorf("SimTimeSec = %v, want 1.5", a.SimTimeSec)
	}

	// Next window starts empty.
	if next := c.Flush(6); len(next) != 0 {
		t.Errorf("empty window produced %d rows", len(next))
	}
	if c.ShouldFlush(8) {
		t.Error("window start not advanced by Flush")
	}
}
