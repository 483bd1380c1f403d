package difficulty

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(DefaultParams())
	if e.Difficulty() != 1.0 {
		t.Errorf("fresh engine difficulty = %v, want 1.0", e.Difficulty())
	}
	if e.Spike() || e.Recovery() {
		t.Error("fresh engine must not start in spike or recovery")
	}
	if e.WindowCount() != 0 {
		t.Errorf("fresh engine window count = %d, want 0", e.WindowCount())
	}
}

func TestSpikeAtExactlyThreeLosses(t *testing.T) {
	e := NewEngine(DefaultParams())

	e.RecordResult(false)
	e.RecordResult(false)
	if e.Spike() {
		t.Fatal("spike set after only two losses")
	}

	ch := e.RecordResult(false)
	if !e.Spike() {
		t.Fatal("spike not set after three consecutive losses")
	}
	if !ch.SpikeTriggered {
		t.Error("third loss did not report SpikeTriggered")
	}

	// Each loss drifts down 0.05 (win rate 0 < low watermark) and the
	// spike itself steps down 0.15.
	want := 1.0 - 3*0.05 - 0.15
	if !almostEqual(e.Difficulty(), want) {
		t.Errorf("difficulty after spike = %v, want %v", e.Difficulty(), want)
	}
}

func TestSpikeDoesNotRetriggerWhileActive(t *testing.T) {
	e := NewEngine(DefaultParams())
	for i := 0; i < 3; i++ {
		e.RecordResult(false)
	}
	before := e.Difficulty()
	ch := e.RecordResult(false)
	if ch.SpikeTriggered {
		t.Error("fourth consecutive loss re-reported SpikeTriggered")
	}
	// Only drift applies while the spike is already active.
	if !almostEqual(e.Difficulty(), before-0.05) {
		t.Errorf("difficulty = %v, want %v", e.Difficulty(), before-0.05)
	}
}

func TestWinClearsSpikeAndArmsRecovery(t *testing.T) {
	e := NewEngine(DefaultParams())
	for i := 0; i < 3; i++ {
		e.RecordResult(false)
	}

	ch := e.RecordResult(true)
	if e.Spike() {
		t.Error("win did not clear spike")
	}
	if !ch.SpikeCleared {
		t.Error("clearing win did not report SpikeCleared")
	}
	if e.Recovery() {
		t.Error("recovery set after a single win")
	}

	e.RecordResult(true)
	ch = e.RecordResult(true)
	if !e.Recovery() {
		t.Error("recovery not set after three consecutive wins out of a spike")
	}
	if !ch.RecoveryTriggered {
		t.Error("completing win did not report RecoveryTriggered")
	}
}

func TestSpikeDisabledLeavesDriftOnly(t *testing.T) {
	p := DefaultParams()
	p.SpikeEnabled = false
	e := NewEngine(p)

	var ch Change
	for i := 0; i < 5; i++ {
		ch = e.RecordResult(false)
	}
	if e.Spike() || ch.SpikeTriggered {
		t.Error("spike triggered with the transition disabled")
	}
	// Only the watermark drift moves the scalar: five losses at rate 0.
	if !almostEqual(e.Difficulty(), 1.0-5*0.05) {
		t.Errorf("difficulty = %v, want drift-only %v", e.Difficulty(), 1.0-5*0.05)
	}
}

func TestRecoveryDisabledLeavesDriftOnly(t *testing.T) {
	p := DefaultParams()
	p.RecoveryEnabled = false
	e := NewEngine(p)

	for i := 0; i < 3; i++ {
		e.RecordResult(false)
	}
	if !e.Spike() {
		t.Fatal("setup: spike should still trigger")
	}

	var ch Change
	for i := 0; i < 4; i++ {
		ch = e.RecordResult(true)
	}
	if e.Recovery() || ch.RecoveryTriggered {
		t.Error("recovery triggered with the transition disabled")
	}
}

func TestRecoveryRequiresPriorSpike(t *testing.T) {
	e := NewEngine(DefaultParams())
	for i := 0; i < 5; i++ {
		e.RecordResult(true)
	}
	if e.Recovery() {
		t.Error("recovery set without a preceding spike")
	}
}

func TestLossDuringRecoveryTrackingResetsIt(t *testing.T) {
	e := NewEngine(DefaultParams())
	for i := 0; i < 3; i++ {
		e.RecordResult(false)
	}
	e.RecordResult(true)
	e.RecordResult(true)
	e.RecordResult(false) // breaks the run before the threshold
	e.RecordResult(true)
	e.RecordResult(true)
	ch := e.RecordResult(true)
	if ch.RecoveryTriggered {
		t.Error("recovery completed from a win run that started after the tracking reset")
	}
}

func TestDriftWatermarks(t *testing.T) {
	p := DefaultParams()
	e := NewEngine(p)

	// All wins: rate 1.0 > 0.7, drifts up each record.
	e.RecordResult(true)
	if !almostEqual(e.Difficulty(), 1.05) {
		t.Errorf("difficulty after one win = %v, want 1.05", e.Difficulty())
	}
	e.RecordResult(true)
	if !almostEqual(e.Difficulty(), 1.10) {
		t.Errorf("difficulty after two wins = %v, want 1.10", e.Difficulty())
	}
}

func TestDriftWatermarksAreStrict(t *testing.T) {
	// Build a window of [L,L,W,W,W]. The last two records see win rates
	// of 0.5 and 0.6, between the watermarks, so neither drifts.
	p := DefaultParams()
	p.WindowSize = 5
	e := NewEngine(p)
	e.RecordResult(false)
	e.RecordResult(false)
	e.RecordResult(true)

	before := e.Difficulty()
	e.RecordResult(true)
	e.RecordResult(true)
	if !almostEqual(e.Difficulty(), before) {
		t.Errorf("difficulty drifted inside the watermark band: %v -> %v", before, e.Difficulty())
	}
	if !almostEqual(e.WinRate(), 0.6) {
		t.Errorf("win rate = %v, want 0.6", e.WinRate())
	}
}

func TestClampBounds(t *testing.T) {
	e := NewEngine(DefaultParams())
	for i := 0; i < 100; i++ {
		e.RecordResult(false)
	}
	if e.Difficulty() != 0.3 {
		t.Errorf("difficulty floor = %v, want 0.3", e.Difficulty())
	}

	e.ResetStats()
	for i := 0; i < 100; i++ {
		e.RecordResult(true)
	}
	if e.Difficulty() != 2.0 {
		t.Errorf("difficulty ceiling = %v, want 2.0", e.Difficulty())
	}
}

func TestWindowEvictionScenario(t *testing.T) {
	// Window size 5 fed W,W,L,L,L,W,W: the window ends as [L,L,L,W,W],
	// win rate 0.4, spike triggered on the fifth record and cleared on
	// the sixth.
	p := DefaultParams()
	p.WindowSize = 5
	e := NewEngine(p)

	outcomes := []bool{true, true, false, false, false, true, true}
	spikeSeen := false
	clearSeen := false
	for _, o := range outcomes {
		ch := e.RecordResult(o)
		if ch.SpikeTriggered {
			spikeSeen = true
		}
		if ch.SpikeCleared {
			clearSeen = true
		}
	}

	if e.WindowCount() != 5 {
		t.Errorf("window count = %d, want 5", e.WindowCount())
	}
	if !almostEqual(e.WinRate(), 0.4) {
		t.Errorf("win rate = %v, want 0.4", e.WinRate())
	}
	if !spikeSeen {
		t.Error("spike never triggered over the scenario")
	}
	if !clearSeen {
		t.Error("spike never cleared over the scenario")
	}
	if e.Spike() {
		t.Error("spike still active at scenario end")
	}
}

func TestResetStats(t *testing.T) {
	e := NewEngine(DefaultParams())
	for i := 0; i < 4; i++ {
		e.RecordResult(false)
	}
	e.ResetStats()

	if e.Difficulty() != 1.0 {
		t.Errorf("difficulty after reset = %v, want 1.0", e.Difficulty())
	}
	if e.WindowCount() != 0 || e.Spike() || e.Recovery() {
		t.Error("reset did not clear window and flags")
	}
	if e.ConsecutiveLosses() != 0 || e.ConsecutiveWins() != 0 {
		t.Error("reset did not clear streak counters")
	}
}
