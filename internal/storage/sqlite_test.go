package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	attempts := []Attempt{
		{LevelID: "yard-1", Won: true, Score: 320, MaxCombo: 3, EndDifficulty: 1.1, Duration: 95.0},
		{LevelID: "yard-1", Won: false, Score: 140, MaxCombo: 2, EndDifficulty: 0.9, NearMiss: true, Duration: 120.5},
		{LevelID: "rush-belt", Won: false, Score: 80, EndDifficulty: 0.7, Duration: 60.2},
	}
	for _, a := range attempts {
		if _, err := store.SaveAttempt(a); err != nil {
			t.Fatalf("SaveAttempt() failed: %v", err)
		}
	}

	recent, err := store.RecentAttempts("yard-1", 10)
	if err != nil {
		t.Fatalf("RecentAttempts() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(recent))
	}

	// Newest first
	if recent[0].Score != 140 || !recent[0].NearMiss {
		t.Errorf("Newest attempt = %+v, want the near-miss loss", recent[0])
	}
	if recent[1].Score != 320 || !recent[1].Won {
		t.Errorf("Older attempt = %+v, want the win", recent[1])
	}
	// Attempts track elapsed sim time at tick granularity, so the stored
	// duration keeps its fractional part.
	if recent[0].Duration != 120.5 || recent[1].Duration != 95.0 {
		t.Errorf("Durations = %v, %v, want 120.5 and 95.0", recent[0].Duration, recent[1].Duration)
	}
}

func TestStoreRecentAttemptsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveAttempt(Attempt{LevelID: "test", Score: (i + 1) * 100})
	}

	recent, err := store.RecentAttempts("test", 3)
	if err != nil {
		t.Fatalf("RecentAttempts() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Expected 3 attempts with limit, got %d", len(recent))
	}
	// Newest first: 500, 400, 300
	if recent[0].Score != 500 || recent[1].Score != 400 || recent[2].Score != 300 {
		t.Errorf("Attempts not in expected order: %v", recent)
	}
}

func TestStoreWinRate(t *testing.T) {
	store := openTestStore(t)

	// No attempts yet
	rate, count, err := store.WinRate("yard-1", 20)
	if err != nil {
		t.Fatalf("WinRate() failed: %v", err)
	}
	if rate != 0 || count != 0 {
		t.Errorf("Empty win rate = %v over %d, want 0 over 0", rate, count)
	}

	outcomes := []bool{true, true, false, false, false}
	for _, won := range outcomes {
		store.SaveAttempt(Attempt{LevelID: "yard-1", Won: won})
	}

	rate, count, err = store.WinRate("yard-1", 20)
	if err != nil {
		t.Fatalf("WinRate() failed: %v", err)
	}
	if count != 5 || rate != 0.4 {
		t.Errorf("Win rate = %v over %d, want 0.4 over 5", rate, count)
	}

	// Window restricts to the most recent attempts: last 3 are losses.
	rate, count, err = store.WinRate("yard-1", 3)
	if err != nil {
		t.Fatalf("WinRate() failed: %v", err)
	}
	if count != 3 || rate != 0 {
		t.Errorf("Windowed win rate = %v over %d, want 0 over 3", rate, count)
	}
}

func TestStoreBestScore(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestScore("yard-1")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected best score of 0 for empty level, got %d", best)
	}

	store.SaveAttempt(Attempt{LevelID: "yard-1", Score: 100})
	store.SaveAttempt(Attempt{LevelID: "yard-1", Score: 300})
	store.SaveAttempt(Attempt{LevelID: "yard-1", Score: 200})

	best, err = store.BestScore("yard-1")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 300 {
		t.Errorf("Expected best score of 300, got %d", best)
	}
}

func TestStoreClearAttempts(t *testing.T) {
	store := openTestStore(t)

	store.SaveAttempt(Attempt{LevelID: "yard-1", Score: 100})
	store.SaveAttempt(Attempt{LevelID: "yard-1", Score: 200})
	store.SaveAttempt(Attempt{LevelID: "rush-belt", Score: 300})

	if err := store.ClearAttempts("yard-1"); err != nil {
		t.Fatalf("ClearAttempts() failed: %v", err)
	}

	cleared, _ := store.RecentAttempts("yard-1", 10)
	if len(cleared) != 0 {
		t.Errorf("Expected 0 attempts after clear, got %d", len(cleared))
	}

	kept, _ := store.RecentAttempts("rush-belt", 10)
	if len(kept) != 1 {
		t.Error("Other levels should not be affected by the clear")
	}
}

func TestStoreLevelStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveAttempt(Attempt{LevelID: "yard-1", Won: true, Score: 300})
	store.SaveAttempt(Attempt{LevelID: "yard-1", Won: false, Score: 100, NearMiss: true})
	store.SaveAttempt(Attempt{LevelID: "yard-1", Won: false, Score: 200, NearMiss: true})

	stats, err := store.GetLevelStats("yard-1")
	if err != nil {
		t.Fatalf("GetLevelStats() failed: %v", err)
	}
	if stats.Attempts != 3 || stats.Wins != 1 {
		t.Errorf("Attempts/wins = %d/%d, want 3/1", stats.Attempts, stats.Wins)
	}
	if stats.BestScore != 300 || stats.AvgScore != 200 {
		t.Errorf("Best/avg = %d/%v, want 300/200", stats.BestScore, stats.AvgScore)
	}
	if stats.NearMisses != 2 {
		t.Errorf("Near misses = %d, want 2", stats.NearMisses)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed not populated")
	}
}

func TestStoreAllLevelStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveAttempt(Attempt{LevelID: "yard-1", Won: true, Score: 100})
	store.SaveAttempt(Attempt{LevelID: "rush-belt", Won: false, Score: 50})

	all, err := store.GetAllLevelStats()
	if err != nil {
		t.Fatalf("GetAllLevelStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected stats for 2 levels, got %d", len(all))
	}
	if all["yard-1"].Wins != 1 || all["rush-belt"].Wins != 0 {
		t.Errorf("Per-level wins wrong: %+v", all)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
