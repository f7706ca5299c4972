package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type ReplayBundle struct {
	RunID       string    `json:"run_id"`
	Scenario    *Scenario `json:"scenario"`
	GeneratedAt time.Time `json:"generated_at"`
	Reports     []Report  `json:"reports"`
}

func mkRunDir(outputsRoot string, now time.Time) (string, string, error) {
	rid := "replay_" + now.Format("20060102-150405")
	dir := filepath.Join(outputsRoot, rid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return rid, dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PersistReplay writes reports under outputsRoot/replay_<ts>/reports.json
// and returns the file path.
func PersistReplay(outputsRoot string, sc *Scenario, reports []Report) (string, error) {
	now := time.Now()
	rid, dir, err := mkRunDir(outputsRoot, now)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, "reports.json")
	bundle := ReplayBundle{
		RunID:       rid,
		Scenario:    sc,
		GeneratedAt: now,
		Reports:     reports,
	}
	if err := writeJSON(out, bundle); err != nil {
		return "", err
	}
	return out, nil
}
