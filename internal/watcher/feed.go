package watcher

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Edward-Lombe/besix/internal/log"
	"github.com/Edward-Lombe/besix/internal/store"
)

// Load reads the data file and returns its top-level mapping.
func Load(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user's own config
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing data file: %w", err)
	}
	return data, nil
}

// Apply writes every top-level key of data into st via Set, in sorted key
// order for a deterministic event cascade. Keys whose value is unchanged
// are skipped so a file rewrite does not refire every binding. Must be
// called from the goroutine driving the reactive graph.
func Apply(st *store.Store, data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if current, ok := st.Get(k); ok && equalValue(current, data[k]) {
			continue
		}
		if err := st.Set(k, data[k]); err != nil {
			return fmt.Errorf("applying key %q: %w", k, err)
		}
	}
	log.Debug(log.CatWatcher, "applied data file", "keys", len(keys))
	return nil
}

// LoadInto combines Load and Apply.
func LoadInto(path string, st *store.Store) error {
	data, err := Load(path)
	if err != nil {
		return err
	}
	return Apply(st, data)
}

// equalValue compares scalars; composite values always count as changed,
// which refires dependents rather than risking a stale view.
func equalValue(a, b any) bool {
	switch a.(type) {
	case string, bool, int, int64, uint64, float64, nil:
		return a == b
	default:
		return false
	}
}
