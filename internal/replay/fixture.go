package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/livefig/snapshot"
)

// #region fixture-types

// Fixture is a stored snapshot plus expectations about its generated source.
type Fixture struct {
	Description string          `json:"description"`
	Snapshot    snapshot.Figure `json:"snapshot"`
	// Fragments that must appear in the generated source.
	ExpectContains []string `json:"expect_contains"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Check verifies the round trip and the expected source fragments.
func (f *Fixture) Check() error {
	src, err := Verify(f.Snapshot)
	if err != nil {
		return err
	}
	for _, frag := range f.ExpectContains {
		if !strings.Contains(src.Text, frag) {
			return fmt.Errorf("generated source lacks %q", frag)
		}
	}
	return nil
}

// #endregion fixture-loader
