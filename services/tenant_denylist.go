package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TenantDenylist excludes items that belong to another tenant sharing the
// same Square catalog namespace. Square has no per-location catalog scoping,
// so exact name/ID matches are the only handle we have. This type is the
// whole workaround: if upstream ever gains real location scoping, delete it
// and nothing else. Do not grow it into a general filtering mechanism.
type TenantDenylist struct {
	Entries []DenyEntry `yaml:"items"`
}

// DenyEntry matches on exact Square ID, exact name, or both.
type DenyEntry struct {
	SquareID string `yaml:"squareId"`
	Name     string `yaml:"name"`
}

// LoadTenantDenylist reads the denylist file. A missing file is an empty
// denylist, not an error.
func LoadTenantDenylist(path string) (*TenantDenylist, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &TenantDenylist{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read denylist %s: %w", path, err)
	}
	var list TenantDenylist
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse denylist %s: %w", path, err)
	}
	return &list, nil
}

// MatchesItem reports whether the item is denylisted. Matching is exact;
// a renamed item on the other tenant's side stops matching, which is an
// accepted limitation of the workaround.
func (d *TenantDenylist) MatchesItem(name, squareID string) bool {
	if d == nil {
		return false
	}
	for _, e := range d.Entries {
		if e.SquareID != "" && e.SquareID == squareID {
			return true
		}
		if e.Name != "" && e.Name == name {
			return true
		}
	}
	return false
}
