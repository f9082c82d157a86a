// Package config reads the optional TOML file holding the import options.
//
//	source = "blog-11-01-2017.xml"
//	dest = "site"
//	no-blogger-info = false
//	replace-internal-link = true
//	format = "markdown"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// File mirrors the command line flags. Pointers tell a missing key from a
// zero value, so only the keys present in the file override the defaults.
type File struct {
	Source              *string `toml:"source"`
	Dest                *string `toml:"dest"`
	NoBloggerInfo       *bool   `toml:"no-blogger-info"`
	ReplaceInternalLink *bool   `toml:"replace-internal-link"`
	Format              *string `toml:"format"`
	Layout              *string `toml:"layout"`
	OnConflict          *string `toml:"on-conflict"`
	BaseURL             *string `toml:"base-url"`
	Blog                *string `toml:"blog"`
	Comments            *bool   `toml:"comments"`
}

// Load reads the file. Unknown keys are errors, to catch typos.
func Load(name string) (*File, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var f File
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("config file %s: %s", name, strict.String())
		}
		return nil, fmt.Errorf("config file %s: %w", name, err)
	}
	return &f, nil
}
