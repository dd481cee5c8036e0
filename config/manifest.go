// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk list of sounds.
//
//	sounds:
//	  shot: sfx/shot.wav
//	  wind: ambience/wind.ogg
type Manifest struct {
	Sounds map[string]string `yaml:"sounds"`
}

// LoadManifest parses the manifest at path. Relative sound paths are
// resolved against the manifest directory. Keys are lowercased, as viper
// does for inline sounds.
func LoadManifest(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	return resolve(m.Sounds, filepath.Dir(path)), nil
}

// resolve lowercases keys and anchors relative paths at dir.
func resolve(sounds map[string]string, dir string) map[string]string {
	out := make(map[string]string, len(sounds))
	for key, p := range sounds {
		if dir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		out[strings.ToLower(key)] = p
	}
	return out
}

// Manifest merges the manifest file, if any, with the inline sounds. Inline
// entries win.
func (c Config) Manifest(fs afero.Fs) (map[string]string, error) {
	sounds := make(map[string]string)

	if c.ManifestPath != "" {
		path := c.ManifestPath
		if c.Dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(c.Dir, path)
		}
		fromFile, err := LoadManifest(fs, path)
		if err != nil {
			return nil, err
		}
		for k, p := range fromFile {
			sounds[k] = p
		}
	}

	for k, p := range resolve(c.Sounds, c.Dir) {
		sounds[k] = p
	}
	return sounds, nil
}
