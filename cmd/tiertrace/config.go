package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// runConfig is the optional YAML run file. Flags given on the command line
// take precedence over its values.
type runConfig struct {
	Traces   []string   `yaml:"traces"`
	Parallel int        `yaml:"parallel"`
	Align    bool       `yaml:"align"`
	Store    string     `yaml:"store"`
	Plot     plotConfig `yaml:"plot"`
}

type plotConfig struct {
	Width  float64  `yaml:"width"`  // cm
	Height float64  `yaml:"height"` // cm
	Types  []string `yaml:"types"`
	OutDir string   `yaml:"out_dir"`
	Format string   `yaml:"format"`
}

func loadRunConfig(path string) (runConfig, error) {
	var rc runConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return rc, fmt.Errorf("reading run config: %w", err)
	}
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return rc, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	// relative trace paths are relative to the config file
	base := filepath.Dir(path)
	for i, t := range rc.Traces {
		if !filepath.IsAbs(t) {
			rc.Traces[i] = filepath.Join(base, t)
		}
	}
	return rc, nil
}

var traceExts = map[string]bool{".csv": true, ".json": true, ".jsonl": true}

// expandInputs replaces directory arguments by the trace files they contain,
// in lexical order. Other arguments are kept as given.
func expandInputs(inputs []string) ([]string, error) {
	var paths []string
	for _, in := range inputs {
		fi, err := os.Stat(in)
		if err != nil || !fi.IsDir() {
			paths = append(paths, in)
			continue
		}
		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && traceExts[strings.ToLower(filepath.Ext(e.Name()))] {
				found = append(found, filepath.Join(in, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
