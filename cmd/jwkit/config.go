// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAMLConfig is a kong.ConfigurationLoader for YAML documents. Top-level
// entries are matched to flags by name, and nested mappings are matched by
// command path. For example:
//
//	serve:
//	  address: ":9000"
//	  type: RSA
//
// Underscores may be used in place of dashes.
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	values := make(map[string]any)
	err := yaml.NewDecoder(r).Decode(&values)
	if errors.Is(err, io.EOF) {
		// an empty document
		err = nil
	}

	if err != nil {
		return nil, fmt.Errorf("unable to parse YAML configuration: %w", err)
	}

	return kong.ResolverFunc(func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		var path []string
		if parent != nil && parent.Command != nil {
			path = []string{parent.Command.Name}
		}

		return lookupYAML(values, path, flag.Name), nil
	}), nil
}

// lookupYAML finds the most specific value for a flag: the deepest mapping
// along the command path wins over top-level entries.
func lookupYAML(values map[string]any, path []string, name string) (found any) {
	current := values
	for depth := 0; current != nil; depth++ {
		if v, ok := yamlEntry(current, name); ok {
			if _, nested := v.(map[string]any); !nested {
				found = v
			}
		}

		if depth >= len(path) {
			break
		}

		next, _ := yamlEntry(current, path[depth])
		current, _ = next.(map[string]any)
	}

	return
}

func yamlEntry(m map[string]any, name string) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}

	v, ok := m[strings.ReplaceAll(name, "-", "_")]
	return v, ok
}
