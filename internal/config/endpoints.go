// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	aerr "github.com/sapcc/apiprobe/internal/errors"
)

// Endpoint is a single probe request issued after login.
type Endpoint struct {
	Name   string
	Method string
	Path   string
	Auth   bool
}

var variants = map[string][]Endpoint{
	"standard": {
		{Method: http.MethodGet, Path: "/me", Auth: true},
		{Method: http.MethodGet, Path: "/user/", Auth: true},
		{Method: http.MethodGet, Path: "/game/", Auth: true},
	},
	"extended": {
		{Method: http.MethodGet, Path: "/me", Auth: true},
		{Method: http.MethodGet, Path: "/user/", Auth: true},
		{Method: http.MethodGet, Path: "/game/", Auth: true},
		{Method: http.MethodGet, Path: "/auth/", Auth: true},
	},
}

// VariantEndpoints returns a copy of a built-in endpoint list.
func VariantEndpoints(variant string) ([]Endpoint, error) {
	eps, ok := variants[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q", aerr.ErrUnknownVariant, variant)
	}
	res := make([]Endpoint, len(eps))
	copy(res, eps)
	return res, nil
}

// ParseEndpoint parses the '[METHOD ]PATH' notation of --probe.
func ParseEndpoint(s string) (Endpoint, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return Endpoint{Method: http.MethodGet, Path: fields[0], Auth: true}, nil
	case 2:
		return Endpoint{Method: fields[0], Path: fields[1], Auth: true}, nil
	default:
		return Endpoint{}, fmt.Errorf("%w: %q", aerr.ErrInvalidEndpoint, s)
	}
}

type endpointFile struct {
	Endpoints []struct {
		Name   string `yaml:"name"`
		Method string `yaml:"method"`
		Path   string `yaml:"path"`
		Auth   *bool  `yaml:"auth"`
	} `yaml:"endpoints"`
}

// LoadEndpoints reads a YAML endpoint list:
//
//	endpoints:
//	  - path: /me
//	  - name: users
//	    method: GET
//	    path: /user/
//	    auth: true
func LoadEndpoints(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f endpointFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(f.Endpoints) == 0 {
		return nil, fmt.Errorf("%w: %s lists no endpoints", aerr.ErrInvalidEndpoint, path)
	}

	res := make([]Endpoint, 0, len(f.Endpoints))
	for _, e := range f.Endpoints {
		ep := Endpoint{Name: e.Name, Method: e.Method, Path: e.Path, Auth: true}
		if e.Auth != nil {
			ep.Auth = *e.Auth
		}
		res = append(res, ep)
	}
	return res, nil
}

// normalize fills defaults and validates an endpoint.
func (e Endpoint) normalize() (Endpoint, error) {
	if !strings.HasPrefix(e.Path, "/") {
		return e, fmt.Errorf("%w: path %q must start with '/'", aerr.ErrInvalidEndpoint, e.Path)
	}
	if e.Method == "" {
		e.Method = http.MethodGet
	}
	e.Method = strings.ToUpper(e.Method)
	if e.Name == "" {
		e.Name = NameFromPath(e.Path)
	} else {
		e.Name = strcase.ToScreamingSnake(e.Name)
	}
	return e, nil
}

// NameFromPath derives a display name from the last path segment, "/user/" becomes "USER".
func NameFromPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "ROOT"
	}
	return strcase.ToScreamingSnake(last)
}
