// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	aerr "github.com/sapcc/apiprobe/internal/errors"
)

// Settings is the resolved configuration of a single run. It is built once
// by Load and handed to the runner, nothing mutates it afterwards.
type Settings struct {
	BaseURL      string
	Email        string
	Password     string
	LoginPath    string
	Endpoints    []Endpoint
	RequireToken bool
	ShowHeaders  bool
	Format       string
	Insecure     bool
	Timeout      time.Duration
	WaitTimeout  time.Duration
}

// Load validates p and turns it into Settings. Credentials must already be
// resolved, see ResolvePassword.
func Load(p Probe) (Settings, error) {
	base, err := parseBaseURL(p.Default.BaseURL)
	if err != nil {
		return Settings{}, err
	}
	if !strings.HasPrefix(p.Credentials.LoginPath, "/") {
		return Settings{}, fmt.Errorf("%w: login path %q must start with '/'",
			aerr.ErrInvalidEndpoint, p.Credentials.LoginPath)
	}

	format := p.Output.Format
	switch format {
	case "":
		format = FormatFull
	case FormatFull, FormatShort:
	default:
		return Settings{}, fmt.Errorf("unknown transcript format %q", format)
	}

	var endpoints []Endpoint
	switch {
	case p.Probes.EndpointsFile != "":
		endpoints, err = LoadEndpoints(p.Probes.EndpointsFile)
	case len(p.Probes.Probe) > 0:
		for _, s := range p.Probes.Probe {
			var ep Endpoint
			if ep, err = ParseEndpoint(s); err != nil {
				break
			}
			endpoints = append(endpoints, ep)
		}
	default:
		endpoints, err = VariantEndpoints(p.Probes.Variant)
	}
	if err != nil {
		return Settings{}, err
	}
	for i := range endpoints {
		if endpoints[i], err = endpoints[i].normalize(); err != nil {
			return Settings{}, err
		}
	}

	return Settings{
		BaseURL:      base,
		Email:        p.Credentials.Email,
		Password:     p.Credentials.Password,
		LoginPath:    p.Credentials.LoginPath,
		Endpoints:    endpoints,
		RequireToken: p.Credentials.RequireToken,
		ShowHeaders:  p.Output.ShowHeaders,
		Format:       format,
		Insecure:     p.Default.Insecure,
		Timeout:      p.Default.Timeout,
		WaitTimeout:  p.Default.WaitTimeout,
	}, nil
}

func parseBaseURL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", aerr.ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", aerr.ErrInvalidBaseURL, s)
	}
	return strings.TrimSuffix(s, "/"), nil
}
