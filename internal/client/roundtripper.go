// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// RoundTripper logs every request and its outcome at debug level.
type RoundTripper struct {
	Rt http.RoundTripper
}

func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := log.WithFields(log.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get("X-Request-Id"),
		"auth":       req.Header.Get("Authorization") != "",
	})
	logger.Debug("sending request")

	start := time.Now()
	resp, err := rt.Rt.RoundTrip(req)
	if err != nil {
		logger.WithError(err).Debug("request failed")
		return nil, err
	}

	logger.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("received response")
	return resp, nil
}
