// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"

	"github.com/sapcc/apiprobe/internal/client"
	aerr "github.com/sapcc/apiprobe/internal/errors"
)

var waitInterval = 1 * time.Second

// WaitForService polls the base URL until the service answers with any HTTP
// status or timeout elapses. It runs before the login only, requests of the
// smoke test itself are never repeated.
func WaitForService(ctx context.Context, doer Doer, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}

	b := retry.NewConstant(waitInterval)
	b = retry.WithMaxDuration(timeout, b)
	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		resp, err := doer.Do(ctx, client.Request{Method: http.MethodGet, Path: "/"})
		if err != nil {
			var te *aerr.TransportError
			if errors.As(err, &te) && ctx.Err() == nil {
				log.WithError(err).WithField("attempt", attempt).Debug("service not reachable yet")
				return retry.RetryableError(err)
			}
			return err
		}
		log.WithField("status", resp.StatusCode).Debugf("service reachable after %d attempt(s)", attempt)
		return nil
	})
}
