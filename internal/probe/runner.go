// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sapcc/apiprobe/internal/client"
	"github.com/sapcc/apiprobe/internal/config"
	aerr "github.com/sapcc/apiprobe/internal/errors"
)

// Doer sends a single request, implemented by *client.Client.
type Doer interface {
	Do(ctx context.Context, r client.Request) (*client.Response, error)
}

// Result is the outcome of one request of a run.
type Result struct {
	Name       string
	Method     string
	Path       string
	StatusCode int
	Size       int
	Duration   time.Duration
}

// Report collects the results of a run in request order.
type Report struct {
	Started      time.Time
	Login        *Result
	Probes       []Result
	TokenMissing bool
}

// Results returns login and probe results in request order.
func (r *Report) Results() []Result {
	res := make([]Result, 0, len(r.Probes)+1)
	if r.Login != nil {
		res = append(res, *r.Login)
	}
	return append(res, r.Probes...)
}

// LoginSucceeded reports whether the login returned 200.
func (r *Report) LoginSucceeded() bool {
	return r.Login != nil && r.Login.StatusCode == http.StatusOK
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Runner performs the smoke test sequence: login, then every configured
// probe in order with the obtained bearer token.
type Runner struct {
	settings   config.Settings
	doer       Doer
	transcript *Transcript
}

func NewRunner(settings config.Settings, doer Doer, out io.Writer) *Runner {
	return &Runner{
		settings:   settings,
		doer:       doer,
		transcript: NewTranscript(out, settings.Format, settings.ShowHeaders),
	}
}

// Run logs in and issues all probes. A login status other than 200 returns
// an *errors.AuthError before any probe is sent. Probe statuses never fail
// the run, transport errors abort it. The report is never nil.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{Started: time.Now()}

	loginName := config.NameFromPath(r.settings.LoginPath)
	resp, err := r.doer.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   r.settings.LoginPath,
		Body:   credentials{Email: r.settings.Email, Password: r.settings.Password},
	})
	if err != nil {
		return report, err
	}
	login := newResult(loginName, http.MethodPost, r.settings.LoginPath, resp)
	report.Login = &login
	r.transcript.Response(loginName, resp)

	if resp.StatusCode != http.StatusOK {
		return report, &aerr.AuthError{StatusCode: resp.StatusCode, Body: resp.Text()}
	}

	token, found, err := ExtractToken(resp.Body)
	if err != nil {
		return report, err
	}
	if !found {
		if r.settings.RequireToken {
			return report, &aerr.ProtocolError{Reason: "login response", Body: resp.Text(), Err: aerr.ErrMissingToken}
		}
		log.WithField("path", r.settings.LoginPath).Warnf("login response has no token, probing with %q", MissingToken)
		token = MissingToken
		report.TokenMissing = true
	}
	r.transcript.Token(token)

	for _, ep := range r.settings.Endpoints {
		resp, err := r.doer.Do(ctx, client.Request{
			Method: ep.Method,
			Path:   ep.Path,
			Auth:   ep.Auth,
			Token:  token,
		})
		if err != nil {
			return report, err
		}
		report.Probes = append(report.Probes, newResult(ep.Name, ep.Method, ep.Path, resp))
		r.transcript.Response(ep.Name, resp)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			log.WithFields(log.Fields{
				"method": ep.Method,
				"path":   ep.Path,
				"status": resp.StatusCode,
			}).Warn("probe returned non-success status")
		}
	}
	return report, nil
}

func newResult(name, method, path string, resp *client.Response) Result {
	return Result{
		Name:       name,
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Size:       len(resp.Body),
		Duration:   resp.Duration,
	}
}
