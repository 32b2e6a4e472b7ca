// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/sapcc/apiprobe/internal/client"
	"github.com/sapcc/apiprobe/internal/config"
	aerr "github.com/sapcc/apiprobe/internal/errors"
)

func (s *RunnerSuite) TestLoginRequest() {
	_, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)

	login := s.api.recorded()[0]
	s.Equal(http.MethodPost, login.Method)
	s.Equal("/auth/login", login.Path)
	s.Equal("application/json", login.ContentType)
	s.Empty(login.Authorization)
	s.JSONEq(`{"email":"test@example.com","password":"Test1234!"}`, login.Body)
}

func (s *RunnerSuite) TestBearerTokenOnEveryProbe() {
	report, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)
	s.False(report.TokenMissing)

	probes := s.api.probes()
	s.Require().Len(probes, 4)
	for _, p := range probes {
		s.Equal(http.MethodGet, p.Method)
		s.Equal("Bearer abc123", p.Authorization, p.Path)
	}
}

func (s *RunnerSuite) TestLoginUnauthorized() {
	s.api.loginStatus = http.StatusUnauthorized
	s.api.loginBody = `{"error":"invalid credentials"}`

	report, err := s.runner(s.settings()).Run(context.Background())

	var ae *aerr.AuthError
	s.Require().ErrorAs(err, &ae)
	s.Equal(http.StatusUnauthorized, ae.StatusCode)
	s.Equal(`{"error":"invalid credentials"}`, ae.Body)
	s.Equal(aerr.ExitAuth, aerr.ExitCode(err))

	s.Len(s.api.recorded(), 1)
	s.Empty(s.api.probes())
	s.False(report.LoginSucceeded())
	s.Empty(report.Probes)

	s.Contains(s.out.String(), "Status: 401\n")
	s.Contains(s.out.String(), `Content: {"error":"invalid credentials"}`)
	s.NotContains(s.out.String(), "Token:")
}

func (s *RunnerSuite) TestLoginNon200IsFatal() {
	s.api.loginStatus = http.StatusCreated

	_, err := s.runner(s.settings()).Run(context.Background())
	s.Equal(aerr.ExitAuth, aerr.ExitCode(err))
	s.Empty(s.api.probes())
}

func (s *RunnerSuite) TestProbeFailureContinues() {
	s.api.statuses["/user/"] = http.StatusInternalServerError
	s.api.statuses["/me"] = http.StatusUnauthorized

	report, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)
	s.Equal(aerr.ExitOK, aerr.ExitCode(err))

	s.Len(s.api.probes(), 4)
	s.Require().Len(report.Probes, 4)
	s.Equal(http.StatusUnauthorized, report.Probes[0].StatusCode)
	s.Equal(http.StatusInternalServerError, report.Probes[1].StatusCode)
	s.Equal(http.StatusOK, report.Probes[3].StatusCode)
}

func (s *RunnerSuite) TestMissingTokenIsPermissive() {
	s.api.loginBody = `{"message":"welcome"}`

	report, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)
	s.True(report.TokenMissing)

	probes := s.api.probes()
	s.Len(probes, 4)
	for _, p := range probes {
		s.Equal("Bearer "+MissingToken, p.Authorization)
	}
	s.Contains(s.out.String(), "\nToken: None\n")
}

func (s *RunnerSuite) TestNullTokenIsMissing() {
	s.api.loginBody = `{"token":null}`

	report, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)
	s.True(report.TokenMissing)
	s.Equal("Bearer None", s.api.probes()[0].Authorization)
}

func (s *RunnerSuite) TestEmptyTokenStillSent() {
	s.api.loginBody = `{"token":""}`

	report, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)
	s.False(report.TokenMissing)

	probes := s.api.probes()
	s.Require().Len(probes, 4)
	for _, p := range probes {
		// "Bearer " arrives with its trailing blank trimmed
		s.Equal("Bearer", strings.TrimSpace(p.Authorization), p.Path)
	}
	s.Contains(s.out.String(), "\nToken: \n")
}

func (s *RunnerSuite) TestRequireToken() {
	s.api.loginBody = `{}`
	settings := s.settings(func(p *config.Probe) { p.Credentials.RequireToken = true })

	_, err := s.runner(settings).Run(context.Background())

	var pe *aerr.ProtocolError
	s.Require().ErrorAs(err, &pe)
	s.ErrorIs(err, aerr.ErrMissingToken)
	s.Equal(aerr.ExitProtocol, aerr.ExitCode(err))
	s.Empty(s.api.probes())
}

func (s *RunnerSuite) TestMalformedLoginBody() {
	s.api.loginBody = `<html>gateway</html>`

	report, err := s.runner(s.settings()).Run(context.Background())
	s.Equal(aerr.ExitProtocol, aerr.ExitCode(err))
	s.Empty(s.api.probes())
	s.True(report.LoginSucceeded())
	s.Contains(s.out.String(), "Content: <html>gateway</html>\n")
}

func (s *RunnerSuite) TestProbeOrder() {
	_, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)

	var paths []string
	for _, p := range s.api.probes() {
		paths = append(paths, p.Path)
	}
	s.Equal([]string{"/me", "/user/", "/game/", "/auth/"}, paths)
}

func (s *RunnerSuite) TestProbeOrderStandard() {
	settings := s.settings(func(p *config.Probe) { p.Probes.Variant = "standard" })
	report, err := s.runner(settings).Run(context.Background())
	s.Require().NoError(err)

	var paths []string
	for _, p := range s.api.probes() {
		paths = append(paths, p.Path)
	}
	s.Equal([]string{"/me", "/user/", "/game/"}, paths)
	s.Len(report.Results(), 4)
}

func (s *RunnerSuite) TestUnauthenticatedEndpoint() {
	settings := s.settings()
	settings.Endpoints = []config.Endpoint{
		{Name: "PUBLIC", Method: http.MethodGet, Path: "/public", Auth: false},
		{Name: "ME", Method: http.MethodGet, Path: "/me", Auth: true},
	}

	_, err := s.runner(settings).Run(context.Background())
	s.Require().NoError(err)

	probes := s.api.probes()
	s.Require().Len(probes, 2)
	s.Empty(probes[0].Authorization)
	s.Equal("Bearer abc123", probes[1].Authorization)
}

func (s *RunnerSuite) TestTranscript() {
	_, err := s.runner(s.settings()).Run(context.Background())
	s.Require().NoError(err)

	out := s.out.String()
	banners := regexp.MustCompile(`===== (\w+) RESPONSE =====`).FindAllStringSubmatch(out, -1)
	var names []string
	for _, b := range banners {
		names = append(names, b[1])
	}
	s.Equal([]string{"LOGIN", "ME", "USER", "GAME", "AUTH"}, names)

	blocks := strings.Split(out, "\n=====")[1:]
	s.Require().Len(blocks, 5)
	for _, b := range blocks {
		s.Contains(b, "\nStatus: 200\n")
		s.Contains(b, "\nContent: ")
		s.NotContains(b, "Headers:")
	}
	s.Contains(blocks[1], `Content: {"path":"/me"}`)
	s.Contains(blocks[4], `Content: {"path":"/auth/"}`)
	s.Contains(out, "\nToken: abc123\n")
}

func (s *RunnerSuite) TestTranscriptWithHeaders() {
	settings := s.settings(func(p *config.Probe) { p.Output.ShowHeaders = true })
	_, err := s.runner(settings).Run(context.Background())
	s.Require().NoError(err)

	s.Equal(5, strings.Count(s.out.String(), "\nHeaders: {"))
	s.Contains(s.out.String(), "Content-Type: application/json")
}

func (s *RunnerSuite) TestTranscriptShort() {
	settings := s.settings(func(p *config.Probe) { p.Output.Format = config.FormatShort })
	_, err := s.runner(settings).Run(context.Background())
	s.Require().NoError(err)

	lines := strings.Split(strings.TrimSuffix(s.out.String(), "\n"), "\n")
	s.Require().Len(lines, 11)
	s.Equal("LOGIN response status: 200", lines[0])
	s.Equal(`LOGIN response content: {"token":"abc123"}`, lines[1])
	s.Equal("Token: abc123", lines[2])
	s.Equal("ME response status: 200", lines[3])
	s.Equal(`AUTH response content: {"path":"/auth/"}`, lines[10])
	s.NotContains(s.out.String(), "=====")
}

func (s *RunnerSuite) TestTransportErrorDuringProbes() {
	settings := s.settings()
	boom := &aerr.TransportError{Op: http.MethodGet, URL: settings.BaseURL + "/user/", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}
	doer := &failingDoer{next: client.New(settings.BaseURL, client.Options{}), failAt: 3, err: boom}

	report, err := NewRunner(settings, doer, s.out).Run(context.Background())
	s.ErrorIs(err, boom)
	s.Equal(aerr.ExitTransport, aerr.ExitCode(err))
	s.Len(report.Probes, 1)
	s.Len(s.api.probes(), 1)
}

func (s *RunnerSuite) TestTransportErrorOnLogin() {
	settings := s.settings()
	s.api.srv.Close()

	report, err := s.runner(settings).Run(context.Background())
	var te *aerr.TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal(http.MethodPost, te.Op)
	s.Nil(report.Login)
	s.Empty(report.Results())
	s.Empty(s.out.String())
}
