// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jessevdk/go-flags"
	"github.com/sapcc/go-bits/logg"
	log "github.com/sirupsen/logrus"

	"github.com/sapcc/apiprobe/internal/client"
	"github.com/sapcc/apiprobe/internal/config"
	aerr "github.com/sapcc/apiprobe/internal/errors"
	"github.com/sapcc/apiprobe/internal/probe"
)

func main() {
	parser := flags.NewParser(&config.Global, flags.Default)
	parser.ShortDescription = "API smoke test"
	parser.LongDescription = "Logs in to a service, then calls its protected endpoints with the obtained " +
		"bearer token and prints status, headers and body of every response."

	if _, err := parser.Parse(); err != nil {
		code := 1
		var fe *flags.Error
		if errors.As(err, &fe) {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		os.Exit(code)
	}

	if config.Global.ShowVersion {
		fmt.Printf("apiprobe %s (%s)\n", config.Version, config.BuildTime)
		os.Exit(0)
	}
	config.ParseConfig(parser)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one smoke test with config.Global and returns the exit code.
func run(ctx context.Context, out io.Writer) int {
	if err := config.ResolvePassword(&config.Global.Credentials); err != nil {
		logg.Error(err.Error())
		return 1
	}
	settings, err := config.Load(config.Global)
	if err != nil {
		logg.Error(err.Error())
		return 1
	}

	if dsn := config.Global.Default.SentryDSN; dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			logg.Error("sentry: %s", err.Error())
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	c := client.New(settings.BaseURL, client.Options{
		Insecure: settings.Insecure,
		Timeout:  settings.Timeout,
		Debug:    config.IsDebug(),
	})
	log.WithFields(log.Fields{
		"base_url":  settings.BaseURL,
		"email":     settings.Email,
		"endpoints": len(settings.Endpoints),
	}).Debug("starting smoke test")

	if err := probe.WaitForService(ctx, c, settings.WaitTimeout); err != nil {
		return fail(err)
	}

	report, err := probe.NewRunner(settings, c, out).Run(ctx)
	if serr := probe.WriteSummary(out, report, config.Global.Output.Summary); serr != nil {
		log.WithError(serr).Warn("cannot write summary")
	}
	if path := config.Global.Output.MetricsTextfile; path != "" {
		if merr := probe.WriteMetrics(report, path); merr != nil {
			log.WithError(merr).WithField("path", path).Warn("cannot write metrics")
		}
	}

	if err != nil {
		return fail(err)
	}
	return aerr.ExitOK
}

func fail(err error) int {
	log.WithError(err).Error("smoke test failed")
	sentry.CaptureException(err)
	return aerr.ExitCode(err)
}
