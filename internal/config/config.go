// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sapcc/go-bits/logg"
	log "github.com/sirupsen/logrus"
)

var (
	Global Probe

	// set at build time via -ldflags "-X ..."
	Version   = "dev"
	BuildTime = "unknown"
)

type Probe struct {
	ConfigFile  string      `long:"config-file" description:"Use config file"`
	ShowVersion bool        `long:"version" description:"Show version and exit"`
	Default     Default     `group:"DEFAULT"`
	Credentials Credentials `group:"credentials"`
	Probes      Probes      `group:"probes"`
	Output      Output      `group:"output"`
}

type Default struct {
	Debug       bool          `short:"d" long:"debug" description:"Show debug information"`
	BaseURL     string        `long:"base-url" ini-name:"base_url" env:"APIPROBE_BASE_URL" default:"http://localhost:9443" description:"Base URL of the service under test"`
	Insecure    bool          `short:"k" long:"insecure" ini-name:"insecure" description:"Skip TLS certificate verification"`
	Timeout     time.Duration `long:"timeout" ini-name:"timeout" default:"0s" description:"Timeout per request, 0 disables the timeout"`
	WaitTimeout time.Duration `long:"wait-timeout" ini-name:"wait_timeout" default:"0s" description:"Wait up to this long for the service to answer before logging in, 0 disables waiting"`
	SentryDSN   string        `long:"sentry-dsn" ini-name:"sentry_dsn" env:"SENTRY_DSN" description:"Report failed runs to Sentry"`
}

type Credentials struct {
	Email        string `long:"email" ini-name:"email" env:"APIPROBE_EMAIL" default:"test@example.com" description:"Login email"`
	Password     string `long:"password" ini-name:"password" env:"APIPROBE_PASSWORD" description:"Login password (default: Test1234!)"`
	PasswordCmd  string `long:"password-cmd" ini-name:"password_cmd" env:"APIPROBE_PASSWORD_CMD" description:"Derive login password from command"`
	LoginPath    string `long:"login-path" ini-name:"login_path" default:"/auth/login" description:"Path of the login endpoint"`
	RequireToken bool   `long:"require-token" ini-name:"require_token" description:"Abort if the login response carries no token"`
}

type Probes struct {
	Variant       string   `long:"variant" ini-name:"variant" choice:"standard" choice:"extended" default:"extended" description:"Built-in list of probe endpoints"`
	Probe         []string `long:"probe" ini-name:"probe" description:"Probe endpoint as '[METHOD ]PATH', can be repeated, replaces the variant list"`
	EndpointsFile string   `long:"endpoints-file" ini-name:"endpoints_file" description:"YAML file listing the probe endpoints, replaces --variant and --probe"`
}

type Output struct {
	ShowHeaders     bool   `short:"H" long:"show-headers" ini-name:"show_headers" description:"Print response headers"`
	Format          string `long:"format" ini-name:"format" choice:"full" choice:"short" default:"full" description:"Transcript layout, 'full' prints one block per response, 'short' one line per field"`
	Summary         string `long:"summary" ini-name:"summary" choice:"none" choice:"table" choice:"csv" choice:"markdown" choice:"html" default:"none" description:"Print a summary after the transcript"`
	MetricsTextfile string `long:"metrics-textfile" ini-name:"metrics_textfile" description:"Write Prometheus metrics of the run to this file"`
}

// Transcript layouts.
const (
	FormatFull  = "full"
	FormatShort = "short"
)

// DefaultPassword is used when neither a password nor a password command is configured.
const DefaultPassword = "Test1234!"

func IsDebug() bool {
	return Global.Default.Debug
}

// ParseConfig reads the optional config file and configures log levels.
func ParseConfig(parser *flags.Parser) {
	if Global.ConfigFile != "" {
		ini := flags.NewIniParser(parser)
		if err := ini.ParseFile(Global.ConfigFile); err != nil {
			logg.Fatal(err.Error())
		}
	}

	logg.ShowDebug = IsDebug()
	if IsDebug() {
		log.SetLevel(log.DebugLevel)
	}
}

// ResolvePassword fills in the password from the password command or the default.
func ResolvePassword(c *Credentials) error {
	if c.Password != "" {
		return nil
	}
	if c.PasswordCmd == "" {
		c.Password = DefaultPassword
		return nil
	}

	// run external command to get password
	cmd := exec.Command("sh", "-c", c.PasswordCmd)
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return fmt.Errorf("password command: %s: %s", err.Error(), strings.TrimSpace(string(ee.Stderr)))
		}
		return fmt.Errorf("password command: %w", err)
	}
	c.Password = strings.TrimSuffix(string(out), "\n")
	return nil
}
