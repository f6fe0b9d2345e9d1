package main

import (
	"context"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/loadtest"
)

const defaultRunTimeout = 10 * time.Minute

var runCfg loadtest.Config

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Issue match requests for fixture users and verify the responses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
		defer cancel()

		_, err := loadtest.Run(ctx, runCfg)
		return err
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runCfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.StringVarP(&runCfg.Fixture, "fixture", "f", "fixture.json", "fixture the server was seeded with")
	f.StringVar(&runCfg.Secret, "secret", "", "JWT secret shared with the server")
	f.IntVar(&runCfg.Requests, "requests", 1000, "number of match requests")
	f.IntVar(&runCfg.Workers, "workers", runtime.NumCPU()*2, "concurrent requesters")
	f.IntVar(&runCfg.Limit, "limit", 0, "limit query parameter, 0 for the server default")
	f.DurationVar(&runCfg.Timeout, "timeout", 30*time.Second, "per request timeout")
	f.BoolVar(&runCfg.Strict, "strict", true, "expect every score above the strict threshold")
	f.BoolVarP(&runCfg.Verbose, "verbose", "v", false, "log every failed request")

	_ = runCmd.MarkFlagRequired("secret")
}
