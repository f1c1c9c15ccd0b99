package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"semcheck/internal/config"
	"semcheck/internal/metrics"
	"semcheck/internal/metrics/datadog"
	"semcheck/internal/metrics/prompush"
	"semcheck/internal/runner"

	// register all query source backends with the source factory.
	// config specifies which to use but we build in support for all of them.
	_ "semcheck/internal/source/all"
)

// main is the entry point for the semcheck binary. It loads the run config,
// optionally initializes a metrics backend, executes the validation run, and
// exits non-zero when validation fails.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/validation.json", "run config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (e.g. pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var run config.Run
	if err := json.NewDecoder(f).Decode(&run); err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.ValidateRun(run)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	if !run.Enabled {
		log.Printf("validation disabled in config (%s); nothing to do", cfgPath)
		return
	}

	// Decide metrics backend: flag -> env -> default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(run.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v backend=%v job=%v", gwURL, backendName, run.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		addr := os.Getenv("DD_AGENT_ADDR")
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "semcheck.",
			GlobalTags: []string{"job:" + run.Job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: addr=%v backend=%v job=%v", addr, backendName, run.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("run: job=%s target=%s schema=%s tables=%d hash=%s",
			run.Job, run.Target.Kind, run.Target.Schema, len(run.Tables), run.Hash)
	}

	r, err := runner.New(run)
	if err != nil {
		log.Fatalf("%v", err)
	}
	sum, err := r.Run(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	if !sum.Passed {
		log.Printf("validation FAILED: mismatches=%d errors=%d success_rate=%.2f%%",
			sum.Mismatches, sum.Errors, sum.SuccessRate)
		os.Exit(1)
	}
	log.Printf("validation PASSED: rows_checked=%d success_rate=%.2f%%",
		sum.RowsChecked, sum.SuccessRate)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
