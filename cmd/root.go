// Copyright © 2021 Sebastián Zaffarano <sebas@zaffarano.com.ar>.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/szaffarano/gotask/internal/config"
	"github.com/szaffarano/gotask/internal/dispatch"
	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/hooks"
	"github.com/szaffarano/gotask/internal/pipeline"
	"github.com/szaffarano/gotask/internal/store"
	"github.com/szaffarano/gotask/internal/temporal"
)

// Execute builds the single root command and runs it. Unlike the
// administrative add/init/remove/resume/suspend/server/config
// subcommands a sync server carries, this program has exactly one true
// entry point: the argv pipeline from spec §4.A. DisableFlagParsing
// hands the whole argument tail to that pipeline instead of pflag, so
// --data/--config/--quiet/--debug are pulled out manually before cobra
// ever sees the rest.
func Execute(version string) {
	flags, rest := extractGlobalFlags(os.Args[1:])

	rootCmd := &cobra.Command{
		Use:                "task",
		Version:            version,
		Short:              "A command-line task manager",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(flags, rest)
		},
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 3
		if e, ok := err.(*errs.Error); ok {
			code = e.Kind.ExitCode()
		}
		os.Exit(code)
	}
}

// extractGlobalFlags pulls --data, --config, --quiet/-q and --debug/-d out
// of argv (in any position, both "--flag value" and "--flag=value"
// forms), returning the remaining tokens untouched for the pipeline.
func extractGlobalFlags(argv []string) (config.Flags, []string) {
	var flags config.Flags
	var rest []string

	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--quiet" || a == "-q":
			flags.Quiet = true
		case a == "--debug" || a == "-d":
			flags.Debug = true
		case a == "--data":
			if i+1 < len(argv) {
				i++
				flags.DataDir = argv[i]
			}
		case strings.HasPrefix(a, "--data="):
			flags.DataDir = strings.TrimPrefix(a, "--data=")
		case a == "--config":
			if i+1 < len(argv) {
				i++
				flags.ConfigFile = argv[i]
			}
		case strings.HasPrefix(a, "--config="):
			flags.ConfigFile = strings.TrimPrefix(a, "--config=")
		default:
			rest = append(rest, a)
		}
	}
	return flags, rest
}

// run loads the configuration, builds the argument pipeline and the
// dispatcher, and renders the result the way spec §4.D's consumer (the
// report renderer, out of scope per spec §1) would.
func run(flags config.Flags, argv []string) error {
	if err := config.InitConfig(flags); err != nil {
		return err
	}
	cfg := config.Get()

	engine := pipeline.NewEngine(cfg)

	stdinIsTTY := isatty.IsTerminal(os.Stdin.Fd())
	args, err := engine.Run(append([]string{"task"}, argv...), os.Stdin, stdinIsTTY)
	if err != nil {
		return err
	}

	dataStore, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}

	runner := hooks.NewRunner(hookCommands(cfg))
	d := &dispatch.Dispatcher{
		Store:          dataStore,
		Hooks:          runner,
		Confirm:        dispatch.NewStdioConfirmer(os.Stdin, os.Stdout),
		Out:            os.Stdout,
		DateConfig:     dateConfig(cfg),
		ConfirmationOn: confirmationEnabled(cfg),
		BulkThreshold:  bulkThreshold(cfg),
	}

	ctx := context.Background()
	if err := runner.RunEvent(ctx, hooks.OnLaunch); err != nil {
		return err
	}
	// on-exit always fires, even when dispatch itself errors, matching
	// Context::run's "dump errors, then trigger on-exit" cleanup order.
	defer func() {
		if hookErr := runner.RunEvent(ctx, hooks.OnExit); hookErr != nil {
			fmt.Fprintln(os.Stderr, hookErr)
		}
	}()

	res, err := d.Dispatch(ctx, args)
	if err != nil {
		return err
	}

	render(res)
	return nil
}

// hookCommands fans cfg.Values' flat "hook.<event>=<command>" entries out
// into the map hooks.NewRunner wants.
func hookCommands(cfg *config.Config) map[hooks.Event]string {
	out := map[hooks.Event]string{}
	for key, value := range cfg.Values {
		if name, ok := strings.CutPrefix(key, "hook."); ok {
			out[hooks.Event(name)] = value
		}
	}
	return out
}

// confirmationEnabled reads the `confirmation` rc setting, defaulting to
// on, matching the teacher's boolean-flag-from-string-value convention.
func confirmationEnabled(cfg *config.Config) bool {
	v, ok := cfg.Values["confirmation"]
	if !ok {
		return true
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return on
}

// dateConfig builds a temporal.Config from the rc file's `dateformat` and
// `weekstart` settings, defaulting to temporal.DefaultConfig().
func dateConfig(cfg *config.Config) temporal.Config {
	out := temporal.DefaultConfig()
	if v, ok := cfg.Values["dateformat"]; ok && v != "" {
		out.Format = v
	}
	if v, ok := cfg.Values["weekstart"]; ok && strings.EqualFold(v, "sunday") {
		out.WeekStart = temporal.Sunday
	}
	return out
}

func bulkThreshold(cfg *config.Config) int {
	v, ok := cfg.Values["bulk"]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// render prints one line per resulting task; a real report renderer
// (columns, colors) is out of scope per spec §1.
func render(res *dispatch.Result) {
	if res == nil {
		return
	}
	for _, t := range res.Tasks {
		id := t.Get("id")
		if id == "" {
			id = t.UUID()[:8]
		}
		fmt.Printf("%s %s %s\n", id, t.Status(), t.Description())
	}
	log.Debugf("%s: %d task(s)", res.Command, len(res.Tasks))
}
