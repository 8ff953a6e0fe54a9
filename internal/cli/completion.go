package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/amterp/memmap/internal/config"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/store"
	"github.com/amterp/ra"
)

// completionCtx provides lightweight store access for shell completion.
// Completion functions run during ParseOrExit, before NewApp() is called,
// so we can't use the full App. This loads just the config and the
// file-backed contributor store.
type completionCtx struct {
	once         sync.Once
	cfg          *model.AppConfig
	contributors store.ContributorStore
	err          error
}

var compCtx completionCtx

func initCompletionCtx() {
	compCtx.once.Do(func() {
		cfg, err := store.NewConfigStore(resolveConfigPath(configFromArgs(os.Args))).Load()
		if err != nil {
			// Graceful degradation: no completions if the config is broken
			compCtx.err = err
			return
		}
		compCtx.cfg = cfg
		if cfg.Storage.Contributors != model.StorageSQLite {
			compCtx.contributors = store.NewContributorStore(config.NewPaths(cfg.Server.DataDir), logging.NewNop())
		}
	})
}

// completeContributors returns contributor emails matching the given prefix.
func completeContributors(toComplete string) ([]string, ra.CompletionDirective) {
	initCompletionCtx()
	if compCtx.err != nil || compCtx.contributors == nil {
		return nil, ra.CompletionDirectiveNoFileComp
	}

	contributors, err := compCtx.contributors.List(context.Background())
	if err != nil {
		return nil, ra.CompletionDirectiveNoFileComp
	}

	var result []string
	for _, c := range contributors {
		if id := c.Identity(); strings.HasPrefix(id, toComplete) {
			result = append(result, id)
		}
	}
	return result, ra.CompletionDirectiveNoFileComp
}

// completeMembers returns configured member IDs matching the given prefix.
func completeMembers(toComplete string) ([]string, ra.CompletionDirective) {
	initCompletionCtx()
	if compCtx.err != nil {
		return nil, ra.CompletionDirectiveNoFileComp
	}

	var result []string
	for _, m := range compCtx.cfg.Members {
		if strings.HasPrefix(m.ID, toComplete) {
			result = append(result, m.ID)
		}
	}
	return result, ra.CompletionDirectiveNoFileComp
}

// completeRoles returns the known member roles matching the given prefix.
func completeRoles(toComplete string) ([]string, ra.CompletionDirective) {
	var result []string
	for _, role := range []string{model.RoleCurrent, model.RoleGraduated} {
		if strings.HasPrefix(role, toComplete) {
			result = append(result, role)
		}
	}
	return result, ra.CompletionDirectiveNoFileComp
}

// configFromArgs scans the argument list for an explicit -c/--config flag value.
func configFromArgs(args []string) string {
	for i, arg := range args {
		// --config=value or -c=value (skip empty values so fallback logic runs)
		if strings.HasPrefix(arg, "--config=") {
			if v := strings.TrimPrefix(arg, "--config="); v != "" {
				return v
			}
		}
		if strings.HasPrefix(arg, "-c=") {
			if v := strings.TrimPrefix(arg, "-c="); v != "" {
				return v
			}
		}
		// --config value or -c value
		if (arg == "--config" || arg == "-c") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// registerCompletion adds the "memmap completion <shell>" command.
func registerCompletion(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("completion")
	cmd.SetDescription("Output shell completion script")

	ctx.CompletionShell, _ = ra.NewString("shell").
		SetUsage("Shell type").
		SetEnumConstraint([]string{"bash", "zsh"}).
		Register(cmd)

	ctx.CompletionUsed, _ = parent.RegisterCmd(cmd)
}

// runCompletion outputs the shell completion script to stdout.
func runCompletion(shell string, rootCmd *ra.Cmd) {
	var err error
	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(os.Stdout)
	default:
		Fatal(fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell))
	}
	if err != nil {
		Fatal(fmt.Errorf("failed to generate completion script: %w", err))
	}
}
