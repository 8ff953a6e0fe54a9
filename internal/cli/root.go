package cli

import (
	"os"

	"github.com/amterp/ra"
)

// CommandContext holds parsed values and used flags for all commands.
type CommandContext struct {
	// Global flags
	ConfigPath     *string
	NonInteractive *bool
	Json           *bool

	// init command
	InitUsed    *bool
	InitDataDir *string

	// serve command
	ServeUsed    *bool
	ServeHost    *string
	ServePort    *int
	ServeNoWatch *bool

	// register command
	RegisterUsed       *bool
	RegisterEmail      *string
	RegisterName       *string
	RegisterRole       *string
	RegisterDepartment *string

	// color command
	ColorUsed     *bool
	ColorIdentity *string
	ColorAssign   *bool

	// colors command
	ColorsUsed      *bool
	ColorsListUsed  *bool
	ColorsCheckUsed *bool
	ColorsFixUsed   *bool
	ColorsFixDryRun *bool

	// members command
	MembersUsed *bool
	MembersRole *string

	// memories command
	MemoriesUsed   *bool
	MemoriesTarget *string

	// contributions command
	ContributionsUsed *bool

	// completion command
	CompletionUsed  *bool
	CompletionShell *string
}

// Run is the main entry point for the CLI.
func Run() {
	ctx := &CommandContext{}

	cmd := ra.NewCmd("memmap")
	cmd.SetDescription("Shared memory map with distinct contributor colors")

	ctx.ConfigPath, _ = ra.NewString("config").
		SetShort("c").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Path to config.toml (default: <data dir>/config.toml)").
		Register(cmd, ra.WithGlobal(true))

	ctx.NonInteractive, _ = ra.NewBool("non-interactive").
		SetShort("I").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Fail instead of prompting for missing input").
		Register(cmd, ra.WithGlobal(true))

	ctx.Json, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Print machine-readable JSON").
		Register(cmd, ra.WithGlobal(true))

	registerInit(cmd, ctx)
	registerServe(cmd, ctx)
	registerRegister(cmd, ctx)
	registerColor(cmd, ctx)
	registerColors(cmd, ctx)
	registerMembers(cmd, ctx)
	registerMemories(cmd, ctx)
	registerContributions(cmd, ctx)
	registerCompletion(cmd, ctx)

	cmd.ParseOrExit(os.Args[1:])

	executeCommand(ctx, cmd)
}

func executeCommand(ctx *CommandContext, rootCmd *ra.Cmd) {
	configPath := *ctx.ConfigPath
	interactive := !*ctx.NonInteractive
	jsonOutput := *ctx.Json

	switch {
	case *ctx.InitUsed:
		runInit(*ctx.InitDataDir, jsonOutput)

	case *ctx.ServeUsed:
		runServe(configPath, *ctx.ServeHost, *ctx.ServePort, *ctx.ServeNoWatch)

	case *ctx.RegisterUsed:
		runRegister(configPath, registerArgs{
			Email:      *ctx.RegisterEmail,
			Name:       *ctx.RegisterName,
			Role:       *ctx.RegisterRole,
			Department: *ctx.RegisterDepartment,
		}, interactive, jsonOutput)

	case *ctx.ColorUsed:
		runColor(configPath, *ctx.ColorIdentity, *ctx.ColorAssign, jsonOutput)

	case *ctx.ColorsCheckUsed:
		runColorsCheck(configPath, jsonOutput)

	case *ctx.ColorsFixUsed:
		runColorsFix(configPath, *ctx.ColorsFixDryRun, interactive, jsonOutput)

	case *ctx.ColorsListUsed, *ctx.ColorsUsed:
		runColorsList(configPath, jsonOutput)

	case *ctx.MembersUsed:
		runMembers(configPath, *ctx.MembersRole, jsonOutput)

	case *ctx.MemoriesUsed:
		runMemories(configPath, *ctx.MemoriesTarget, jsonOutput)

	case *ctx.ContributionsUsed:
		runContributions(configPath, jsonOutput)

	case *ctx.CompletionUsed:
		runCompletion(*ctx.CompletionShell, rootCmd)
	}
}
