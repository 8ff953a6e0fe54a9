package cli

import (
	"context"

	"github.com/amterp/ra"
)

func registerContributions(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("contributions")
	cmd.SetDescription("Recount each contributor's memories from the memory files")

	ctx.ContributionsUsed, _ = parent.RegisterCmd(cmd)
}

func runContributions(configPath string, jsonOutput bool) {
	ctx := context.Background()
	app, err := NewApp(ctx, configPath, false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	updated, err := app.Memories.RefreshContributions(ctx)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(RefreshOutput{Updated: updated}); err != nil {
			Fatal(err)
		}
		return
	}
	PrintSuccess("Refreshed contributions (%d contributor(s) updated)", updated)
}
