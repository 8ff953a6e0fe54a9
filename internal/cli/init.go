package cli

import (
	"os"

	"github.com/amterp/memmap/internal/service"
	"github.com/amterp/memmap/internal/store"
	"github.com/amterp/ra"
)

func registerInit(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("init")
	cmd.SetDescription("Create the data directory and a default config.toml")

	ctx.InitDataDir, _ = ra.NewString("data-dir").
		SetOptional(true).
		SetUsage("Data directory to create (default: $MEMMAP_DATA_DIR or ./data)").
		Register(cmd)

	ctx.InitUsed, _ = parent.RegisterCmd(cmd)
}

func runInit(dataDir string, jsonOutput bool) {
	if dataDir == "" {
		dataDir = os.Getenv(store.EnvDataDir)
	}

	result, err := service.NewInitService().Initialize(dataDir)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(NewInitOutput(result)); err != nil {
			Fatal(err)
		}
		return
	}

	PrintSuccess("Initialized memmap in %s", RenderBold(result.DataDir))
	if result.ConfigCreated {
		PrintInfo("Wrote %s", result.ConfigPath)
	} else {
		PrintInfo("Kept existing %s", result.ConfigPath)
	}
}
