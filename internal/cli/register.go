package cli

import (
	"context"
	"fmt"

	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/service"
	"github.com/amterp/ra"
)

const roleNone = "none"

func registerRegister(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("register")
	cmd.SetDescription("Register a contributor and assign their color")

	ctx.RegisterEmail, _ = ra.NewString("email").
		SetOptional(true).
		SetUsage("Contributor email (prompted if omitted)").
		SetCompletionFunc(completeContributors).
		Register(cmd)

	ctx.RegisterName, _ = ra.NewString("name").
		SetShort("n").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Display name").
		Register(cmd)

	ctx.RegisterRole, _ = ra.NewString("role").
		SetShort("r").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage(fmt.Sprintf("Contributor role (%s or %s)", model.RoleCurrent, model.RoleGraduated)).
		SetCompletionFunc(completeRoles).
		Register(cmd)

	ctx.RegisterDepartment, _ = ra.NewString("department").
		SetShort("d").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Department").
		Register(cmd)

	ctx.RegisterUsed, _ = parent.RegisterCmd(cmd)
}

type registerArgs struct {
	Email      string
	Name       string
	Role       string
	Department string
}

func runRegister(configPath string, args registerArgs, interactive, jsonOutput bool) {
	if args.Role != "" && !validRole(args.Role) {
		Fatal(fmt.Errorf("invalid role %q (expected %s or %s)", args.Role, model.RoleCurrent, model.RoleGraduated))
	}

	ctx := context.Background()
	app, err := NewApp(ctx, configPath, interactive)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	if args.Email == "" {
		args.Email, err = app.Prompter.Input("Contributor email", "", service.ValidateEmail)
		if err != nil {
			Fatal(fmt.Errorf("email is required: %w", err))
		}
	}

	// Name and role are optional; only ask when someone is there to answer.
	if interactive {
		if args.Name == "" {
			args.Name, err = app.Prompter.Input("Display name (optional)", "", nil)
			if err != nil {
				Fatal(err)
			}
		}
		if args.Role == "" {
			role, err := app.Prompter.Select("Role",
				[]string{model.RoleCurrent, model.RoleGraduated, roleNone}, roleNone)
			if err != nil {
				Fatal(err)
			}
			if role != roleNone {
				args.Role = role
			}
		}
	}

	contributor, err := app.Contributors.Register(ctx, service.RegisterInput{
		Email:      args.Email,
		Name:       args.Name,
		Role:       args.Role,
		Department: args.Department,
	})
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(NewContributorOutput(contributor)); err != nil {
			Fatal(err)
		}
		return
	}

	PrintSuccess("Registered %s", RenderID(contributor.Identity()))
	fmt.Println(LabelValue("Color", RenderColor(contributor.Color), 8))
	if contributor.Name != "" {
		fmt.Println(LabelValue("Name", contributor.Name, 8))
	}
	if contributor.Role != "" {
		fmt.Println(LabelValue("Role", contributor.Role, 8))
	}
}

func validRole(role string) bool {
	return role == model.RoleCurrent || role == model.RoleGraduated
}
