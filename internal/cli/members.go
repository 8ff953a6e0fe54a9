package cli

import (
	"context"
	"fmt"

	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/ra"
)

func registerMembers(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("members")
	cmd.SetDescription("List configured members")

	ctx.MembersRole, _ = ra.NewString("role").
		SetShort("r").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Only members with this role").
		SetCompletionFunc(completeRoles).
		Register(cmd)

	ctx.MembersUsed, _ = parent.RegisterCmd(cmd)
}

func registerMemories(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("memories")
	cmd.SetDescription("List memories")

	ctx.MemoriesTarget, _ = ra.NewString("target").
		SetShort("t").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Only memories left for this member").
		SetCompletionFunc(completeMembers).
		Register(cmd)

	ctx.MemoriesUsed, _ = parent.RegisterCmd(cmd)
}

func runMembers(configPath, role string, jsonOutput bool) {
	app, err := NewApp(context.Background(), configPath, false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	members := app.Members.ByRole(role)

	if jsonOutput {
		if err := printJson(NewMembersOutput(members)); err != nil {
			Fatal(err)
		}
		return
	}

	if len(members) == 0 {
		PrintInfo("No members configured")
		return
	}
	for _, m := range members {
		fmt.Printf("%s %s %s\n", RenderID(m.ID), m.Name, RenderMuted(memberDetail(m)))
	}
}

func memberDetail(m model.Member) string {
	detail := m.Role
	if m.GraduationDate != "" {
		detail += ", graduated " + m.GraduationDate
	}
	if !m.IsActive {
		detail += ", inactive"
	}
	if detail == "" {
		return ""
	}
	return "(" + detail + ")"
}

func runMemories(configPath, target string, jsonOutput bool) {
	ctx := context.Background()
	app, err := NewApp(ctx, configPath, false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	var memories []*model.Memory
	if target != "" {
		if app.Members.Len() > 0 && !app.Members.Exists(target) {
			Fatal(fmt.Errorf("member %q not found", target))
		}
		memories, err = app.Memories.ForTarget(ctx, target)
	} else {
		memories, err = app.Memories.List(ctx)
	}
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(NewMemoriesOutput(memories)); err != nil {
			Fatal(err)
		}
		return
	}

	if len(memories) == 0 {
		PrintInfo("No memories found")
		return
	}
	for _, m := range memories {
		title := m.Title
		if title == "" {
			title = RenderMuted("(untitled)")
		}
		from := m.ContributorName
		if from == "" {
			from = m.ContributorKey()
		}
		fmt.Printf("%s %s %s %s\n", ColorSwatch(m.ContributorColor), RenderID(m.ID), title,
			RenderMuted(fmt.Sprintf("for %s from %s", m.TargetUserID, from)))
	}
}
