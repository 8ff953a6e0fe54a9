package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/amterp/memmap/internal/service"
	"github.com/amterp/ra"
)

func registerColor(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("color")
	cmd.SetDescription("Show the color assigned to a contributor")

	ctx.ColorIdentity, _ = ra.NewString("identity").
		SetUsage("Contributor email or ID").
		SetCompletionFunc(completeContributors).
		Register(cmd)

	ctx.ColorAssign, _ = ra.NewBool("assign").
		SetShort("a").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Assign a color if the identity has none").
		Register(cmd)

	ctx.ColorUsed, _ = parent.RegisterCmd(cmd)
}

func registerColors(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("colors")
	cmd.SetDescription("Inspect and repair contributor colors")

	listCmd := ra.NewCmd("list")
	listCmd.SetDescription("List every color assignment")
	ctx.ColorsListUsed, _ = cmd.RegisterCmd(listCmd)

	checkCmd := ra.NewCmd("check")
	checkCmd.SetDescription("Check colors for duplicates and drift. Exit 0 if healthy, 1 if errors found.")
	ctx.ColorsCheckUsed, _ = cmd.RegisterCmd(checkCmd)

	fixCmd := ra.NewCmd("fix")
	fixCmd.SetDescription("Repair duplicate, missing and out-of-sync colors")
	ctx.ColorsFixDryRun, _ = ra.NewBool("dry-run").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Show what would change without writing").
		Register(fixCmd)
	ctx.ColorsFixUsed, _ = cmd.RegisterCmd(fixCmd)

	ctx.ColorsUsed, _ = parent.RegisterCmd(cmd)
}

func runColor(configPath, identity string, assign, jsonOutput bool) {
	ctx := context.Background()
	app, err := NewApp(ctx, configPath, false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	colorHex, ok := app.Engine.Lookup(identity)
	if !ok && assign {
		colorHex = app.Engine.Assign(ctx, identity)
		ok = true
	}
	if !ok {
		colorHex = app.Engine.DefaultColor()
	}

	if jsonOutput {
		if err := printJson(ColorOutput{Identity: identity, Color: colorHex, Assigned: ok}); err != nil {
			Fatal(err)
		}
		return
	}

	if ok {
		fmt.Printf("%s %s\n", RenderColor(colorHex), RenderID(identity))
	} else {
		fmt.Printf("%s %s %s\n", RenderColor(colorHex), RenderID(identity), RenderMuted("(unassigned, default)"))
	}
}

func runColorsList(configPath string, jsonOutput bool) {
	app, err := NewApp(context.Background(), configPath, false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	state := app.Engine.Snapshot()

	if jsonOutput {
		if err := printJson(NewColorsOutput(app.Engine.Palette().Colors(), app.Engine.DefaultColor(), state)); err != nil {
			Fatal(err)
		}
		return
	}

	if len(state.Assignments) == 0 {
		PrintInfo("No colors assigned yet")
		return
	}

	identities := make([]string, 0, len(state.Assignments))
	for id := range state.Assignments {
		identities = append(identities, id)
	}
	sort.Strings(identities)

	for _, id := range identities {
		fmt.Printf("%s %s\n", RenderColor(state.Assignments[id]), id)
	}
	fmt.Println()
	fmt.Println(RenderMuted(fmt.Sprintf("%d assigned, palette of %d, next index %d",
		len(state.Assignments), app.Engine.Palette().Len(), state.Cursor)))
}

func runColorsCheck(configPath string, jsonOutput bool) {
	ctx := context.Background()
	app, err := NewApp(ctx, configPath, false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	report, err := app.ColorDoctor.Diagnose(ctx)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(report); err != nil {
			Fatal(err)
		}
	} else {
		printColorReport(report, false)
	}

	if report.HasErrors() {
		app.Close()
		os.Exit(1)
	}
}

func runColorsFix(configPath string, dryRun, interactive, jsonOutput bool) {
	ctx := context.Background()
	app, err := NewApp(ctx, configPath, interactive)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	// Show the plan and ask before rewriting records.
	if !dryRun && interactive && !jsonOutput {
		plan, err := app.ColorDoctor.Fix(ctx, true)
		if err != nil {
			Fatal(err)
		}
		if len(plan.Changes) == 0 {
			printColorReport(plan, false)
			return
		}
		printChanges(plan.Changes)
		ok, err := app.Prompter.Confirm(fmt.Sprintf("Apply %d change(s)?", len(plan.Changes)), true)
		if err != nil {
			Fatal(err)
		}
		if !ok {
			PrintInfo("Aborted")
			return
		}
	}

	report, err := app.ColorDoctor.Fix(ctx, dryRun)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(report); err != nil {
			Fatal(err)
		}
	} else {
		printColorReport(report, !dryRun)
	}

	if report.HasErrors() {
		app.Close()
		os.Exit(1)
	}
}

func printColorReport(report *service.ColorReport, didFix bool) {
	fmt.Printf("Checking %s contributor(s) against a palette of %d...\n",
		RenderBold(fmt.Sprint(report.Contributors)), report.PaletteSize)
	fmt.Printf("  Distinct colors: %d\n", report.Distinct)
	fmt.Println()

	if report.DryRun && len(report.Changes) > 0 {
		PrintInfo("Dry run: %d change(s) would be made", len(report.Changes))
		printChanges(report.Changes)
		fmt.Println()
	}

	fixedCount := 0
	if didFix {
		fixedCount = report.Summary.Fixed
	}
	if fixedCount > 0 {
		PrintSuccess("Fixed %d color(s)", fixedCount)
		fmt.Println()
	}

	if len(report.Issues) == 0 {
		if fixedCount == 0 {
			PrintSuccess("No issues found")
		} else {
			PrintSuccess("All issues resolved")
		}
		return
	}

	var errors, warnings []service.Issue
	for _, issue := range report.Issues {
		if issue.Severity == service.SeverityError {
			errors = append(errors, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}
	for _, issue := range errors {
		printIssue(issue)
	}
	for _, issue := range warnings {
		printIssue(issue)
	}

	fmt.Println()
	var summaryParts []string
	if report.Summary.Errors > 0 {
		summaryParts = append(summaryParts, StyleError.Render(fmt.Sprintf("%d error(s)", report.Summary.Errors)))
	}
	if report.Summary.Warnings > 0 {
		summaryParts = append(summaryParts, StyleWarning.Render(fmt.Sprintf("%d warning(s)", report.Summary.Warnings)))
	}
	if fixedCount > 0 {
		summaryParts = append(summaryParts, StyleSuccess.Render(fmt.Sprintf("%d fixed", fixedCount)))
	}
	fmt.Printf("Summary: %s\n", joinParts(summaryParts))

	if !didFix && hasFixable(report.Issues) {
		fmt.Println()
		if report.DryRun {
			PrintInfo("Run 'memmap colors fix' to apply these changes")
		} else {
			PrintInfo("Run 'memmap colors fix' to repair automatically")
		}
	}
}

func printIssue(issue service.Issue) {
	icon, code := RenderSeverity(issue)

	swatch := ""
	if issue.Color != "" {
		swatch = " " + ColorSwatch(issue.Color)
	}
	fmt.Printf("%s %s%s %s\n", icon, code, swatch, issue.Message)
}

func printChanges(changes []service.ColorChange) {
	for _, ch := range changes {
		subject := RenderID(ch.Identity)
		if ch.MemoryID != "" {
			subject = fmt.Sprintf("memory %s (%s)", RenderID(ch.MemoryID), ch.Identity)
		}
		from := ch.From
		if from == "" {
			from = "none"
		}
		fmt.Printf("  %s %s %s %s %s\n", subject, ColorSwatch(ch.From), RenderMuted(from+" →"), ColorSwatch(ch.To), ch.To)
	}
}

func hasFixable(issues []service.Issue) bool {
	for _, issue := range issues {
		if issue.Fixable {
			return true
		}
	}
	return false
}

func joinParts(parts []string) string {
	result := ""
	for i, p := range parts {
		if i > 0 {
			result += ", "
		}
		result += p
	}
	return result
}
