package cli

import (
	"regexp"

	"github.com/spf13/cobra"

	"github.com/mydehq/metamatch/internal/ui"
)

const coloredUsageTmpl = `{{Header "Usage:"}}
  {{if .Runnable}}{{Usage .UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{Command .CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{Header "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{Header "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{Header "Available Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{Command (printf "%-15s" .Name)}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{Header "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | Flags}}{{end}}{{if .HasAvailableInheritedFlags}}

{{Header "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces | Flags}}{{end}}{{if .HasAvailableSubCommands}}

{{Header "Use"}} {{Command (printf "%s [command] --help" .CommandPath)}} {{Header "for more information about a command."}}{{end}}
`

var (
	reFlagName = regexp.MustCompile(`(-\w|--[\w-]+)`)
	reRequired = regexp.MustCompile(`<[a-zA-Z0-9_-]+>`)
	reOptional = regexp.MustCompile(`\[[a-zA-Z0-9_-]+\]`)
	reCmdName  = regexp.MustCompile(`^\w+`)
	reFlagSep  = regexp.MustCompile(`, `)
)

func colorizeHelp(cmd *cobra.Command) {
	cobra.AddTemplateFunc("Header", func(s string) string {
		out := ui.StyleHeader.Render(s)
		if s == "Usage:" {
			return "\n" + out
		}
		return out
	})
	cobra.AddTemplateFunc("Command", func(s string) string { return ui.StyleCommand.Render(s) })

	cobra.AddTemplateFunc("Flags", func(s string) string {
		s = reFlagName.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StyleFlag.Render(match)
		})
		return reFlagSep.ReplaceAllString(s, ui.StyleDim.Render(", "))
	})

	// <args> are required, [args] optional
	cobra.AddTemplateFunc("Usage", func(s string) string {
		s = reRequired.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StylePath.Render(match)
		})
		s = reOptional.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StyleDim.Render(match)
		})
		return reCmdName.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StyleCommand.Render(match)
		})
	})

	cmd.SetUsageTemplate(coloredUsageTmpl)
}
