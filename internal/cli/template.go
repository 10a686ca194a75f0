package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Import and inspect event templates",
}

var templateImportCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import a template from a YAML document",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateImport,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List public templates and those of your organization",
	RunE:  runTemplateList,
}

var templateShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a template's modules and tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

func init() {
	templateCmd.AddCommand(templateImportCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
}

func runTemplateImport(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	t, err := a.svc.Templates.Import(cmd.Context(), actor, args[0])
	if err != nil {
		return err
	}
	tasks := 0
	for _, m := range t.Modules {
		tasks += len(m.Tasks)
	}
	fmt.Printf("Imported template %s%s%s: %s (%d modules, %d tasks)\n",
		colorBold, t.ID, colorReset, t.Name, len(t.Modules), tasks)
	return nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	ts, err := a.svc.Templates.List(cmd.Context(), actor)
	if err != nil {
		return err
	}
	if len(ts) == 0 {
		fmt.Printf("No templates. Run: %splanner template import file.yaml%s\n", colorCyan, colorReset)
		return nil
	}
	for _, t := range ts {
		scope := "private"
		if t.IsPublic {
			scope = "public"
		}
		fmt.Printf("  %s  %-30s %s%s%s\n", t.ID, t.Name, colorDim, scope, colorReset)
	}
	return nil
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	t, err := a.svc.Templates.Get(cmd.Context(), actor, args[0])
	if err != nil {
		return err
	}

	names := make(map[string]string)
	for _, m := range t.Modules {
		for _, tb := range m.Tasks {
			names[tb.ID] = tb.Name
		}
	}

	fmt.Printf("%s%s%s  %s\n\n", colorBold, t.Name, colorReset, t.EventCategory)
	for _, m := range t.Modules {
		req := ""
		if m.Required {
			req = colorYellow + " (required)" + colorReset
		}
		fmt.Printf("%s%s%s%s  %s%s  budget %s%s\n", colorBold, m.Name, colorReset, req, colorDim, m.ID, m.BudgetHint, colorReset)
		for _, tb := range m.Tasks {
			fmt.Printf("  day +%-3d %s", tb.OrderIndex, tb.Name)
			for _, dep := range tb.DependsOn {
				fmt.Printf("  %s← %s%s", colorDim, names[dep], colorReset)
			}
			fmt.Println()
		}
	}
	return nil
}
