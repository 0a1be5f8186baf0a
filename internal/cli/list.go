package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pbdeck/pbdeck/internal/catalog"
	"github.com/pbdeck/pbdeck/internal/errors"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/playbook"
	"github.com/pbdeck/pbdeck/internal/ui"
)

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorInfo)
	listMutedStyle  = lipgloss.NewStyle().Foreground(ui.ColorMuted)
)

// inventoryCmd prints the merged host catalog.
var inventoryCmd = &cobra.Command{
	Use:   "inventory [site]",
	Short: "List sites, target types and hosts",
	Long: `List the merged inventory catalog: target-type groups and their
hosts, optionally restricted to one site.

Examples:
  pbdeck inventory
  pbdeck inventory dc1`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		site := ""
		if len(args) == 1 {
			site = args[0]
		}
		return listInventory(site)
	},
}

// playbooksCmd prints the playbook catalog.
var playbooksCmd = &cobra.Command{
	Use:   "playbooks [target-type]",
	Short: "List available playbooks",
	Long: `List the playbook catalog, optionally filtered by relevance to a
target-type group.

Examples:
  pbdeck playbooks
  pbdeck playbooks switches`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group := ""
		if len(args) == 1 {
			group = args[0]
		}
		return listPlaybooks(group)
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(playbooksCmd)
}

func loadCatalog() (catalog.Snapshot, error) {
	cfg, err := loadConfig()
	if err != nil {
		return catalog.Snapshot{}, err
	}
	cat := catalog.New(cfg.InventoryGlob, cfg.PlaybookGlob, logger.NewEnvLogger("[catalog]"))
	if err := cat.Load(); err != nil {
		return catalog.Snapshot{}, err
	}
	return cat.Snapshot(), nil
}

func listInventory(siteFilter string) error {
	snap, err := loadCatalog()
	if err != nil {
		return err
	}
	inv := snap.Inventory

	site := ""
	if siteFilter != "" {
		site = inv.MatchSite(siteFilter)
		if site == "" {
			return errors.New(errors.ErrCatalog,
				"Unknown site: "+siteFilter,
				"Run `pbdeck inventory` to see all sites")
		}
	}

	for _, g := range inv.GroupsForSite(site) {
		hosts := inv.HostsIn(g, site)
		fmt.Printf("%s %s\n", listHeaderStyle.Render(g),
			listMutedStyle.Render(fmt.Sprintf("(%d hosts)", len(hosts))))
		for _, h := range hosts {
			entry := inv.Hosts[h]
			fmt.Printf("  %-24s %-12s %s\n", h, entry.Site,
				listMutedStyle.Render(inv.Address(h)))
		}
	}

	for _, loadErr := range snap.LoadErrors {
		fmt.Printf("%s %s\n", ui.SymbolFail, errors.Message(loadErr))
	}
	return nil
}

func listPlaybooks(group string) error {
	snap, err := loadCatalog()
	if err != nil {
		return err
	}

	books := playbook.Relevant(snap.Playbooks, group)
	if len(books) == 0 {
		fmt.Println(listMutedStyle.Render("no playbooks found"))
		return nil
	}

	for _, pb := range books {
		line := listHeaderStyle.Render(pb.Name)
		if len(pb.Types) > 0 {
			line += " " + listMutedStyle.Render(fmt.Sprintf("%v", pb.Types))
		}
		fmt.Println(line)
		if pb.Description != "" {
			fmt.Println("  " + pb.Description)
		}
	}
	return nil
}
