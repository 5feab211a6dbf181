package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbanforge/buildsim/internal/prefab"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect prefab catalogs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a prefab catalog and print what it contains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Catalog.Path
			}
			cat, err := prefab.Load(path)
			if err != nil {
				return err
			}
			printCatalog(path, cat)
			return nil
		},
	})
	return cmd
}

func printCatalog(path string, cat *prefab.Catalog) {
	var geometry, cranes, meshes, areas, nets, placeholders int
	for _, id := range cat.IDs() {
		if _, ok := cat.Geometry(id); ok {
			geometry++
		}
		if _, ok := cat.Crane(id); ok {
			cranes++
		}
		if _, ok := cat.Mesh(id); ok {
			meshes++
		}
		if _, ok := cat.Area(id); ok {
			areas++
		}
		if _, ok := cat.Net(id); ok {
			nets++
		}
		if len(cat.Variants(id)) > 0 {
			placeholders++
		}
	}
	printSection("catalog")
	printOK(fmt.Sprintf("%s is valid", path))
	printStat("prefabs", cat.Count())
	printStat("with geometry", geometry)
	printStat("cranes", cranes)
	printStat("meshes", meshes)
	printStat("areas", areas)
	printStat("nets", nets)
	printStat("placeholders", placeholders)
	if s := cat.Configuration().CollapsedSurface; !s.IsNull() {
		printOK(fmt.Sprintf("collapsed surface: %s", s))
	} else {
		printSkip("no collapsed surface configured, demolitions leave no rubble")
	}
}
