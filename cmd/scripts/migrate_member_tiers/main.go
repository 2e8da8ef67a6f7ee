package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"gorm.io/gorm/logger"

	"github.com/luneclub/lune/backend/internal/config"
	"github.com/luneclub/lune/backend/internal/models"
)

type tierCount struct {
	Tier  string
	Count int64
}

// Rewrites member tiers stored under their pre-launch names (BASIC,
// PREMIUM) to the current ladder. Run with -dry-run first.
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := models.Open(&cfg.Database, logger.Warn)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	printCounts := func(title string) {
		var counts []tierCount
		if err := db.Model(&models.Member{}).Select("tier, COUNT(*) as count").Group("tier").Scan(&counts).Error; err != nil {
			fmt.Printf("Failed to count members: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(title)
		fmt.Printf("%-12s %8s\n", "Tier", "Members")
		fmt.Println("---------------------")
		for _, c := range counts {
			fmt.Printf("%-12s %8d\n", c.Tier, c.Count)
		}
		fmt.Println("")
	}

	printCounts("Members by tier before migration:")

	legacy := models.LegacyTierNames()
	names := make([]string, 0, len(legacy))
	for name := range legacy {
		names = append(names, name)
	}
	sort.Strings(names)

	var total int64
	for _, name := range names {
		target := legacy[name]
		if *dryRun {
			var n int64
			db.Model(&models.Member{}).Where("tier = ?", name).Count(&n)
			fmt.Printf("would rewrite %d members from %s to %s\n", n, name, target)
			total += n
			continue
		}

		result := db.Model(&models.Member{}).Where("tier = ?", name).Update("tier", target)
		if result.Error != nil {
			fmt.Printf("Failed to rewrite %s: %v\n", name, result.Error)
			os.Exit(1)
		}
		fmt.Printf("rewrote %d members from %s to %s\n", result.RowsAffected, name, target)
		total += result.RowsAffected
	}
	fmt.Println("")

	if *dryRun {
		fmt.Printf("Dry run: %d members would change.\n", total)
		return
	}
	printCounts("Members by tier after migration:")
	fmt.Printf("Migrated %d members.\n", total)
}
