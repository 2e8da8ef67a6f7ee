package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm/logger"

	"github.com/luneclub/lune/backend/internal/config"
	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/services"
)

// Lists MEMBER and CAST accounts that have no profile row. Exits 2 when any
// are found so it can gate a deploy.
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.yaml")
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
	ctx := context.Background()

	coverage, err := services.CountProfileCoverage(ctx, db)
	if err != nil {
		fmt.Printf("Failed to count profiles: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%-8s %8s %12s\n", "Role", "Users", "With profile")
	fmt.Println("------------------------------")
	for _, c := range coverage {
		fmt.Printf("%-8s %8d %12d\n", c.Role, c.Users, c.WithProfile)
	}
	fmt.Println("")

	orphans, err := services.FindOrphanedProfiles(ctx, db)
	if err != nil {
		fmt.Printf("Failed to look up orphaned users: %v\n", err)
		os.Exit(1)
	}
	if len(orphans) == 0 {
		fmt.Println("No orphaned users found.")
		return
	}

	fmt.Printf("Found %d user(s) without a profile:\n\n", len(orphans))
	for i, u := range orphans {
		fmt.Printf("%d. user #%d %s (%s)\n", i+1, u.ID, u.Email, u.Role)
		fmt.Printf("   nickname: %s, verification: %s, created: %s\n",
			u.Nickname, u.VerificationStatus, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	os.Exit(2)
}
