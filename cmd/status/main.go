package main

import (
	"fmt"
	"os"
	"time"

	"github.com/o4f6bgpac3/iom-weather-scraper/app/cfg"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
)

const dateLayout = "2006-01-02"

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 2
	}
	if appCfg == nil {
		return 0
	}

	checkDate := time.Now().UTC()
	if appCfg.Date != "" {
		checkDate, err = time.Parse(dateLayout, appCfg.Date)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Invalid date format. Use YYYY-MM-DD.")
			return 2
		}
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		fmt.Println("Failed to establish database connection.")
		return 1
	}
	defer db.Close()

	if _, _, err := database.RunMigrations(db); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		return 1
	}

	succeeded, snapshotID, err := database.NewRunStatusRepository(db).Get(checkDate)
	if err != nil {
		fmt.Printf("Failed to check run status: %v\n", err)
		return 1
	}

	if succeeded && snapshotID != nil {
		fmt.Printf("Run on %s was successful. Snapshot ID: %d\n", checkDate.Format(dateLayout), *snapshotID)
		return 0
	}
	if succeeded {
		fmt.Printf("Run on %s was successful.\n", checkDate.Format(dateLayout))
		return 0
	}

	fmt.Printf("Run on %s failed or did not occur.\n", checkDate.Format(dateLayout))
	return 1
}
