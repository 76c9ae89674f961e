package main

import (
	"flag"
	"os"
	"time"

	"github.com/TurnIfCode/backend-gogo/pkg/database"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
)

func main() {
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month to report (YYYY-MM)")
	username := flag.String("user", "", "restrict to one username")
	list := flag.Bool("list", false, "list matching topups")
	flag.Parse()

	db, err := database.FromEnv()
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}

	var userID string
	if *username != "" {
		if userID, err = lookupUserID(db, *username); err != nil {
			logger.Fatal(err)
		}
	}
	s, err := monthly(db, *month, userID)
	if err != nil {
		logger.Fatal(err)
	}
	printSummary(os.Stdout, s)

	if *list {
		rows, err := listMonth(db, s)
		if err != nil {
			logger.Fatalf("fetch rows failed: %v", err)
		}
		printRows(os.Stdout, rows)
	}
}
