// Seeds the issue_records table from a CSV export of existing GitHub
// issues so duplicate detection knows about bugs filed before this
// service was deployed.
//
// CSV columns: number,title,html_url,severity,category,message
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/database"
	"github.com/wrferreira1003/Bug-Finder/internal/dedup"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/mysql"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	repo := mysql.NewIssueRepository(db)

	csvPath := "known_issues.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	file, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("Error opening CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 6

	ctx := context.Background()
	seeded := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Error reading CSV row: %v", err)
			continue
		}

		number, err := strconv.Atoi(row[0])
		if err != nil {
			log.Printf("Skipping row with invalid issue number %q: %v", row[0], err)
			continue
		}

		category := model.BugCategory(row[4])
		record := &model.IssueRecord{
			Number:      number,
			Title:       row[1],
			HTMLURL:     row[2],
			Severity:    row[3],
			Category:    row[4],
			Fingerprint: dedup.Fingerprint(category, row[5]),
			CreatedAt:   time.Now().UTC(),
		}

		if err := repo.Save(ctx, record); err != nil {
			log.Printf("Error saving issue #%d: %v", number, err)
			continue
		}
		fmt.Printf("Seeded issue #%d successfully\n", number)
		seeded++
	}

	fmt.Printf("Done, seeded %d issues\n", seeded)
}
