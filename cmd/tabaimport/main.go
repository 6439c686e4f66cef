// Command tabaimport loads a question bank spreadsheet (.xlsx or .csv) into
// the configured database.
//
// Columns (header row, any order): course, topic, type, question, options,
// drag_items, correct_answer, explanation. List cells use "|".
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/taba-id/taba/internal/config"
	"github.com/taba-id/taba/internal/db"
	"github.com/taba-id/taba/internal/importer"
	"github.com/taba-id/taba/internal/quiz"
)

func main() {
	sheet := flag.String("sheet", "", "xlsx sheet name (default: first sheet)")
	sep := flag.String("sep", "|", "list separator inside cells")
	dryRun := flag.Bool("dry-run", false, "validate only, write nothing")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: tabaimport [flags] FILE.xlsx|FILE.csv\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if err := config.Load(); err != nil {
		log.Fatalf("env file: %v", err)
	}
	cfg := config.FromEnv()
	icfg := importer.Config{Sheet: *sheet, Separator: *sep}

	format, err := importer.FormatFromName(path)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if *dryRun {
		rows, err := importer.Rows(f, format, icfg)
		if err != nil {
			log.Fatal(err)
		}
		qs, errs, err := importer.Parse(rows, icfg)
		if err != nil {
			log.Fatal(err)
		}
		report(&importer.Result{TotalProcessed: len(qs) + len(errs), Created: len(qs), Skipped: len(errs), Errors: errs})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	res, err := importer.Import(ctx, quiz.NewSQLStore(dbh), f, format, icfg)
	if res != nil {
		report(res)
	}
	if err != nil {
		log.Fatalf("import: %v", err)
	}
}

func report(res *importer.Result) {
	log.Printf("processed %d rows: %d created, %d skipped", res.TotalProcessed, res.Created, res.Skipped)
	for _, e := range res.Errors {
		log.Printf("  %s", e)
	}
}
