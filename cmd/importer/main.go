package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/config"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/db"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/importer"
	categoryrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/category"
	partrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/part"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to supplier catalog JSON export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC)
	imp := importer.NewJSONImporter(f, partrepo.NewPostgres(pool, logger), categoryrepo.NewPostgres(pool))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d parts in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
