package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const migrationsDir = "db/migrations"

func main() {
	name := flag.String("name", "", "migration name, e.g. add_rooms_index")
	flag.Parse()

	if *name == "" {
		log.Fatal("migration name is required")
	}
	if strings.ContainsAny(*name, " ") {
		log.Fatal("migration name must not contain spaces")
	}

	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, *name)
	upPath := filepath.Join(migrationsDir, base+".up.sql")
	downPath := filepath.Join(migrationsDir, base+".down.sql")

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}
	if err := createMigration(upPath, "-- up migration\n"); err != nil {
		log.Fatalf("create up migration: %v", err)
	}
	if err := createMigration(downPath, "-- down migration\n"); err != nil {
		log.Fatalf("create down migration: %v", err)
	}

	log.Printf("created %s and %s", upPath, downPath)
}

func createMigration(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
