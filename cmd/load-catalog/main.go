package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"entre-nous/internal/config"
	"entre-nous/internal/db"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type questionRecord struct {
	Level       int
	SortOrder   int
	Text        string
	Suggestions []string
}

type eventRecord struct {
	Type         string
	Title        string
	Description  string
	Level        int
	RequiresBoth bool
	IsPrivate    bool
	SortOrder    int
}

func main() {
	questionsPath := flag.String("questions", "questions.csv", "path to questions csv")
	eventsPath := flag.String("events", "events.csv", "path to events csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	questions, err := readQuestions(*questionsPath)
	if err != nil {
		log.Fatalf("failed to read questions: %v", err)
	}
	for _, record := range questions {
		suggestions, err := json.Marshal(record.Suggestions)
		if err != nil {
			log.Fatalf("failed to encode suggestions: %v", err)
		}
		entry := db.Question{
			Question:    record.Text,
			Level:       record.Level,
			SortOrder:   record.SortOrder,
			Suggestions: datatypes.JSON(suggestions),
		}
		where := db.Question{Question: record.Text, Level: record.Level}
		entry.ID = uuid.NewString()
		if err := conn.Where(where).FirstOrCreate(&entry).Error; err != nil {
			log.Fatalf("failed to upsert question: %v", err)
		}
	}
	log.Printf("loaded %d questions", len(questions))

	events, err := readEvents(*eventsPath)
	if err != nil {
		log.Fatalf("failed to read events: %v", err)
	}
	for _, record := range events {
		entry := db.GameEvent{
			Type:         record.Type,
			Title:        record.Title,
			Description:  record.Description,
			Level:        record.Level,
			RequiresBoth: record.RequiresBoth,
			IsPrivate:    record.IsPrivate,
			SortOrder:    record.SortOrder,
		}
		where := db.GameEvent{Title: record.Title, Level: record.Level}
		entry.ID = uuid.NewString()
		if err := conn.Where(where).FirstOrCreate(&entry).Error; err != nil {
			log.Fatalf("failed to upsert event: %v", err)
		}
	}
	log.Printf("loaded %d events", len(events))
}

// readQuestions parses rows of level,sort_order,text,suggestions where
// suggestions is a |-separated list and may be empty. The header row is
// skipped.
func readQuestions(path string) ([]questionRecord, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var records []questionRecord
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		level, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		order, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		text := strings.TrimSpace(row[2])
		if text == "" {
			continue
		}
		record := questionRecord{Level: level, SortOrder: order, Text: text}
		if len(row) > 3 {
			for _, s := range strings.Split(row[3], "|") {
				if s = strings.TrimSpace(s); s != "" {
					record.Suggestions = append(record.Suggestions, s)
				}
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// readEvents parses rows of type,title,description,level,requires_both,
// is_private,sort_order. The header row is skipped.
func readEvents(path string) ([]eventRecord, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var records []eventRecord
	for i, row := range rows {
		if i == 0 || len(row) < 7 {
			continue
		}
		level, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			continue
		}
		order, err := strconv.Atoi(strings.TrimSpace(row[6]))
		if err != nil {
			continue
		}
		record := eventRecord{
			Type:         strings.TrimSpace(row[0]),
			Title:        strings.TrimSpace(row[1]),
			Description:  strings.TrimSpace(row[2]),
			Level:        level,
			RequiresBoth: parseBool(row[4]),
			IsPrivate:    parseBool(row[5]),
			SortOrder:    order,
		}
		if record.Type == "" || record.Title == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}
