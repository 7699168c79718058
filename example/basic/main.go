package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/siherrmann/timeliner"
	"github.com/siherrmann/timeliner/core/corpus"
	"github.com/siherrmann/timeliner/helper"
)

const sampleCorpus = `[
	{
		"doc_id": "sample_1",
		"title": "Lithium experience",
		"body": "I started lithium on 2019-03-02. I stopped it 2019-08-15 because of tremors.",
		"dct": "2020-01-10",
		"author": "example_author",
		"subreddit": "bipolar",
		"meds": [
			{"type": "med", "entity_id": "med_1", "source": 0, "span": [0, 7], "string": "Lithium"},
			{"type": "med", "entity_id": "med_1", "source": 1, "span": [10, 17], "string": "lithium"}
		],
		"dates": [
			{"type": "date", "entity_id": "date_1", "source": 1, "span": [21, 31], "string": "2019-03-02"},
			{"type": "date", "entity_id": "date_2", "source": 1, "span": [46, 56], "string": "2019-08-15"}
		],
		"labels": {"med_1": {"DCT": "after", "date_1": "start", "date_2": "stop"}}
	}
]`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	t := timeliner.NewTimeliner(nil)
	defer t.Close()

	if err := t.ConnectStore(dbConfig); err != nil {
		log.Fatalf("Failed to connect store: %v", err)
	}

	dir, err := os.MkdirTemp("", "timeliner-basic")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "labelled_data.json")
	if err := os.WriteFile(input, []byte(sampleCorpus), 0600); err != nil {
		log.Fatalf("Failed to write corpus: %v", err)
	}

	fmt.Println("Converting corpus...")
	report, err := t.Convert(context.Background(), input, dir, "sample", corpus.ReadOptions{})
	if err != nil {
		log.Fatalf("Failed to convert corpus: %v", err)
	}
	fmt.Printf("Accepted %d documents, stored %d\n", report.Accepted, report.Stored)

	example, err := t.Examples.SelectExampleByDocID(context.Background(), "sample_1")
	if err != nil {
		log.Fatalf("Failed to select example: %v", err)
	}

	fmt.Printf("\nDoctext:\n%s\n", example.DocText)
	for i, tmpl := range example.Templates {
		fmt.Printf("\n--- Template %d ---\n", i+1)
		fmt.Printf("Medication: %v\n", tmpl.Medication)
		fmt.Printf("Start: %v .. %v\n", tmpl.StartMin, tmpl.StartMax)
		fmt.Printf("Stop:  %v .. %v\n", tmpl.StopMin, tmpl.StopMax)
	}

	fmt.Println("\nBasic example completed successfully!")
}
