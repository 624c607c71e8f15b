// seed_countries.go loads a country dataset and creates each record through the Compass API.
//
// Usage:
//
//	go run scripts/seed_countries.go -data countries.yaml -api http://localhost:8700
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Compass/internal/cli"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

func main() {
	dataPath := flag.String("data", "countries.yaml", "path to country dataset YAML")
	apiURL := flag.String("api", "http://localhost:8700", "Compass API base URL")
	dryRun := flag.Bool("dry-run", false, "print countries without posting")
	flag.Parse()

	countries, err := cli.LoadDataset(*dataPath, scoring.DefaultCriteria())
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	log.Printf("loaded %d countries from %s", len(countries), *dataPath)

	if *dryRun {
		for i, c := range countries {
			fmt.Printf("[%d] %s %v\n", i+1, c.Name, c.Values)
		}
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	created, skipped := 0, 0
	for _, c := range countries {
		body, _ := json.Marshal(c)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/countries", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %q: %v", c.Name, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %q: %v", c.Name, err)
			skipped++
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			log.Printf("skip %q: already exists", c.Name)
			skipped++
		default:
			log.Printf("skip %q: status %d", c.Name, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}
