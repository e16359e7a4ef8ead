package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/alparslanahmed/knnreader"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run example/main.go <path-to-image>")
		os.Exit(1)
	}

	imagePath := os.Args[1]
	cfg := knnreader.DefaultConfig()

	// Train the classifier from the OpenCV XML files next to the binary
	classifier, err := knnreader.NewKNNClassifierFromFiles("classifications.xml", "images.xml", cfg)
	if err != nil {
		log.Fatalf("Failed to load training data: %v", err)
	}

	// Create a new reader
	reader, err := knnreader.NewReader(cfg, classifier)
	if err != nil {
		log.Fatalf("Failed to create reader: %v", err)
	}
	reader.SetDebug(false) // Set to true to dump intermediate images

	// Read the image
	result, err := reader.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	// Print the results as JSON
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	fmt.Println(string(jsonData))

	// Print the plain text
	fmt.Println("\n=== Recognized Text ===")
	for i, line := range result.Strings() {
		fmt.Printf("%2d: %s\n", i+1, line)
	}
}
