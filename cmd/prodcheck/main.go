package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prodcheck/prodcheck-go/pkg/authcheck"
	"github.com/prodcheck/prodcheck-go/pkg/models"
)

func main() {
	image := flag.String("image", "", "path to the product image file (required)")
	api := flag.String("api", "", "backend base URL (default $PRODCHECK_API_URL or http://localhost:5000)")
	timeout := flag.Duration("timeout", 60*time.Second, "request timeout")
	asJSON := flag.Bool("json", false, "print the raw result as JSON")
	quiet := flag.Bool("quiet", false, "suppress progress output")
	flag.Parse()

	if *image == "" {
		fmt.Fprintln(os.Stderr, "usage: prodcheck -image <file> [-api <url>] [-timeout <d>] [-json]")
		os.Exit(2)
	}

	baseURL := *api
	if baseURL == "" {
		baseURL = os.Getenv("PRODCHECK_API_URL")
	}

	client := authcheck.NewClient(baseURL, authcheck.WithTimeout(*timeout))

	var report authcheck.Reporter
	if !*quiet {
		report = func(u models.ProgressUpdate) {
			fmt.Fprintf(os.Stderr, "[%3d%%] %-10s %s\n", u.Percentage, u.Stage, u.Message)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := client.CheckProductAuthenticity(ctx, *image, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Similarity score: %.0f/100\n", result.SimilarityScore)
	fmt.Printf("Official listing: %s\n", result.OriginalLink)
	if len(result.OtherLinks) > 0 {
		fmt.Println("Marketplace links:")
		for _, link := range result.OtherLinks {
			fmt.Printf("  [%-6s] %s\n", link.TrustRating, link.URL)
		}
	}
	fmt.Printf("\n%s\n", result.Explanation)
}
