// Command seedcategories logs in as an admin over HTTP and creates the
// default course categories. Categories that already exist are reported as
// skipped. With -list it prints the server's categories and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dalemusser/studyplanet/internal/app/seed"
	"go.uber.org/zap"
)

func main() {
	var (
		baseURL  string
		email    string
		password string
		list     bool
	)
	flag.StringVar(&baseURL, "base", envOr("STUDYPLANET_API_BASE", seed.DefaultBaseURL), "API base URL")
	flag.StringVar(&email, "email", os.Getenv("STUDYPLANET_ADMIN_EMAIL"), "admin email")
	flag.StringVar(&password, "password", os.Getenv("STUDYPLANET_ADMIN_PASSWORD"), "admin password")
	flag.BoolVar(&list, "list", false, "print existing categories and exit")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	client := seed.NewClient(baseURL, logger)

	if list {
		cats, err := client.ListCategories(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("Found", len(cats), "categories")
		for _, c := range cats {
			fmt.Println("-", c.Name)
		}
		return
	}

	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "admin credentials not set: use -email/-password or STUDYPLANET_ADMIN_EMAIL/STUDYPLANET_ADMIN_PASSWORD")
		os.Exit(1)
	}

	token, err := client.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Login failed:", err)
		os.Exit(1)
	}

	created := 0
	for _, o := range client.SeedCategories(ctx, token, seed.DefaultCategories) {
		if o.Created {
			created++
			fmt.Println(o.Name, "=> created")
		} else {
			fmt.Println(o.Name, "=> skipped:", o.Err)
		}
	}
	fmt.Printf("Done: %d created, %d skipped\n", created, len(seed.DefaultCategories)-created)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
