package main

import (
	"context"
	"log"
	"os"

	"calterm/internal/commands"
)

func main() {
	ctx := context.Background()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		log.Println("calterm:", err)
		os.Exit(1)
	}
}
