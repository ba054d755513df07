package main

import (
	"log"

	tool "github.com/atifjaved999/mini-coaching/internal/tools/migrate"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
