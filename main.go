package main

import (
	"log"
	"os"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/app"
)

func main() {
	if err := app.New().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
