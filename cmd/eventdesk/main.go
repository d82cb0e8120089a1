package main

import (
	"context"
	"log"

	"github.com/dalemusser/eventdesk/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.NewHooks()); err != nil {
		log.Fatal(err)
	}
}
