package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/berbagi/internal/buildinfo"
	"github.com/dmitrijs2005/berbagi/internal/config"
	"github.com/dmitrijs2005/berbagi/internal/server"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
