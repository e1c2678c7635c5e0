package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/adminapi"
	"github.com/cafedesk/cafedesk/internal/app"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

var (
	cfile   = flag.String("c", "/etc/cafedesk.yml", "config file")
	initdb  = flag.Bool("initdb", false, "drop and recreate the mirror schema, then exit")
	showver = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showver {
		fmt.Println("cafedesk", version)
		return
	}

	cfg := config.LoadConfig(*cfile)
	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "workdir error:", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("mirror schema recreated")
		return
	}

	application.StartBackgroundJobs(context.Background())

	webserver.Init(application)
	adminapi.InitRouter()
	if err := webserver.Listen(); err != nil {
		zap.L().Fatal("web server exited", zap.Error(err))
	}
}
