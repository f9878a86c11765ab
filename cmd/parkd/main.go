package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/daemon"
	"github.com/matheus3301/chinopark/internal/site"
)

func main() {
	siteFlag := flag.String("site", "", "site name (overrides config default)")
	httpFlag := flag.String("http", "", "web listen address (overrides config)")
	debugFlag := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	siteName := site.Resolve(*siteFlag)
	if err := site.ValidateName(siteName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			SiteName: siteName,
			HTTPAddr: *httpFlag,
			Debug:    *debugFlag,
		}),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
	)

	app.Run()
}
