package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"office-translator/internal/logger"
)

// Command line flags
var (
	configFlag   = flag.String("config", "", "Path to the configuration file (default: ~/.config/office-translator)")
	addrFlag     = flag.String("addr", "", "HTTP listen address (overrides the configured value)")
	fileFlag     = flag.String("file", "", "Translate a single local file and exit without starting the server")
	outFlag      = flag.String("out", "", "Output path for -file mode (default: translated_<name> next to the input)")
	langFlag     = flag.String("lang", "", "Target language for -file mode (overrides the configured value)")
	logLevelFlag = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFileFlag  = flag.String("log-file", "", "Log file path (logs to stdout only when empty)")
)

func main() {
	flag.Parse()

	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(*logLevelFlag)
	opts.LogFilePath = *logFileFlag
	if err := logger.Init(opts); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	app, err := NewApp(ctx, *configFlag)
	if err != nil {
		logger.Error("failed to start application", err)
		os.Exit(1)
	}

	if *fileFlag != "" {
		outPath, err := app.TranslateFile(ctx, *fileFlag, *outFlag, *langFlag)
		if err != nil {
			logger.Error("translation failed", err)
			os.Exit(1)
		}
		fmt.Println(outPath)
		return
	}

	if err := app.Serve(*addrFlag); err != nil {
		logger.Error("server error", err)
		os.Exit(1)
	}
}
