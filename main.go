package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"rag-chat-client/api"
	"rag-chat-client/chat"
	"rag-chat-client/db"
	"rag-chat-client/ui"
	"rag-chat-client/utils"
)

var (
	version = "0.1.0"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	server := flag.String("server", "", "Backend base URL (overrides config)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("RAG Chat Client v%s\n", version)
		os.Exit(0)
	}

	actualConfigPath, err := utils.EnsureDefaultConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create default config: %v\n", err)
		os.Exit(1)
	}
	config, err := utils.LoadConfig(actualConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", actualConfigPath, err)
		os.Exit(1)
	}
	if *server != "" {
		config.Server.BaseURL = strings.TrimRight(*server, "/")
	}

	logPath := config.Log.Path
	if logPath == "" {
		logPath = utils.GetLogPath()
	}
	logger, err := utils.NewLogger(logPath, config.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting RAG Chat Client v%s (config %s, server %s)", version, actualConfigPath, config.Server.BaseURL)

	client := api.NewClient(config.Server.BaseURL,
		api.WithTimeout(time.Duration(config.Server.RequestTimeoutSeconds)*time.Second),
		api.WithUserAgent("rag-chat-client/"+version),
	)

	if flag.NArg() > 0 {
		code := runHeadless(client, config, logger, flag.Args())
		logger.Close()
		os.Exit(code)
	}

	database, err := db.New(config.Data.PrefsPath)
	if err != nil {
		logger.Error("Failed to initialize preferences: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	app := ui.NewApp(config, actualConfigPath, database, client, logger)
	defer app.Cleanup()

	logger.Info("Application started")
	app.Run()
	logger.Info("Application stopped")
}

func runHeadless(client *api.Client, config *utils.Config, logger *utils.Logger, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newCLI(client, config, logger, color.Output).run(ctx, args)
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	color.New(color.FgRed).Fprintln(os.Stderr, chat.UserMessage("run "+args[0], err))
	return 1
}
