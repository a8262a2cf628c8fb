package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/formflow/FormFlow/internal/api"
	"github.com/formflow/FormFlow/internal/genai"
	"github.com/formflow/FormFlow/internal/lockfile"
	"github.com/formflow/FormFlow/internal/messaging"
	"github.com/formflow/FormFlow/internal/store"
	"github.com/formflow/FormFlow/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for FormFlow state data
	DefaultStateDir = "/var/lib/formflow"
	// DefaultRecordsFileName is the default JSON record store filename
	DefaultRecordsFileName = "records.json"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	// Serialize access to file-based stores across processes; the JSON
	// record store is rewritten in full on every save.
	if store.DetectDSNType(*flags.storeDSN) != "postgres" {
		lock, err := lockfile.AcquireLock(filepath.Dir(*flags.storeDSN))
		if err != nil {
			slog.Error("Failed to acquire state directory lock", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	msgOpts := buildMessagingOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping FormFlow with configured modules")
	slog.Debug("Final configuration", "store_dsn", *flags.storeDSN, "api_addr", *flags.apiAddr, "documents_dir", *flags.documentsDir)
	if err := api.Run(storeOpts, genaiOpts, msgOpts, apiOpts); err != nil {
		slog.Error("FormFlow failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("FormFlow exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir     string
	StoreDSN     string
	OpenAIKey    string
	APIAddr      string
	DocumentsDir string
	TwilioSID    string
	TwilioToken  string
	TwilioFrom   string
	Debug        bool
}

// Flags holds command line flag values
type Flags struct {
	storeDSN     *string
	openaiKey    *string
	apiAddr      *string
	documentsDir *string
	twilioSID    *string
	twilioToken  *string
	twilioFrom   *string
}

// initializeLogger sets up structured logging; FORMFLOW_DEBUG enables debug level
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("FORMFLOW_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:     util.GetenvDefault("FORMFLOW_STATE_DIR", DefaultStateDir),
		StoreDSN:     os.Getenv("DATABASE_URL"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		APIAddr:      os.Getenv("API_ADDR"),
		DocumentsDir: os.Getenv("DOCUMENTS_DIR"),
		TwilioSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:   os.Getenv("TWILIO_FROM_NUMBER"),
	}

	// With no database URL, records go to a JSON file in the state directory.
	if config.StoreDSN == "" {
		config.StoreDSN = filepath.Join(config.StateDir, DefaultRecordsFileName)
		slog.Debug("No DATABASE_URL provided, defaulting to JSON record store", "path", config.StoreDSN)
	}

	slog.Debug("environment variables loaded",
		"FORMFLOW_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", os.Getenv("DATABASE_URL") != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"DOCUMENTS_DIR", config.DocumentsDir,
		"TWILIO_CONFIGURED", config.TwilioSID != "" && config.TwilioToken != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		storeDSN:     flag.String("store-dsn", config.StoreDSN, "record store DSN: JSON file path, SQLite file path, or Postgres URL (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		documentsDir: flag.String("documents-dir", config.DocumentsDir, "folder of documents to index at startup (overrides $DOCUMENTS_DIR)"),
		twilioSID:    flag.String("twilio-account-sid", config.TwilioSID, "Twilio account SID (overrides $TWILIO_ACCOUNT_SID)"),
		twilioToken:  flag.String("twilio-auth-token", config.TwilioToken, "Twilio auth token (overrides $TWILIO_AUTH_TOKEN)"),
		twilioFrom:   flag.String("twilio-from-number", config.TwilioFrom, "Twilio sender number (overrides $TWILIO_FROM_NUMBER)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"storeDSN", *flags.storeDSN,
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"documentsDir", *flags.documentsDir)

	return flags
}

// buildStoreOptions constructs record store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.storeDSN != "" {
		switch store.DetectDSNType(*flags.storeDSN) {
		case "postgres":
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.storeDSN))
		case "sqlite":
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.storeDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.storeDSN))
		default:
			slog.Debug("Configuring JSON file store", "path", *flags.storeDSN)
			storeOpts = append(storeOpts, store.WithJSONPath(*flags.storeDSN))
		}
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	return genaiOpts
}

// buildMessagingOptions constructs Twilio messaging configuration options
func buildMessagingOptions(flags Flags) []messaging.Option {
	var msgOpts []messaging.Option
	if *flags.twilioSID != "" {
		msgOpts = append(msgOpts, messaging.WithAccountSID(*flags.twilioSID))
	}
	if *flags.twilioToken != "" {
		msgOpts = append(msgOpts, messaging.WithAuthToken(*flags.twilioToken))
	}
	if *flags.twilioFrom != "" {
		msgOpts = append(msgOpts, messaging.WithFromNumber(*flags.twilioFrom))
	}
	return msgOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.documentsDir != "" {
		apiOpts = append(apiOpts, api.WithDocumentsDir(*flags.documentsDir))
	}
	return apiOpts
}
