package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cbodonnell/wordfall/pkg/api"
	"github.com/cbodonnell/wordfall/pkg/auth"
	authproviders "github.com/cbodonnell/wordfall/pkg/auth/providers"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/cbodonnell/wordfall/pkg/network"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/repositories"
	"github.com/cbodonnell/wordfall/pkg/vocabulary"
	"github.com/cbodonnell/wordfall/pkg/workers"
	"github.com/joho/godotenv"
)

const scoreQueueSize = 1024

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	migrations := flag.String("migrations", "./migrations", "directory holding the sqlite and postgres migrations")
	flag.Parse()

	_ = godotenv.Load()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stdout, parsedLogLevel))
	log.Info("Log level set to %s", parsedLogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jwtSecret := os.Getenv("WORDFALL_JWT_SECRET")
	if jwtSecret == "" {
		panic("WORDFALL_JWT_SECRET environment variable must be set")
	}
	authProvider, err := authproviders.NewJWTAuthProvider(jwtSecret, authproviders.DefaultTokenTTL)
	if err != nil {
		panic(fmt.Sprintf("Failed to create JWT auth provider: %v", err))
	}

	connStr := os.Getenv("WORDFALL_DATABASE_URL")
	if connStr == "" {
		connStr = "sqlite://wordfall.db"
	}
	u, err := url.Parse(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse connection string: %v", err))
	}

	var repository repositories.Repository
	switch u.Scheme {
	case "sqlite":
		repository, err = repositories.NewSQLiteRepository(ctx, u.Host+u.Path, filepath.Join(*migrations, "sqlite"))
		if err != nil {
			panic(fmt.Sprintf("Failed to create SQLite repository: %v", err))
		}
	case "postgres", "postgresql":
		repository, err = repositories.NewPostgresRepository(ctx, u.String(), filepath.Join(*migrations, "postgres"))
		if err != nil {
			panic(fmt.Sprintf("Failed to create Postgres repository: %v", err))
		}
	default:
		panic(fmt.Sprintf("Unknown database type %s", u.Scheme))
	}
	defer repository.Close(ctx)

	defaultWords, err := loadWords(os.Getenv("WORDFALL_WORDS_FILE"))
	if err != nil {
		panic(fmt.Sprintf("Failed to load words: %v", err))
	}
	added, err := repository.AddWords(ctx, defaultWords)
	if err != nil {
		panic(fmt.Sprintf("Failed to seed words: %v", err))
	}
	log.Info("Seeded %d new words (%d offered)", added, len(defaultWords))

	clientManager := network.NewClientManager()
	scoreQueue := queue.NewInMemoryQueue[messages.ServerNewScore](scoreQueueSize)

	broadcastWorker := workers.NewLeaderboardBroadcastWorker(workers.NewLeaderboardBroadcastWorkerOptions{
		ClientManager: clientManager,
		Repository:    repository,
		ScoreQueue:    scoreQueue,
	})
	go broadcastWorker.Start(ctx)

	apiServerOpts := api.NewAPIServerOptions{
		Port:          *port,
		AuthProvider:  authProvider,
		Sessions:      auth.NewSessionManager(authProvider.TTL()),
		Repository:    repository,
		ClientManager: clientManager,
		ScoreQueue:    scoreQueue,
		DefaultWords:  defaultWords,
	}
	tlsCertFile := os.Getenv("WORDFALL_API_TLS_CERT_FILE")
	tlsKeyFile := os.Getenv("WORDFALL_API_TLS_KEY_FILE")
	if tlsCertFile != "" && tlsKeyFile != "" {
		apiServerOpts.TLS = &api.TLSConfig{
			CertFile: tlsCertFile,
			KeyFile:  tlsKeyFile,
		}
	}
	server := api.NewAPIServer(apiServerOpts)
	go server.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt
	log.Info("Shutting down")

	stopCtx, stopCancel := context.WithTimeout(ctx, 5*time.Second)
	defer stopCancel()
	if err := server.Stop(stopCtx); err != nil {
		log.Error("Failed to stop server: %v", err)
	}
}

// loadWords reads the word list to seed, falling back to the built-in list.
func loadWords(path string) ([]string, error) {
	if path == "" {
		return vocabulary.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return vocabulary.Parse(f)
}
