package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/niemenmaa/ynab-importer/internal/system/config"
	"github.com/niemenmaa/ynab-importer/internal/system/constants"
	"github.com/niemenmaa/ynab-importer/internal/system/database"
	"github.com/niemenmaa/ynab-importer/internal/system/log"
	"github.com/niemenmaa/ynab-importer/internal/system/managers"
)

const schemaFile = "dbscripts/postgres.sql"

func main() {
	configFile := flag.String("config", "config/deployment.yaml", "Path to the deployment configuration file")
	envFile := flag.String("env", ".env", "Path to the environment file")
	flag.Parse()

	// Missing .env is fine; the config file expands whatever is set.
	_ = godotenv.Load(*envFile)

	appConfig, err := config.LoadConfig(*configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	if err := log.Init(appConfig.Log.LogLevel); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.GetLogger()

	postgres := database.ConnectPostgres(appConfig.DataSource)
	if err := postgres.InitSchema(schemaFile); err != nil {
		logger.Fatal("Failed to initialize database schema", log.Error(err))
	}

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)
	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		logger.Fatal("Failed to register the services", log.Error(err))
	}

	serverAddr := fmt.Sprintf("%s:%d", appConfig.Addr.Host, appConfig.Addr.Port)
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener", log.Error(err), log.String("addr", serverAddr))
	}
	logger.Info(fmt.Sprintf("YNAB importer started on: %s", serverAddr))

	server := &http.Server{Handler: enableCORS(appConfig.Auth.CORSAllowedOrigins, mux)}
	if err := server.Serve(ln); err != nil {
		logger.Fatal("Failed to serve requests", log.Error(err))
	}
}

func enableCORS(allowedOrigins []string, next http.Handler) http.Handler {
	origins := "*"
	if len(allowedOrigins) > 0 {
		origins = strings.Join(allowedOrigins, ", ")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
