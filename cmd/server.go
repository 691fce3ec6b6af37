package cmd

import (
	"context"
	"errors"
	"fmt"
	log2 "log"
	"net/http"
	"os"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/germplasm-hub/data-api/auth"
	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/log"
	"github.com/germplasm-hub/data-api/rest"
)

const defaultAPIPath = "/api"

// Environment variables prefixed with "DATA_API_" can override settings e.g. "DATA_API_DB_URL"
const envVarPrefix = "data_api"

var cfgFile string
var logger log.Logger

var serverCmd = &cobra.Command{
	Use:   os.Args[0] + " --db-url [URL] [OPTIONS]",
	Short: "REST endpoints for germplasm and trials data",
	Args: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("db-url") == "" {
			return errors.New("db-url is required")
		}
		if viper.GetBool("use-authentication") && viper.GetString("jwt-secret") == "" {
			return errors.New("jwt-secret is required when authentication is enabled")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		session, err := db.NewPgxSession(context.Background(), viper.GetString("db-url"))
		if err != nil {
			logger.Fatal("unable to connect to the database", "error", err)
		}
		defer session.Close()

		cfg := config.New(logger).
			WithAuthentication(viper.GetBool("use-authentication")).
			WithReadOnly(viper.GetBool("read-only")).
			WithJWTSecret(viper.GetString("jwt-secret"))

		licenses := auth.NewSessionLicenses()
		generator := rest.NewRouteGenerator(session, licenses, cfg)

		router := createRouter()
		for _, route := range generator.Routes(viper.GetString("api-path")) {
			router.Handler(route.Method, route.Pattern, route.Handler)
		}

		handler := rest.NewAuthHandler(cfg, licenses, router)
		listenAndServe(handler, viper.GetInt("port"))
	},
}

// Execute starts the REST endpoint
func Execute() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log2.Fatalf("unable to initialize logger: %v", err)
	}

	logger = log.NewZapLogger(zapLogger)

	flags := serverCmd.PersistentFlags()

	flags.StringVarP(&cfgFile, "config", "c", "", "config file")
	flags.String("db-url", "", "database connection url")
	flags.String("api-path", defaultAPIPath, "REST endpoint path prefix")
	flags.Int("port", 8080, "REST endpoint port")
	flags.Bool("use-authentication", false, "require bearer tokens and serve private data")
	flags.Bool("read-only", false, "refuse all mutations")
	flags.String("jwt-secret", "", "HMAC secret for bearer token verification")
	flags.Bool("request-logging", false, "enable request logging")
	flags.String("access-control-allow-origin", "", "Access-Control-Allow-Origin header value")

	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Name != "config" {
			viper.BindPFlag(flag.Name, flags.Lookup(flag.Name))
		}
	})

	cobra.OnInitialize(initialize)

	viper.SetEnvPrefix(envVarPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := serverCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func maybeAddRequestLogging(handler http.Handler) http.Handler {
	if viper.GetBool("request-logging") {
		handler = log.NewLoggingHandler(handler, logger)
	}
	return handler
}

func maybeAddCORS(handler http.Handler) http.Handler {
	if value := viper.GetString("access-control-allow-origin"); value != "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", value)
			handler.ServeHTTP(w, r)
		})
	}
	return handler
}

func initialize() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err == nil {
			logger.Info("using config file",
				"file", viper.ConfigFileUsed())
		}
	}
}

func createRouter() *httprouter.Router {
	router := httprouter.New()
	if value := viper.GetString("access-control-allow-origin"); value != "" {
		router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Access-Control-Request-Method") != "" {
				header := w.Header()
				header.Set("Access-Control-Allow-Method", r.Header.Get("Access-Control-Request-Method"))
				header.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
				header.Set("Access-Control-Allow-Origin", value)
			}

			w.WriteHeader(http.StatusNoContent)
		})
	}
	return router
}

func listenAndServe(handler http.Handler, port int) {
	logger.Info("server listening",
		"port", port)
	handler = maybeAddCORS(maybeAddRequestLogging(handler))
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), handler)
	if err != nil {
		logger.Fatal("unable to start server",
			"port", port,
			"error", err)
	}
}
