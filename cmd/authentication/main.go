// This is a **mock authentication service**, designed to provide JWT tokens
// for the directory API, simulating user authentication.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gartstein/staffdir/internal/directory/auth"
	"github.com/gartstein/staffdir/internal/directory/config"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

const defaultPort = 8081

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type tokenIssuer struct {
	secret string
	ttl    time.Duration
	logger *zap.Logger
}

// ServeHTTP generates a JWT and returns it in a JSON response. The subject
// comes from the "user" query parameter.
func (i *tokenIssuer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		userID = "12345"
	}

	token, err := auth.GenerateToken(userID, i.secret, i.ttl)
	if err != nil {
		i.logger.Error("Failed to generate token", zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	resp := TokenResponse{Token: token, ExpiresAt: time.Now().Add(i.ttl).UTC()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		i.logger.Error("Failed to encode token", zap.Error(err))
	}
}

func main() {
	configPath := flag.StringP("config", "c", "", "path to a YAML config file")
	port := flag.Int("port", defaultPort, "listen port")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwt_secret is required (set DIRECTORY_AUTH_JWT_SECRET)")
	}

	mux := http.NewServeMux()
	mux.Handle("/token", &tokenIssuer{
		secret: cfg.Auth.JWTSecret,
		ttl:    cfg.Auth.TokenTTL,
		logger: logger.Named("auth_service"),
	})

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("Authentication service running", zap.String("addr", addr))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
