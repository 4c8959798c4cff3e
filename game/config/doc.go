// Package config loads Pong Arena server settings.
//
// Settings come from PONG_* environment variables (a .env file in the working
// directory is loaded first by the command) and are then overridden by CLI
// flags:
//
//	PONG_HOST, PONG_PORT            listen address (default localhost:5000)
//	PONG_SCORES_DB                  SQLite leaderboard file, empty for in-memory
//	PONG_SESSIONS_DIR               session snapshot directory, empty to disable
//	PONG_SESSION_TTL                idle time before a game is evicted, 0 disables
//	PONG_SWEEP_INTERVAL             how often idle games are looked for
//	PONG_ALLOWED_ORIGINS            comma separated CORS origins
//	PONG_LOG_LEVEL, PONG_LOG_FILE   zap level and optional rotating log file
//	PONG_OTEL_ENDPOINT              OTLP/HTTP trace endpoint, empty to disable
//	PONG_NGROK_ENABLED, PONG_NGROK_AUTHTOKEN, PONG_NGROK_DOMAIN
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(cfg.Addr())
package config
