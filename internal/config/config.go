package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/sezam.db"

	// Webhook
	WebSecret       string
	ConfirmResponse string

	// Messaging gateway
	VKToken      string
	VKAPIVersion string
	VKRateLimit  float64 // outbound requests per second

	// Bot
	CommandPhrases []string
	GrantedReply   string
	DeniedReply    string

	// Door signal
	DoorPollInterval time.Duration
	StatusWaitBudget time.Duration

	// Ledger
	LedgerLockWait time.Duration

	// Journal retention
	JournalLevel         string
	JournalCeiling       int
	JournalEvictFraction float64

	// Registry maintenance. 0 disables the link resolver.
	ResolveInterval time.Duration

	// Process log
	LogLevel  string
	LogFormat string // "json" | "console"
}

func FromEnv() Config {
	addr := getenvDefault("SEZAM_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("SEZAM_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	phrases := splitCSV(os.Getenv("SEZAM_COMMAND_PHRASES"))
	if len(phrases) == 0 {
		phrases = []string{"открой", "open"}
	}

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   getenvDefault("SEZAM_DB_PATH", "./data/sezam.db"),

		WebSecret:       os.Getenv("SEZAM_WEB_SECRET"),
		ConfirmResponse: os.Getenv("SEZAM_CONFIRM_RESPONSE"),

		VKToken:      os.Getenv("SEZAM_VK_TOKEN"),
		VKAPIVersion: getenvDefault("SEZAM_VK_API_VERSION", "5.103"),
		VKRateLimit:  getenvFloat("SEZAM_VK_RATE_LIMIT", 3),

		CommandPhrases: phrases,
		GrantedReply:   getenvDefault("SEZAM_GRANTED_REPLY", "Дверь успешно открыта."),
		DeniedReply:    getenvDefault("SEZAM_DENIED_REPLY", "Вы не зарегистрированы. Обратитесь к Вашему куратору."),

		DoorPollInterval: getenvMillis("SEZAM_DOOR_POLL_MS", 500),
		StatusWaitBudget: getenvMillis("SEZAM_STATUS_WAIT_MS", 25000),
		LedgerLockWait:   getenvMillis("SEZAM_LEDGER_LOCK_WAIT_MS", 20000),

		JournalLevel:         getenvDefault("SEZAM_JOURNAL_LEVEL", "info"),
		JournalCeiling:       getenvInt("SEZAM_JOURNAL_CEILING", 30000),
		JournalEvictFraction: getenvFloat("SEZAM_JOURNAL_EVICT_FRACTION", 0.1),

		ResolveInterval: time.Duration(getenvInt("SEZAM_RESOLVE_INTERVAL_MIN", 0)) * time.Minute,

		LogLevel:  getenvDefault("SEZAM_LOG_LEVEL", "info"),
		LogFormat: getenvDefault("SEZAM_LOG_FORMAT", "json"),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func getenvMillis(key string, defMs int) time.Duration {
	return time.Duration(getenvInt(key, defMs)) * time.Millisecond
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
