package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Responder ResponderConfig
	Store     StoreConfig
	Notify    NotifyConfig
	Chat      ChatConfig
	Journal   JournalConfig
	Language  string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	responder, err := loadResponderConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	journal, err := loadJournalConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Responder: responder,
		Store:     StoreConfig{Path: getEnvOrDefault("MOOD_DB_PATH", "sahayata.db")},
		Notify: NotifyConfig{
			AMQPURL: strings.TrimSpace(os.Getenv("RABBIT_URL")),
			Queue:   getEnvOrDefault("RABBIT_QUEUE", "counselor_alerts"),
		},
		Chat:     chat,
		Journal:  journal,
		Language: getEnvOrDefault("DEFAULT_LANGUAGE", "english"),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the upstream chat model behind the hosted responder.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// ResponderConfig points the chat service at the remote responder endpoint.
// Empty URL means the chat service targets the locally hosted responder.
type ResponderConfig struct {
	URL     string
	Timeout time.Duration
}

func loadResponderConfig() (ResponderConfig, error) {
	timeout, err := parseOptionalIntEnv("RESPONDER_TIMEOUT_MS")
	if err != nil {
		return ResponderConfig{}, err
	}
	t := 30 * time.Second
	if timeout != nil {
		t = time.Duration(*timeout) * time.Millisecond
	}

	return ResponderConfig{
		URL:     strings.TrimSpace(os.Getenv("RESPONDER_URL")),
		Timeout: t,
	}, nil
}

// StoreConfig locates the mood entry database.
type StoreConfig struct {
	Path string
}

// NotifyConfig describes the counselor alert queue. AMQPURL empty means
// alerts go to the process log only.
type NotifyConfig struct {
	AMQPURL string
	Queue   string
}

// Enabled reports whether a broker is configured.
func (c NotifyConfig) Enabled() bool {
	return c.AMQPURL != ""
}

// ChatConfig holds the simulated hand-off delays.
type ChatConfig struct {
	AgentConnectDelay time.Duration
	FollowUpDelay     time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	connect, err := parseDurationMSEnv("CHAT_AGENT_CONNECT_DELAY_MS", 3*time.Second)
	if err != nil {
		return ChatConfig{}, err
	}
	followUp, err := parseDurationMSEnv("CHAT_FOLLOWUP_DELAY_MS", 3*time.Second)
	if err != nil {
		return ChatConfig{}, err
	}
	return ChatConfig{AgentConnectDelay: connect, FollowUpDelay: followUp}, nil
}

// JournalConfig holds the autosave debounce and panel-open delay.
type JournalConfig struct {
	Debounce   time.Duration
	PanelDelay time.Duration
}

func loadJournalConfig() (JournalConfig, error) {
	debounce, err := parseDurationMSEnv("JOURNAL_DEBOUNCE_MS", 800*time.Millisecond)
	if err != nil {
		return JournalConfig{}, err
	}
	panelDelay, err := parseDurationMSEnv("JOURNAL_PANEL_DELAY_MS", time.Second)
	if err != nil {
		return JournalConfig{}, err
	}
	return JournalConfig{Debounce: debounce, PanelDelay: panelDelay}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationMSEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return defaultValue, nil
	}
	if *raw < 0 {
		return 0, fmt.Errorf("invalid %s value: %d", key, *raw)
	}
	return time.Duration(*raw) * time.Millisecond, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
