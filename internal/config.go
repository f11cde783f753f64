package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host                        string        `env:"HOST,default=0.0.0.0"`
	Port                        int           `env:"PORT,default=3000"`
	GrpcPort                    int           `env:"GRPC_PORT,default=3001"`
	LogLevel                    string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath              string        `env:"BADGER_FILEPATH,default=./data/badger"`
	BlugeFilepath               string        `env:"BLUGE_FILEPATH,default=./data/bluge"`
	UploadPath                  string        `env:"UPLOAD_PATH,default=./uploads"`
	MaxFileSize                 int64         `env:"MAX_FILE_SIZE,default=52428800"`
	JwtSecret                   string        `env:"JWT_SECRET"`
	AuthRequired                bool          `env:"AUTH_REQUIRED,default=false"`
	ConnectionBufferSize        int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	EventBufferSize             int           `env:"EVENT_BUFFER_SIZE,default=1024"`
	SinkTimeout                 time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval             time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval              time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LowCapacityThreshold        int           `env:"LOW_CAPACITY_THRESHOLD,default=80"`
	MaxContentLength            int           `env:"MAX_CONTENT_LENGTH,default=5000"`
	ModerationEnabled           bool          `env:"MODERATION_ENABLED,default=false"`
	CharReplacement             string        `env:"CHARACTER_REPLACEMENT,default=*"`
	RedisAddr                   string        `env:"REDIS_ADDR"`
	KafkaBrokers                string        `env:"KAFKA_BROKERS"`
	KafkaTopic                  string        `env:"KAFKA_TOPIC,default=chat-signal.events"`
	BroadcastMessageMutations   bool          `env:"BROADCAST_MESSAGE_MUTATIONS,default=false"`
	EnforceReadReceiptOwnership bool          `env:"ENFORCE_READ_RECEIPT_OWNERSHIP,default=false"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// Brokers splits the comma separated KAFKA_BROKERS value.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
