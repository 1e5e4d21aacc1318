package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// LedgerDBUser and LedgerDBPassword name the privileged role that owns the
	// accounts table. They fall back to DBUser and DBPassword when unset.
	LedgerDBUser     string
	LedgerDBPassword string

	// MigrationDBUser and MigrationDBPassword name the role that owns the schema
	// and runs Migrate. They fall back to the ledger credentials when unset.
	MigrationDBUser     string
	MigrationDBPassword string

	RedisAddr      string
	IdempotencyTTL time.Duration

	KafkaHost              string
	KafkaOrderChangedTopic string
	OutboxBatchSize        int

	AgentHoldPercentage string
	FailedDeliveryFee   string
	BatchConcurrency    int

	HTTPRateLimit float64
	HTTPRateBurst int
}

func (c Config) LedgerCredentials() (string, string) {
	if c.LedgerDBUser == "" {
		return c.DBUser, c.DBPassword
	}
	return c.LedgerDBUser, c.LedgerDBPassword
}

func (c Config) MigrationCredentials() (string, string) {
	if c.MigrationDBUser == "" {
		return c.LedgerCredentials()
	}
	return c.MigrationDBUser, c.MigrationDBPassword
}
