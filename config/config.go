package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DBURL          = "database.mysql"
	DBMaxOpenConns = "database.max_open_conns"
	DBMaxIdleConns = "database.max_idle_conns"
	DBConnLifetime = "database.conn_max_lifetime"
	DBApplySchema  = "database.apply_schema"

	Port            = "server.port"
	Secret          = "server.jwt_secret"
	JWTTTL          = "server.jwt_ttl"
	ShutdownTimeout = "server.shutdown_timeout"
	LogLevel        = "server.log_level"
	LogFormat       = "server.log_format"

	RedisAddress    = "redis.address"
	RedisPassword   = "redis.password"
	RedisDB         = "redis.db"
	RedisListingTTL = "redis.listing_ttl"

	CORSAllowedOrigins = "cors.allowed_origins"
)

func init() {
	viper.AutomaticEnv()
	viper.SetDefault(Port, "3000")
	viper.SetDefault(JWTTTL, time.Hour)
	viper.SetDefault(ShutdownTimeout, 10*time.Second)
	viper.SetDefault(LogLevel, "info")
	viper.SetDefault(LogFormat, "text")
	viper.SetDefault(DBMaxOpenConns, 50)
	viper.SetDefault(DBMaxIdleConns, 10)
	viper.SetDefault(DBConnLifetime, 5*time.Minute)
	viper.SetDefault(DBApplySchema, true)
	viper.SetDefault(RedisListingTTL, 30*time.Second)
	viper.SetDefault(CORSAllowedOrigins, []string{"http://localhost:5173"})
}
