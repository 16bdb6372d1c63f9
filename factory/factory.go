package factory

import (
	"context"
	"database/sql"
	"eventers-ticketing/config"
	"eventers-ticketing/logger"
	"sync"

	"github.com/go-redis/redis"
	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

type Factory interface {
	DB(ctx context.Context) *sql.DB
	Redis(ctx context.Context) *redis.Client
	Close(ctx context.Context)
}

type factory struct {
	dbOnce    sync.Once
	redisOnce sync.Once
	db        *sql.DB
	redis     *redis.Client
}

func NewFactory() Factory {
	return &factory{}
}

// DB returns the shared MySQL pool, opening and pinging it on first use.
func (f *factory) DB(ctx context.Context) *sql.DB {
	f.dbOnce.Do(func() {
		sqlDB, err := sql.Open("mysql", viper.GetString(config.DBURL))
		if err != nil {
			logger.Fatalf(ctx, "Error creating connection pool: %+v", err)
		}

		sqlDB.SetMaxOpenConns(viper.GetInt(config.DBMaxOpenConns))
		sqlDB.SetMaxIdleConns(viper.GetInt(config.DBMaxIdleConns))
		sqlDB.SetConnMaxLifetime(viper.GetDuration(config.DBConnLifetime))

		if err := sqlDB.PingContext(ctx); err != nil {
			logger.Fatalf(ctx, "Could not establish connection to the DB: %+v", err)
		}
		f.db = sqlDB
	})
	return f.db
}

// Redis returns the shared Redis client, or nil when no address is
// configured.
func (f *factory) Redis(ctx context.Context) *redis.Client {
	f.redisOnce.Do(func() {
		addr := viper.GetString(config.RedisAddress)
		if addr == "" {
			logger.Infof(ctx, "redis: no address configured, listing cache disabled")
			return
		}

		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString(config.RedisPassword),
			DB:       viper.GetInt(config.RedisDB),
		})
		if err := client.WithContext(ctx).Ping().Err(); err != nil {
			logger.Warnf(ctx, "redis: unable to reach %s, continuing: %+v", addr, err)
		}
		f.redis = client
	})
	return f.redis
}

func (f *factory) Close(ctx context.Context) {
	if f.db != nil {
		if err := f.db.Close(); err != nil {
			logger.Warnf(ctx, "close: error closing db pool: %+v", err)
		}
	}
	if f.redis != nil {
		if err := f.redis.Close(); err != nil {
			logger.Warnf(ctx, "close: error closing redis client: %+v", err)
		}
	}
}
