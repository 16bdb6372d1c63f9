package main

import (
	"context"
	"errors"
	"eventers-ticketing/config"
	c "eventers-ticketing/context"
	"eventers-ticketing/factory"
	"eventers-ticketing/logger"
	"eventers-ticketing/router"
	"eventers-ticketing/store"
	"flag"
	"fmt"
	l "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/spf13/viper"
)

var (
	version string
)

const defaultCorrelationID = "00000000.00000000"

var ctx context.Context

func init() {
	ctx = c.NewContext(defaultCorrelationID)
}

func main() {
	cfgPath := flag.String("CONFIG_PATH", "./config.yaml", "Path to config file")
	flag.Parse()

	var err error
	viper.SetConfigFile(*cfgPath)

	err = viper.ReadInConfig()
	if err != nil {
		l.Fatalln("error reading config:", err)
	}

	logger.SetLevel(viper.GetString(config.LogLevel))
	logger.SetFormat(viper.GetString(config.LogFormat))
	logger.Infof(ctx, "starting ticketing %s", version)

	f := factory.NewFactory()
	defer f.Close(ctx)

	if viper.GetBool(config.DBApplySchema) {
		if err := store.NewStore(f.DB(ctx)).ApplySchema(ctx); err != nil {
			logger.Fatalf(ctx, "main: unable to apply schema: %+v", err)
		}
	}

	n := negroni.New(negroni.NewLogger())
	n.UseHandler(router.Router(ctx, f))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", viper.GetString(config.Port)),
		Handler:           n,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       c.DefaultHttpTimeout,
		WriteTimeout:      c.DefaultHttpTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Infof(ctx, "listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf(ctx, "main: server stopped: %+v", err)
		}
	}()

	<-stop
	logger.Infof(ctx, "shutting down")

	shutdownCtx, cancel := c.NewContextWithTimeOut(ctx, viper.GetDuration(config.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "main: graceful shutdown failed: %+v", err)
	}
}
