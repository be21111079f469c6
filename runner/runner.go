package runner

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"hookline.io/xano-connector/gateway"
	"hookline.io/xano-connector/routers"
	"hookline.io/xano-connector/utils/logger"
)

// CreateServer serves the connector surface until SIGINT/SIGTERM, then
// drains in-flight requests before returning.
func CreateServer(gw *gateway.HandleT) error {
	endPoint := viper.GetString("Gateway.webPort")
	if endPoint == "" {
		endPoint = "8090"
	}
	routersInit := routers.InitRouter(gw)

	server := &http.Server{
		Addr:           ":" + endPoint,
		Handler:        routersInit,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(fmt.Sprintf("Starting http server listening on %s", endPoint))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
