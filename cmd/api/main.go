package main

import (
	"sync"
	"time"

	"github.com/flowfin/go-conciliador/cmd/setup"
	"github.com/flowfin/go-conciliador/internal/common/graceful"
	"github.com/flowfin/go-conciliador/internal/deliveries/http"

	"go.uber.org/zap"
)

func main() {
	var (
		starters []graceful.ProcessStarter
		stoppers []graceful.ProcessStopper
	)

	s, stopperContract, err := setup.Init("api")
	if err != nil {
		timeout := 5 * time.Second
		if s != nil && s.Config.App.GracefulTimeout != 0 {
			timeout = s.Config.App.GracefulTimeout
		}

		graceful.StopProcess(timeout, stopperContract...)

		zap.L().Fatal("failed to setup app", zap.Error(err))
	}

	httpServer := http.New(s.Config, s.Service.Recon, s.Service.Validation)

	starters = append(starters, httpServer.Start())
	stoppers = append(stoppers, httpServer.Stop())
	stoppers = append(stoppers, stopperContract...)

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		graceful.StartProcessAtBackground(starters...)
		graceful.StopProcessAtBackground(s.Config.App.GracefulTimeout, stoppers...)
		wg.Done()
	}()
	wg.Wait()
	zap.L().Info("http server stopped")
}
