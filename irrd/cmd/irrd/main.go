// Copyright 2024 The OpenIRR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openirr/irrd/irrd"
	"github.com/openirr/irrd/irrd/config"
	"github.com/openirr/irrd/pkg/log"
	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/private/authz"
	libconfig "github.com/openirr/irrd/private/config"
	"github.com/openirr/irrd/private/credential"
	"github.com/openirr/irrd/private/storage/objects/sqlite"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:           "irrd",
		Short:         "Routing registry authorization daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "configuration file (required)")
	cobra.CheckErr(cmd.MarkFlagRequired("config"))
	return cmd
}

func run(configFile string) error {
	var cfg config.Config
	if err := libconfig.LoadFile(configFile, &cfg); err != nil {
		return serrors.Wrap("loading config", err, "file", configFile)
	}
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return serrors.Wrap("validating config", err)
	}
	if err := log.Setup(cfg.Logging); err != nil {
		return serrors.Wrap("setting up logging", err)
	}
	defer log.Flush()
	defer log.HandlePanic()
	log.Info("Starting", "id", cfg.General.ID)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := sqlite.New(cfg.DB.Connection, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)
	if err != nil {
		return serrors.Wrap("opening object store", err)
	}
	defer store.Close()

	var keystore credential.Keystore = credential.StaticKeystore{}
	if cfg.General.PGPKeyDir != "" {
		keystore = credential.NewDirKeystore(cfg.General.PGPKeyDir)
	}

	svc := irrd.NewService(store, keystore, cfg.Auth.Policy())
	svc.Authorizer.Metrics = authz.NewMetrics(prometheus.DefaultRegisterer)
	if err := svc.WarmHierarchy(ctx); err != nil {
		return err
	}

	g, errCtx := errgroup.WithContext(ctx)

	apiServer := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: svc.APIHandler(),
	}
	g.Go(func() error {
		defer log.HandlePanic()
		log.Info("Exposing API", "addr", cfg.API.Addr)
		err := apiServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return serrors.Wrap("serving API", err)
		}
		return nil
	})

	if cfg.Metrics.Prometheus != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{
			Addr:    cfg.Metrics.Prometheus,
			Handler: mux,
		}
		g.Go(func() error {
			defer log.HandlePanic()
			log.Info("Exposing metrics", "addr", cfg.Metrics.Prometheus)
			err := metricsServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving metrics", err)
			}
			return nil
		})
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			return metricsServer.Close()
		})
	}

	g.Go(func() error {
		defer log.HandlePanic()
		<-errCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
