package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/projectpsu986-droid/pet-monitoring/internal/alerts"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cats"
	"github.com/projectpsu986-droid/pet-monitoring/internal/config"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/database"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/local_cache"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/mqtt_client"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/notifier"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/tracer_client"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/rollup"
	"github.com/projectpsu986-droid/pet-monitoring/internal/rooms"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/monitoring"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/routers"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/services/v1/restful"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/services/v1/ws"
	"github.com/projectpsu986-droid/pet-monitoring/internal/signaling"
	"github.com/projectpsu986-droid/pet-monitoring/internal/stats"
	"github.com/projectpsu986-droid/pet-monitoring/internal/sysconfig"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
	"github.com/projectpsu986-droid/pet-monitoring/internal/worker"
)

var once sync.Once

func mirrorEnvCase() {
	for _, kv := range os.Environ() {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		k, v := kv[:i], kv[i+1:]
		_ = os.Setenv(strings.ToUpper(k), v)
		_ = os.Setenv(strings.ToLower(k), v)
	}
}

func loadDotenvIfExists(filename string, overload bool) (bool, error) {
	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if overload {
		return true, godotenv.Overload(filename)
	}
	return true, godotenv.Load(filename)
}

func readConfigIfExists(path string, merge bool) (bool, error) {
	viper.SetConfigFile(path)
	var err error
	if merge {
		err = viper.MergeInConfig()
	} else {
		err = viper.ReadInConfig()
	}
	if err == nil {
		return true, nil
	}
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) || os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func detectProfile() string {
	from := func(k string) (string, bool) {
		if v, ok := os.LookupEnv(k); ok {
			return strings.ToLower(v), true
		}
		if v, ok := os.LookupEnv(strings.ToUpper(k)); ok {
			return strings.ToLower(v), true
		}
		if v, ok := os.LookupEnv(strings.ToLower(k)); ok {
			return strings.ToLower(v), true
		}
		return "", false
	}
	if v, ok := from("APP_ENV"); ok {
		return v
	}
	return "dev"
}

func Load() error {
	envFound, err := loadDotenvIfExists(".env", false)
	if err != nil {
		return err
	}
	if envFound {
		mirrorEnvCase()
	}
	profile := detectProfile()

	if found, err := loadDotenvIfExists("."+profile+".env", true); err != nil {
		return err
	} else if found {
		mirrorEnvCase()
	}

	cfgFound, err := readConfigIfExists("conf/config.toml", false)
	if err != nil {
		return err
	}

	if !envFound && !cfgFound {
		return fmt.Errorf("no configuration sources found: missing both .env and conf/config.toml")
	}

	if _, err := readConfigIfExists("conf/"+profile+".config.toml", true); err != nil {
		return err
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	return nil
}

func init() {
	once.Do(func() {
		err := Load()
		if err != nil {
			panic(fmt.Sprintf("Failed to setup service configuration: %v", err))
		}

		// Init default logger
		err = log.InitDefault()
		if err != nil {
			panic(err)
		}

		// Initialize local cache
		log.Default().Info("Started initializing local cache")
		err = local_cache.NewLocalCache()
		if err != nil {
			log.Default().Fatal(fmt.Sprintf("Failed to initialize local cache: %v", err))
		}
		log.Default().Info("Finished initializing local cache")

		// Initialize database connection
		log.Default().Info("Started initializing database connection")
		err = database.NewDatabaseClient(
			database.WithDriver(viper.GetString(config.DatabaseDriver)),
			database.WithDSN(viper.GetString(config.DatabaseDSN)),
		)
		if err != nil {
			log.Default().Fatal(fmt.Sprintf("Failed to initialize database connection: %v", err))
		}
		err = models.Migrate(database.Client())
		if err != nil {
			log.Default().Fatal(fmt.Sprintf("Failed to migrate database schema: %v", err))
		}
		log.Default().Info("Finished initializing database connection")

		// Initialize MQTT client if enabled
		if viper.GetBool(config.AppEnableMQTT) {
			log.Default().Info("Started initializing client connection to MQTT broker")
			err = mqtt_client.NewMQTTClient(
				viper.GetString(config.MqttEndpoint),
				viper.GetString(config.MqttClientId),
				mqtt_client.WithAutoReconnect(viper.GetBool(config.MqttAutoReconnect)),
				mqtt_client.WithConnectTimeout(5*time.Second),
				mqtt_client.WithTLSInsecureSkipVerify(viper.GetBool(config.MqttTLSInsecureSkipVerify)),
			)
			if err != nil {
				log.Default().Fatal(fmt.Sprintf("Failed to initialize client connection to MQTT broker: %v", err))
			}
			log.Default().Info("Finished initializing client connection to MQTT broker")
		}

		// Initialize notification sender if enabled
		if viper.GetBool(config.NotifyEnabled) {
			log.Default().Info("Started initializing notification sender")
			err = notifier.NewNotifier(viper.GetStringSlice(config.NotifyURLs)...)
			if err != nil {
				log.Default().Fatal(fmt.Sprintf("Failed to initialize notification sender: %v", err))
			}
			log.Default().Info("Finished initializing notification sender")
		}

		// Initialize OTEL tracer if enabled
		if viper.GetBool(config.AppEnableTracing) {
			log.Default().Info("Started initializing OTEL tracer")
			_, err = tracer_client.NewTracerClient()
			if err != nil {
				log.Default().Fatal(fmt.Sprintf("Failed to initialize OTEL tracer: %v", err))
			}
			log.Default().Info("Finished initializing OTEL tracer")
		}

		log.Default().Info("Finished initializing connection to external services")
	})
}

func main() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	var err error

	parentCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(parentCtx)

	// Domain wiring
	db := database.Client()
	roomMap := rooms.Load()
	inspector := timeslot.NewInspector(db)
	reader := timeslot.NewReader(db, inspector)
	admin := sysconfig.NewAdmin(db)
	resolver := admin.Resolver()

	evaluator := alerts.NewEvaluator(inspector, reader, resolver)
	ingestor := alerts.NewIngestor(db)
	rollupEngine := rollup.NewEngine(db, inspector, reader)
	alertService := alerts.NewService(db, evaluator, ingestor, reader,
		alerts.WithRollupTrigger(rollupEngine),
	)
	summaries := rollup.NewSummaries(db)
	catService := cats.NewService(db, inspector, reader, resolver, roomMap)
	statsService := stats.NewService(db, inspector, reader, roomMap)

	// Alert fan-out hub
	alertHub := signaling.NewAlertHub()
	alertHub.Run(parentCtx)

	// Background worker
	g.Go(func() error {
		if viper.GetBool(config.WorkerEnabled) {
			wErr := worker.New(db, alertService, rollupEngine, alertHub).Run(ctx)
			if wErr != nil {
				return wErr
			}
		}
		return ctx.Err()
	})

	// Init profiling
	g.Go(func() error {
		if viper.GetBool(config.AppEnableMonitoring) {
			mErr := monitoring.NewMonitoringServer(ctx)
			if mErr != nil {
				return mErr
			}
		}

		return ctx.Err()
	})

	// Init HTTP server
	g.Go(func() error {
		// app state
		appState := routers.NewAppState()

		// v1 restful svc
		v1RestState := routers.NewV1RestState()
		v1RestState.SetHealthcheckService(
			restful.NewHealthcheckService(
				restful.WithHealthcheckDB(db),
			),
		)
		v1RestState.SetAlertService(
			restful.NewAlertService(
				restful.WithAlertDomainService(alertService),
			),
		)
		v1RestState.SetSysConfigService(
			restful.NewSysConfigService(
				restful.WithSysConfigAdmin(admin),
			),
		)
		v1RestState.SetCatService(
			restful.NewCatService(
				restful.WithCatDomainService(catService),
			),
		)
		v1RestState.SetStatsService(
			restful.NewStatsService(
				restful.WithStatsDomainService(statsService),
			),
		)
		v1RestState.SetSummaryService(
			restful.NewSummaryService(
				restful.WithSummaries(summaries),
				restful.WithRollupEngine(rollupEngine),
			),
		)
		appState.SetV1RestState(v1RestState)

		websocketState := routers.NewWebsocketState()
		websocketState.SetWebsocketService(
			ws.NewWebsocketService(
				ws.WithAlertHub(alertHub),
			),
		)
		appState.SetWebsocketState(websocketState)

		rErr := rest_server.NewHTTPServer(ctx, routers.NewRootRouter(appState).InitRouters)
		if rErr != nil {
			return rErr
		}
		return ctx.Err()
	})

	select {
	case sig := <-sigCh:
		log.Default().Debug(fmt.Sprintf("Signal received: %v", sig))
		cancel()

		done := make(chan error, 1)
		go func() {
			done <- g.Wait()
		}()

		select {
		case err = <-done:
			log.Default().Info("All tasks exited, shutting down service")
			return
		case sig2 := <-sigCh:
			log.Default().Debug(fmt.Sprintf("Second signal received: %v", sig2))
			return
		case <-time.After(constants.GraceWaitPeriod):
			log.Default().Info("Grace period timed out, forcing exit")
			return
		}

	case err = <-func() chan error {
		ch := make(chan error, 1)
		go func() {
			ch <- g.Wait()
		}()
		return ch
	}():
		log.Default().Info(fmt.Sprintf("Services finished early with error: %v", err))
	}
}
