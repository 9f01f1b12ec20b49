package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/engine"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/keyword"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/oracle"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/util/cliutil"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "modbot",
		Usage:   "group chat moderation daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "oracle-api-key",
			Usage:   "API key for the OpenAI-compatible classification endpoint",
			EnvVars: []string{"MODBOT_ORACLE_API_KEY", "GROQ_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "oracle-base-url",
			Usage:   "base URL of the OpenAI-compatible classification endpoint",
			Value:   oracle.DefaultBaseURL,
			EnvVars: []string{"MODBOT_ORACLE_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "oracle-model",
			Usage:   "model name used for classification",
			Value:   oracle.DefaultModel,
			EnvVars: []string{"MODBOT_ORACLE_MODEL"},
		},
		&cli.DurationFlag{
			Name:    "oracle-timeout",
			Usage:   "deadline for a single classification call",
			Value:   oracle.DefaultTimeout,
			EnvVars: []string{"MODBOT_ORACLE_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "sets-json-path",
			Usage:   "optional JSON file of named sets; the 'denylist' set extends the built-in denylist",
			EnvVars: []string{"MODBOT_SETS_JSON_PATH"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"MODBOT_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format: text or json",
			EnvVars: []string{"MODBOT_LOG_FORMAT", "LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "log-path",
			Usage:   "optional file to write logs to, with rotation",
			EnvVars: []string{"MODBOT_LOG_PATH"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		classifyCmd,
	}

	return app.Run(args)
}

func configLogger(cctx *cli.Context) (*slog.Logger, error) {
	return cliutil.SetupSlog(cliutil.LogOptions{
		LogLevel:  cctx.String("log-level"),
		LogFormat: cctx.String("log-format"),
		LogPath:   cctx.String("log-path"),
	})
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the moderation service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "telegram-token",
			Usage:    "Telegram bot API token",
			Required: true,
			EnvVars:  []string{"MODBOT_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"},
		},
		&cli.DurationFlag{
			Name:    "spacing",
			Usage:   "minimum gap between the starts of consecutive classification calls",
			Value:   engine.DefaultSpacing,
			EnvVars: []string{"MODBOT_SPACING"},
		},
		&cli.StringFlag{
			Name:    "stats-path",
			Usage:   "file holding the user stats document (ignored when redis is configured)",
			Value:   "data/user_stats.json",
			EnvVars: []string{"MODBOT_STATS_PATH"},
		},
		&cli.StringFlag{
			Name:    "groups-path",
			Usage:   "file holding the enabled groups document (ignored when redis or a database is configured)",
			Value:   "data/enabled_groups.json",
			EnvVars: []string{"MODBOT_GROUPS_PATH"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "optional redis server for documents and caches",
			EnvVars: []string{"MODBOT_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "optional SQL database for the group registry (eg, sqlite://data/modbot.db, postgres://...)",
			EnvVars: []string{"MODBOT_DATABASE_URL", "DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			Value:   10,
			EnvVars: []string{"MODBOT_MAX_DB_CONNECTIONS"},
		},
		&cli.BoolFlag{
			Name:    "enable-db-tracing",
			Usage:   "emit OpenTelemetry spans for database queries",
			EnvVars: []string{"MODBOT_ENABLE_DB_TRACING"},
		},
		&cli.DurationFlag{
			Name:    "admin-cache-ttl",
			Usage:   "how long group admin lists are cached",
			Value:   5 * time.Minute,
			EnvVars: []string{"MODBOT_ADMIN_CACHE_TTL"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "optional Slack incoming webhook for operator alerts",
			EnvVars: []string{"MODBOT_SLACK_WEBHOOK_URL", "SLACK_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"MODBOT_METRICS_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "shutdown-timeout",
			Usage:   "how long to keep draining queued messages after a shutdown signal",
			Value:   30 * time.Second,
			EnvVars: []string{"MODBOT_SHUTDOWN_TIMEOUT"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := configLogger(cctx)
		if err != nil {
			return err
		}

		shutdownOTEL := configOTEL("modbot")
		defer shutdownOTEL()

		srv, err := NewServer(cctx.Context, Config{
			Logger:           logger,
			TelegramToken:    cctx.String("telegram-token"),
			OracleAPIKey:     cctx.String("oracle-api-key"),
			OracleBaseURL:    cctx.String("oracle-base-url"),
			OracleModel:      cctx.String("oracle-model"),
			OracleTimeout:    cctx.Duration("oracle-timeout"),
			Spacing:          cctx.Duration("spacing"),
			SetsFileJSON:     cctx.String("sets-json-path"),
			StatsPath:        cctx.String("stats-path"),
			GroupsPath:       cctx.String("groups-path"),
			RedisURL:         cctx.String("redis-url"),
			DatabaseURL:      cctx.String("database-url"),
			MaxDBConnections: cctx.Int("max-db-connections"),
			DBTracing:        cctx.Bool("enable-db-tracing"),
			AdminCacheTTL:    cctx.Duration("admin-cache-ttl"),
			SlackWebhookURL:  cctx.String("slack-webhook-url"),
			ShutdownTimeout:  cctx.Duration("shutdown-timeout"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				logger.Error("failed to start metrics endpoint", "err", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.Run(cctx.Context); err != nil {
			return fmt.Errorf("failed to run moderation service: %w", err)
		}
		return nil
	},
}

var classifyCmd = &cli.Command{
	Name:  "classify",
	Usage: "reads lines of text from stdin and prints the classification of each",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "denylist-only",
			Usage: "only run the local denylist check, never calling the oracle",
		},
		&cli.DurationFlag{
			Name:    "spacing",
			Usage:   "minimum gap between the starts of consecutive classification calls",
			Value:   engine.DefaultSpacing,
			EnvVars: []string{"MODBOT_SPACING"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context
		logger, err := configLogger(cctx)
		if err != nil {
			return err
		}

		dl, err := loadDenylist(ctx, cctx.String("sets-json-path"))
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(os.Stdin)
		if cctx.Bool("denylist-only") {
			for scanner.Scan() {
				line := scanner.Text()
				if tok := dl.Match(line); tok != "" {
					fmt.Printf("MATCH\t%s\t%s\n", tok, line)
				} else {
					fmt.Printf("-\t%v\t%s\n", keyword.TokenizeText(line), line)
				}
			}
			return scanner.Err()
		}

		adapter := &oracle.Adapter{
			Completer: oracle.NewOpenAIClient(oracle.ClientConfig{
				APIKey:  cctx.String("oracle-api-key"),
				BaseURL: cctx.String("oracle-base-url"),
				Model:   cctx.String("oracle-model"),
				Logger:  logger,
			}),
			Denylist: dl,
			Timeout:  cctx.Duration("oracle-timeout"),
			Logger:   logger,
		}
		return classifyLines(ctx, os.Stdin, os.Stdout, adapter, cctx.Duration("spacing"), logger)
	},
}

// Classifies each input line through a throttled queue, so calls are spaced exactly as in the daemon. Output keeps input order.
func classifyLines(ctx context.Context, r io.Reader, w io.Writer, cls engine.Classifier, spacing time.Duration, logger *slog.Logger) error {
	queue := engine.NewQueue(cls, engine.QueueConfig{Spacing: spacing, Logger: logger})

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for out := range queue.Outcomes() {
			line := out.Message.Text
			switch {
			case out.Err != nil:
				fmt.Fprintf(w, "ERROR\t%v\t%s\n", out.Err, line)
			case out.Result.IsDegraded():
				fmt.Fprintf(w, "%s\tdegraded: %v\t%s\n", out.Result.Category, out.Result.Cause, line)
			default:
				fmt.Fprintf(w, "%s\t%s\n", out.Result.Category, line)
			}
		}
	}()

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		queue.Enqueue(automod.Message{Text: scanner.Text(), MessageID: strconv.Itoa(n)})
	}

	serr := queue.Shutdown(ctx)
	<-printed
	if err := scanner.Err(); err != nil {
		return err
	}
	return serr
}
