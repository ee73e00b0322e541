package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wbsgen/internal/server"
	"github.com/matzehuels/wbsgen/pkg/cache"
	"github.com/matzehuels/wbsgen/pkg/pipeline"
	"github.com/matzehuels/wbsgen/pkg/store"
)

// Environment variables read by serve.
const (
	envAddr     = "WBSGEN_ADDR"
	envRedisURL = "WBSGEN_REDIS_URL"
	envMongoURI = "WBSGEN_MONGO_URI"
	envStoreURI = "WBSGEN_STORE"
)

const (
	defaultAddr     = ":8080"
	defaultStoreURI = "file:"
	redisKeyPrefix  = "wbsgen:"
)

type serveFlags struct {
	addr     string
	redisURL string
	storeURI string
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	flags := serveFlags{
		addr:     envOr(envAddr, defaultAddr),
		redisURL: os.Getenv(envRedisURL),
		storeURI: envOr(envStoreURI, envOr(envMongoURI, defaultStoreURI)),
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for the interactive preview",
		Long: `Run the HTTP API for the interactive preview.

Documents are stored under the --store URI: "memory:", "file:<dir>",
"sqlite:<path>" or "mongodb://host/db". Without --redis, caching is in-process.

Environment: WBSGEN_ADDR, WBSGEN_REDIS_URL, WBSGEN_STORE, WBSGEN_MONGO_URI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", flags.addr, "listen address")
	cmd.Flags().StringVar(&flags.redisURL, "redis", flags.redisURL, "Redis URL for a shared cache")
	cmd.Flags().StringVar(&flags.storeURI, "store", flags.storeURI, "document store URI")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	settings, err := c.settings()
	if err != nil {
		return err
	}

	var ch cache.Cache = cache.NewMemoryCache(1024)
	switch {
	case c.noCache:
		ch = cache.NewNullCache()
	case flags.redisURL != "":
		rc, err := cache.NewRedisCache(ctx, flags.redisURL, redisKeyPrefix)
		if err != nil {
			return err
		}
		ch = rc
	}
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	defer runner.Close()

	st, err := store.Open(ctx, flags.storeURI)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	c.Logger.Info("starting server", "store", storeScheme(flags.storeURI), "redis", flags.redisURL != "")
	srv := server.New(runner, st, c.Logger, server.Options{Settings: settings})
	say(markNote, "Serving on %s", flags.addr)
	return srv.ListenAndServe(ctx, flags.addr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// storeScheme returns the scheme of a store URI, which is safe to log; the
// rest may carry credentials.
func storeScheme(uri string) string {
	if scheme, _, ok := strings.Cut(uri, ":"); ok && scheme != "" {
		return scheme
	}
	return "memory"
}
