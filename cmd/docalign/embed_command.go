package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/docalign/internal/db/redis"
	"github.com/kailas-cloud/docalign/internal/domain"
	"github.com/kailas-cloud/docalign/internal/metrics"
	"github.com/kailas-cloud/docalign/internal/repository/embcache"
	"github.com/kailas-cloud/docalign/internal/repository/manifest"
	openaiEmb "github.com/kailas-cloud/docalign/internal/transport/openai"
	embeduc "github.com/kailas-cloud/docalign/internal/usecase/embed"
)

func newEmbedCommand(cctx *commandContext) *cobra.Command {
	var (
		manifestPath string
		srcOut       string
		trgOut       string
	)

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Generate sentence embeddings for manifest documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cctx.cfg
			logger := cctx.logger

			if cfg.Embedding.APIKey == "" {
				return fmt.Errorf("%w: embedding.api_key is not configured", domain.ErrMissingInput)
			}

			metrics.Register()

			m, err := manifest.Load(manifestPath, logger)
			if err != nil {
				return err
			}

			embedder, closeStore, err := buildEmbedder(cmd.Context(), cctx)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := embeduc.New(embedder, cfg.Embedding.BatchSize, logger)

			ctx := cmd.Context()
			for _, side := range []struct {
				entries []manifest.Entry
				out     string
				side    domain.Side
			}{
				{m.Source, srcOut, domain.SideSource},
				{m.Target, trgOut, domain.SideTarget},
			} {
				start := time.Now()
				if err := svc.Run(ctx, side.entries, side.out, side.side); err != nil {
					return err
				}
				logger.Info("side embedded",
					zap.String("side", string(side.side)),
					zap.Int("documents", len(side.entries)),
					zap.Duration("elapsed", time.Since(start)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Document manifest (path<TAB>url<TAB>src|trg)")
	cmd.Flags().StringVar(&srcOut, "src-out", "", "Output embedding file for the source side")
	cmd.Flags().StringVar(&trgOut, "trg-out", "", "Output embedding file for the target side")

	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("src-out")
	_ = cmd.MarkFlagRequired("trg-out")

	return cmd
}

// buildEmbedder assembles the provider chain: OpenAI-compatible transport,
// optionally wrapped in the Redis-backed sentence cache.
func buildEmbedder(ctx context.Context, cctx *commandContext) (domain.BatchEmbedder, func(), error) {
	cfg := cctx.cfg
	logger := cctx.logger

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	if !cfg.Cache.Enabled {
		return base, func() {}, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Username: cfg.Cache.Username,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create embedding cache store: %w", err)
	}
	if err := store.WaitForReady(ctx, 10*time.Second); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("embedding cache not ready: %w", err)
	}

	logger.Info("embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	cached := embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	return cached, store.Close, nil
}
