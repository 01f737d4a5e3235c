package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ent0n29/lenstalk/internal/artifact"
	"github.com/ent0n29/lenstalk/internal/assembly"
	"github.com/ent0n29/lenstalk/internal/config"
	"github.com/ent0n29/lenstalk/internal/debate"
	"github.com/ent0n29/lenstalk/internal/gemini"
	"github.com/ent0n29/lenstalk/internal/httpapi"
	"github.com/ent0n29/lenstalk/internal/observability"
	"github.com/ent0n29/lenstalk/internal/pipeline"
	"github.com/ent0n29/lenstalk/internal/reliability"
	"github.com/ent0n29/lenstalk/internal/session"
	"github.com/ent0n29/lenstalk/internal/usage"
	"github.com/ent0n29/lenstalk/internal/vision"
	"github.com/ent0n29/lenstalk/internal/voice"
)

type VoiceInfo struct {
	Provider string
	Detail   string
	ModelID  string
}

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Sessions *session.Manager
	Pipeline *pipeline.Pipeline
	Speech   *voice.Synthesizer
	Archive  *artifact.Archive
	Metrics  *observability.Metrics
	Voice    VoiceInfo
	// VisionModel is empty when no Gemini key is configured.
	VisionModel string

	// Cleanup should be called on shutdown to release external resources (DB, Redis, etc).
	Cleanup func() error
}

// Core is the pipeline and its direct dependencies, without the HTTP surface.
type Core struct {
	Pipeline    *pipeline.Pipeline
	Speech      *voice.Synthesizer
	Voice       VoiceInfo
	VisionModel string
}

// BuildCore wires the generation service, speech synthesis and the pipeline.
// usageCounter and metrics may be nil.
func BuildCore(ctx context.Context, cfg config.Config, usageCounter usage.Counter, metrics *observability.Metrics, logger zerolog.Logger) (*Core, error) {
	var model gemini.Generator
	visionModel := ""
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini client init failed: %w", err)
		}
		model = client
		visionModel = client.Model()
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set; descriptions and turns use templates")
	}

	speech, info, err := buildSynthesizer(cfg, logger)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(pipeline.Deps{
		Vision: vision.NewAnalyzer(model, policyFor(cfg, cfg.VisionTimeout), logger),
		Turns:  debate.NewGenerator(model, policyFor(cfg, cfg.GenerateTimeout), logger),
		Speech: speech,
		Assembly: assembly.Config{
			Gap:         cfg.SilenceGap,
			Concurrency: cfg.SynthesisConcurrency,
		},
		Usage:   usageCounter,
		Metrics: metrics,
	}, logger)

	return &Core{Pipeline: p, Speech: speech, Voice: info, VisionModel: visionModel}, nil
}

func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace, nil)

	var closers []func() error
	cleanup := func() error {
		var errs []string
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	counter, closeUsage, err := buildUsage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closeUsage != nil {
		closers = append(closers, closeUsage)
	}

	core, err := BuildCore(ctx, cfg, counter, metrics, logger)
	if err != nil {
		_ = cleanup()
		return nil, err
	}

	store, err := artifact.NewStore(ctx, cfg.DatabaseURL, cfg.MongoURI)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("artifact store init failed: %w", err)
	}
	blobs, err := artifact.NewBlobs(ctx, artifact.S3Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Prefix:   cfg.S3Prefix,
		Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		_ = store.Close()
		_ = cleanup()
		return nil, fmt.Errorf("audio store init failed: %w", err)
	}
	archive := artifact.NewArchive(store, blobs, cfg.PublicBaseURL)
	closers = append(closers, archive.Close)

	sessions := session.NewManager(cfg.SessionRetention)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.Event("expired")
	})

	api := httpapi.New(cfg, httpapi.Deps{
		Sessions:    sessions,
		Interpreter: core.Pipeline,
		Speech:      core.Speech,
		Archive:     archive,
		Usage:       counter,
		Metrics:     metrics,
		Providers: map[string]bool{
			"gemini":     core.VisionModel != "",
			"elevenlabs": core.Speech.HasPrimary(),
		},
	}, logger)

	return &BuildResult{
		Config:      cfg,
		API:         api,
		Sessions:    sessions,
		Pipeline:    core.Pipeline,
		Speech:      core.Speech,
		Archive:     archive,
		Metrics:     metrics,
		Voice:       core.Voice,
		VisionModel: core.VisionModel,
		Cleanup:     cleanup,
	}, nil
}

// buildUsage picks Redis when REDIS_URL is set, memory when only a limit is
// set, and no limit when GUEST_LIMIT is 0.
func buildUsage(ctx context.Context, cfg config.Config) (usage.Counter, func() error, error) {
	if cfg.GuestLimit <= 0 {
		return usage.Unlimited{}, nil, nil
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return usage.NewMemoryCounter(cfg.GuestLimit, cfg.GuestWindow), nil, nil
	}
	rdb, err := usage.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("usage store init failed: %w", err)
	}
	return usage.NewRedisCounter(rdb, cfg.GuestLimit, cfg.GuestWindow), rdb.Close, nil
}

func policyFor(cfg config.Config, timeout time.Duration) reliability.Policy {
	return reliability.Policy{
		Attempts:    cfg.RetryAttempts,
		Timeout:     timeout,
		BackoffBase: cfg.RetryBackoff,
		BackoffCap:  cfg.RetryBackoffCap,
	}
}
