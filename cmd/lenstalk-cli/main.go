package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/ent0n29/lenstalk/internal/app"
	"github.com/ent0n29/lenstalk/internal/audio"
	"github.com/ent0n29/lenstalk/internal/config"
	"github.com/ent0n29/lenstalk/internal/logging"
	"github.com/ent0n29/lenstalk/internal/persona"
	"github.com/ent0n29/lenstalk/internal/pipeline"
	"github.com/ent0n29/lenstalk/internal/protocol"
	"github.com/ent0n29/lenstalk/internal/vision"
)

type options struct {
	imagePath      string
	persona1       string
	persona2       string
	language       string
	rounds         int
	guestID        string
	outPath        string
	transcriptPath string
	serverURL      string
	timeout        time.Duration
	verbose        bool
}

// result is what either mode hands back for writing.
type result struct {
	ID       string
	Mode     string
	Script   string
	WAV      []byte
	Degraded bool
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "lenstalk-cli: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "lenstalk-cli: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var cfg options
	fs.StringVar(&cfg.imagePath, "image", "", "path to the photo to interpret (required)")
	fs.StringVar(&cfg.persona1, "persona1", string(persona.WittyEntertainer), "first persona id")
	fs.StringVar(&cfg.persona2, "persona2", "", "second persona id; empty for narration")
	fs.StringVar(&cfg.language, "lang", "en", "output language (en|es|fr|de|ko|ja)")
	fs.IntVar(&cfg.rounds, "rounds", 3, "debate rounds")
	fs.StringVar(&cfg.guestID, "guest-id", "", "guest id counted against the usage limit")
	fs.StringVar(&cfg.outPath, "out", "lenstalk.wav", "output WAV path")
	fs.StringVar(&cfg.transcriptPath, "transcript", "", "output transcript path (default: -out with .txt)")
	fs.StringVar(&cfg.serverURL, "server", "", "base URL of a running server; empty runs the pipeline in-process")
	fs.DurationVar(&cfg.timeout, "timeout", 5*time.Minute, "overall timeout")
	fs.BoolVar(&cfg.verbose, "verbose", true, "print progress")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg.imagePath = strings.TrimSpace(cfg.imagePath)
	if cfg.imagePath == "" {
		return options{}, fmt.Errorf("image is required")
	}
	if _, err := persona.Parse(cfg.persona1); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(cfg.persona2) != "" {
		if _, err := persona.Parse(cfg.persona2); err != nil {
			return options{}, err
		}
	}
	if cfg.rounds < 1 || cfg.rounds > 10 {
		return options{}, fmt.Errorf("rounds must be in [1,10]")
	}
	if cfg.timeout < time.Second {
		return options{}, fmt.Errorf("timeout must be at least 1s")
	}
	if strings.TrimSpace(cfg.outPath) == "" {
		return options{}, fmt.Errorf("out is required")
	}
	if cfg.transcriptPath == "" {
		cfg.transcriptPath = strings.TrimSuffix(cfg.outPath, filepath.Ext(cfg.outPath)) + ".txt"
	}
	cfg.serverURL = strings.TrimRight(strings.TrimSpace(cfg.serverURL), "/")
	return cfg, nil
}

func run(cfg options, stdout io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	raw, err := os.ReadFile(cfg.imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	img, err := vision.NewImage(raw, "")
	if err != nil {
		return err
	}

	progress := func(ev protocol.Progress) {
		if !cfg.verbose {
			return
		}
		line := "lenstalk-cli: " + ev.Stage
		if ev.Persona != "" {
			line += fmt.Sprintf(" persona=%s", ev.Persona)
		}
		if ev.Total > 0 {
			line += fmt.Sprintf(" %d/%d", ev.Index, ev.Total)
		}
		if ev.Status != "" && ev.Status != "ok" {
			line += " status=" + ev.Status
		}
		fmt.Fprintln(stdout, line)
	}

	var res result
	if cfg.serverURL == "" {
		res, err = runLocal(ctx, cfg, img, progress)
	} else {
		res, err = runRemote(ctx, cfg, img, progress)
	}
	if err != nil {
		return err
	}
	return writeResult(cfg, res, stdout)
}

func runLocal(ctx context.Context, cfg options, img vision.Image, progress pipeline.Sink) (result, error) {
	_ = godotenv.Load()
	appCfg, err := config.Load()
	if err != nil {
		return result{}, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(logging.Options{Level: appCfg.LogLevel, Format: "console"})
	core, err := app.BuildCore(ctx, appCfg, nil, nil, logger)
	if err != nil {
		return result{}, err
	}

	p1, _ := persona.Parse(cfg.persona1)
	var p2 persona.ID
	if strings.TrimSpace(cfg.persona2) != "" {
		p2, _ = persona.Parse(cfg.persona2)
	}
	art, err := core.Pipeline.Run(ctx, pipeline.Request{
		Image:    img,
		Persona1: p1,
		Persona2: p2,
		Language: persona.ParseLanguage(cfg.language),
		Rounds:   cfg.rounds,
		GuestID:  cfg.guestID,
	}, progress)
	if err != nil {
		return result{}, err
	}
	return result{
		ID:       art.ID,
		Mode:     string(art.Mode),
		Script:   art.Script,
		WAV:      art.Audio,
		Degraded: art.Degraded,
	}, nil
}

type wsEnvelope struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id,omitempty"`
	ID          string `json:"id,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Script      string `json:"script,omitempty"`
	Degraded    bool   `json:"degraded,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Code        string `json:"code,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

func runRemote(ctx context.Context, cfg options, img vision.Image, progress pipeline.Sink) (result, error) {
	wsURL, err := wsURLFor(cfg.serverURL)
	if err != nil {
		return result{}, fmt.Errorf("build ws URL: %w", err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return result{}, fmt.Errorf("open websocket: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.InterpretRequest{
		Type:     protocol.TypeInterpretRequest,
		Image:    img.DataURI(),
		Persona1: cfg.persona1,
		Persona2: cfg.persona2,
		Language: cfg.language,
		Rounds:   cfg.rounds,
		GuestID:  cfg.guestID,
	}); err != nil {
		return result{}, fmt.Errorf("send request: %w", err)
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return result{}, ctx.Err()
			}
			return result{}, fmt.Errorf("ws read: %w", err)
		}
		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		switch protocol.MessageType(env.Type) {
		case protocol.TypeSessionStarted:
			if cfg.verbose {
				progress(protocol.Progress{Stage: "session_started " + env.SessionID})
			}
		case protocol.TypeProgress:
			var ev protocol.Progress
			if err := json.Unmarshal(data, &ev); err == nil {
				progress(ev)
			}
		case protocol.TypeErrorEvent:
			return result{}, fmt.Errorf("server error %s: %s", env.Code, env.Detail)
		case protocol.TypeArtifact:
			wav, err := base64.StdEncoding.DecodeString(env.AudioBase64)
			if err != nil {
				return result{}, fmt.Errorf("decode audio: %w", err)
			}
			return result{
				ID:       env.ID,
				Mode:     env.Mode,
				Script:   env.Script,
				WAV:      wav,
				Degraded: env.Degraded,
			}, nil
		}
	}
}

func wsURLFor(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", fmt.Errorf("server host is required")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/interpret/ws"
	return u.String(), nil
}

func writeResult(cfg options, res result, stdout io.Writer) error {
	pcm, info, err := audio.ParseWAV(res.WAV)
	if err != nil {
		return fmt.Errorf("artifact audio: %w", err)
	}
	if len(pcm) == 0 {
		return errors.New("artifact audio is empty")
	}
	if err := os.WriteFile(cfg.outPath, res.WAV, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	if err := os.WriteFile(cfg.transcriptPath, []byte(res.Script+"\n"), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	seconds := float64(len(pcm)) / float64(2*info.Channels*info.SampleRate)
	fmt.Fprintf(stdout, "lenstalk-cli: artifact=%s mode=%s degraded=%t audio=%s (%.1fs @ %dHz) transcript=%s\n",
		res.ID, res.Mode, res.Degraded, cfg.outPath, seconds, info.SampleRate, cfg.transcriptPath)
	return nil
}
