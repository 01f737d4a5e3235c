// Package gemini wraps the Gemini generate-content API for the vision and
// persona stages.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/ent0n29/lenstalk/internal/reliability"
)

const DefaultModel = "gemini-2.5-flash"

// GenerationConfig mirrors the sampling knobs each stage sets.
type GenerationConfig struct {
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// Request is one prompt with an optional inline image.
type Request struct {
	Prompt   string
	Image    []byte
	MIMEType string
	Config   GenerationConfig
}

// Generator is the narrow interface stages depend on.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Model() string { return c.model }

// Generate sends one request and returns the cleaned response text. Failures are
// classified as reliability.ErrNetwork or reliability.ErrParse.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if len(req.Image) > 0 {
		mime := req.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image, mime))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	gc := &genai.GenerateContentConfig{MaxOutputTokens: req.Config.MaxOutputTokens}
	if req.Config.Temperature > 0 {
		gc.Temperature = genai.Ptr(req.Config.Temperature)
	}
	if req.Config.TopK > 0 {
		gc.TopK = genai.Ptr(req.Config.TopK)
	}
	if req.Config.TopP > 0 {
		gc.TopP = genai.Ptr(req.Config.TopP)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, gc)
	if err != nil {
		return "", classify(ctx, err)
	}
	text := CleanOutput(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: %w: empty text", reliability.ErrParse)
	}
	return text, nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	// genai returns APIError by value.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &reliability.StatusError{Service: "gemini", Status: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &reliability.StatusError{Service: "gemini", Status: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini: %w: %w", reliability.ErrNetwork, err)
}

// CleanOutput strips code fences and surrounding whitespace from model text.
func CleanOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```text")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
