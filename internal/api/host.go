package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mob-ledger/internal/config"
	"mob-ledger/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Sink is where the ledger sends things back into the host world.
type Sink interface {
	PlaceArtifact(ctx context.Context, at domain.Location, artifact domain.Artifact) error
	SendText(ctx context.Context, actor, text string) error
}

func NewSink(cfg *config.Config, logger zerolog.Logger) Sink {
	if cfg.HostBridgeURL == "" {
		logger.Info().Msg("no host bridge configured, artifacts and messages will be logged")
		return NewLogSink(logger)
	}
	return NewHostClient(cfg)
}

// HostClient posts to the host bridge HTTP endpoint.
type HostClient struct {
	baseURL string
	token   string
	client  *fasthttp.Client
}

func NewHostClient(cfg *config.Config) *HostClient {
	return &HostClient{
		baseURL: strings.TrimRight(cfg.HostBridgeURL, "/"),
		token:   cfg.HostBridgeToken,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        5 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type PlaceArtifactRequest struct {
	Location domain.Location `json:"location"`
	Artifact domain.Artifact `json:"artifact"`
}

type SendTextRequest struct {
	Actor string `json:"actor"`
	Text  string `json:"text"`
}

func (c *HostClient) PlaceArtifact(ctx context.Context, at domain.Location, artifact domain.Artifact) error {
	return doPost(ctx, c, "/artifacts", PlaceArtifactRequest{Location: at, Artifact: artifact})
}

func (c *HostClient) SendText(ctx context.Context, actor, text string) error {
	return doPost(ctx, c, "/messages", SendTextRequest{Actor: actor, Text: text})
}

func doPost[T any](ctx context.Context, client *HostClient, path string, body T) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if client.token != "" {
		req.Header.Set("Authorization", client.token)
	}
	req.SetBody(payload)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return err
		}
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("host bridge error: %d", code)
	}
	return nil
}

// LogSink writes what would have gone to the host into the log.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "log_sink").Logger()}
}

func (s *LogSink) PlaceArtifact(_ context.Context, at domain.Location, artifact domain.Artifact) error {
	s.logger.Info().
		Str("label", artifact.Label).
		Str("serial", artifact.Serial).
		Str("realm", at.Realm).
		Int("x", at.X).
		Int("y", at.Y).
		Int("z", at.Z).
		Msg("artifact placed")
	return nil
}

func (s *LogSink) SendText(_ context.Context, actor, text string) error {
	s.logger.Info().Str("actor", actor).Str("text", text).Msg("text sent")
	return nil
}
