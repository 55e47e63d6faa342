package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"auricle/internal/services"
	"auricle/internal/textutil"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings for the synthesis endpoint.
type Config struct {
	Endpoint       string
	Voice          string
	StaticDomain   string
	TimeoutSeconds int
	AudioDir       string
}

// Client talks to the text-to-speech endpoint and stores the returned audio
// under the media directory.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the timestamp source used for audio filenames.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a synthesis client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			Endpoint:       strings.TrimSpace(cfg.Endpoint),
			Voice:          strings.TrimSpace(cfg.Voice),
			StaticDomain:   strings.TrimRight(strings.TrimSpace(cfg.StaticDomain), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
			AudioDir:       cfg.AudioDir,
		},
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	if client.cfg.Voice == "" {
		client.cfg.Voice = DefaultVoice
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ConfiguredVoice returns the voice used when a request does not name one.
func (c *Client) ConfiguredVoice() string {
	return c.cfg.Voice
}

type synthesisRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Seed  int    `json:"seed"`
}

// Synthesize sends text to the endpoint with the given voice token (empty
// means the configured default), writes the audio payload into the media
// directory, and returns the public URL of the stored file. Unknown voices
// and empty text fail validation before any network call.
func (c *Client) Synthesize(ctx context.Context, text, voiceToken string, seed int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "narrate", "synthesize", "text required", nil)
	}
	if voiceToken == "" {
		voiceToken = c.cfg.Voice
	}
	voice, ok := LookupVoice(voiceToken)
	if !ok {
		return "", services.Wrap(services.ErrValidation, "narrate", "synthesize", fmt.Sprintf("unknown voice %q", voiceToken), nil)
	}
	if c.cfg.Endpoint == "" {
		return "", services.Wrap(services.ErrConfiguration, "narrate", "synthesize", "endpoint required", nil)
	}

	audio, err := c.fetchAudio(ctx, text, voice, seed)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("audio_%d_%s.mp3", c.now().Unix(), uuid.NewString()[:8])
	if err := os.MkdirAll(c.cfg.AudioDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "narrate", "synthesize", "create media directory", err)
	}
	path := filepath.Join(c.cfg.AudioDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", services.Wrap(services.ErrTransient, "narrate", "synthesize", "write audio file", err)
	}
	return c.cfg.StaticDomain + "/static/audio/" + name, nil
}

func (c *Client) fetchAudio(ctx context.Context, text string, voice Voice, seed int) ([]byte, error) {
	encoded, err := json.Marshal(synthesisRequest{Text: text, Voice: voice.Token, Seed: seed})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "narrate", "synthesize", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "narrate", "synthesize", "new request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "narrate", "synthesize", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "narrate", "synthesize", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, textutil.Snippet(string(body), 160))
		return nil, services.Wrap(services.ErrExternalTool, "narrate", "synthesize", detail, nil)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "narrate", "synthesize", "empty audio payload", nil)
	}
	return body, nil
}
