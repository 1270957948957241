package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/finanvoice/voz/pkg/core/audio"
)

const (
	// DefaultEndpoint is the realtime BidiGenerateContent websocket URL.
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	defaultConnectTimeout = 15 * time.Second

	// SendMIMEType is the declared format of outbound media chunks.
	SendMIMEType = "audio/pcm;rate=16000"
)

// ServerMessage is a typed message decoded from a server frame.
type ServerMessage interface {
	serverMessageType() string
}

// AudioMessage carries one chunk of assistant speech, decoded to samples.
type AudioMessage struct {
	Audio *audio.Buffer
}

func (AudioMessage) serverMessageType() string { return "audio" }

// ToolCallMessage carries requested function invocations.
type ToolCallMessage struct {
	Calls []FunctionCall
}

func (ToolCallMessage) serverMessageType() string { return "tool_call" }

// InterruptedMessage signals the model's turn was cut off by user speech.
type InterruptedMessage struct{}

func (InterruptedMessage) serverMessageType() string { return "interrupted" }

// TurnCompleteMessage signals the model finished its turn.
type TurnCompleteMessage struct{}

func (TurnCompleteMessage) serverMessageType() string { return "turn_complete" }

// DecodeErrorMessage reports a malformed inbound frame or audio chunk that
// was dropped. The stream continues.
type DecodeErrorMessage struct {
	Err error
}

func (DecodeErrorMessage) serverMessageType() string { return "decode_error" }

// Config configures a realtime connection.
type Config struct {
	Endpoint          string
	APIKey            string
	Model             string
	Voice             string
	SystemInstruction string
	Tools             []Tool
	// ReceiveSampleRate is the PCM rate of inbound assistant audio.
	ReceiveSampleRate int
	Logger            *zap.Logger
}

// Client is an open realtime session. Sends are safe for concurrent use;
// Messages is read by a single consumer.
type Client struct {
	conn     *websocket.Conn
	cfg      Config
	log      *zap.Logger
	messages chan ServerMessage

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}

	errMu sync.Mutex
	err   error
}

// Connect dials the realtime endpoint, sends the setup frame, and waits for
// setupComplete before returning an open client.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if cfg.ReceiveSampleRate <= 0 {
		cfg.ReceiveSampleRate = 24000
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	wsURL := endpoint + "?key=" + url.QueryEscape(cfg.APIKey)

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("gemini: websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("gemini: websocket dial failed: %w", err)
	}

	setup := SetupFrame{Setup: Setup{
		Model: "models/" + cfg.Model,
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &SpeechConfig{
				VoiceConfig: &VoiceConfig{
					PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: cfg.Voice},
				},
			},
		},
		Tools: cfg.Tools,
	}}
	if cfg.SystemInstruction != "" {
		setup.Setup.SystemInstruction = &Content{Parts: []Part{{Text: cfg.SystemInstruction}}}
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("gemini: send setup: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(defaultConnectTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("gemini: read setup ack: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var ack ServerFrame
	if err := json.Unmarshal(payload, &ack); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("gemini: decode setup ack: %w", err)
	}
	if ack.SetupComplete == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("gemini: expected setupComplete, got %s", payload)
	}

	c := &Client{
		conn:     conn,
		cfg:      cfg,
		log:      log,
		messages: make(chan ServerMessage, 256),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Messages returns the inbound message stream. The channel closes when the
// connection ends; Err reports why.
func (c *Client) Messages() <-chan ServerMessage {
	return c.messages
}

// SendAudio streams one chunk of base64 16-bit LE PCM microphone audio.
func (c *Client) SendAudio(payload string) error {
	return c.sendJSON(RealtimeInputFrame{RealtimeInput: RealtimeInput{
		MediaChunks: []Blob{{MIMEType: SendMIMEType, Data: payload}},
	}})
}

// SendText sends a complete user text turn.
func (c *Client) SendText(text string) error {
	return c.sendJSON(ClientContentFrame{ClientContent: ClientContent{
		Turns:        []Content{{Role: "user", Parts: []Part{{Text: text}}}},
		TurnComplete: true,
	}})
}

// SendToolAck reports a tool call's result back to the model.
func (c *Client) SendToolAck(id, name string, response map[string]any) error {
	return c.sendJSON(ToolResponseFrame{ToolResponse: ToolResponse{
		FunctionResponses: []FunctionResponse{{ID: id, Name: name, Response: response}},
	}})
}

func (c *Client) sendJSON(v any) error {
	if c.closed.Load() {
		return fmt.Errorf("gemini: connection is closed")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Close closes the connection and waits for the read loop to drain.
// Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
	<-c.done
	return nil
}

// Err returns the terminal connection error, or nil after a clean close.
// It blocks until the read loop has finished.
func (c *Client) Err() error {
	<-c.done
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Client) setErr(err error) {
	if err == nil {
		return
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.messages)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			c.setErr(err)
			return
		}

		var frame ServerFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Warn("dropping malformed frame", zap.Error(err))
			c.emit(DecodeErrorMessage{Err: err})
			continue
		}

		switch {
		case frame.ToolCall != nil:
			c.emit(ToolCallMessage{Calls: frame.ToolCall.FunctionCalls})
		case frame.ServerContent != nil:
			c.emitServerContent(frame.ServerContent)
		}
	}
}

func (c *Client) emitServerContent(sc *ServerContent) {
	if sc.Interrupted {
		c.emit(InterruptedMessage{})
	}
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			buf, err := audio.DecodeBase64(part.InlineData.Data, c.cfg.ReceiveSampleRate, 1)
			if err != nil {
				c.log.Warn("dropping malformed audio chunk", zap.Error(err))
				c.emit(DecodeErrorMessage{Err: err})
				continue
			}
			c.emit(AudioMessage{Audio: buf})
		}
	}
	if sc.TurnComplete {
		c.emit(TurnCompleteMessage{})
	}
}

// emit hands a message to the consumer. When the consumer falls behind,
// audio chunks are shed; everything else blocks until there is room, since
// a lost tool call would also lose its mandatory ack.
func (c *Client) emit(msg ServerMessage) {
	if _, ok := msg.(AudioMessage); ok {
		select {
		case c.messages <- msg:
		default:
			c.log.Warn("dropping audio chunk, consumer is behind")
		}
		return
	}
	c.messages <- msg
}
