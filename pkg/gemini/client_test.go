package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/finanvoice/voz/pkg/core/audio"
)

// fakeEndpoint runs a websocket server that completes the setup handshake
// and then hands the connection to serve.
func fakeEndpoint(t *testing.T, serve func(conn *websocket.Conn, setup SetupFrame)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var setup SetupFrame
		if err := conn.ReadJSON(&setup); err != nil {
			t.Errorf("read setup: %v", err)
			return
		}
		if err := conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}}); err != nil {
			return
		}
		if serve != nil {
			serve(conn, setup)
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialFake(t *testing.T, endpoint string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Connect(ctx, Config{
		Endpoint:          endpoint,
		APIKey:            "test-key",
		Model:             "test-model",
		Voice:             "Kore",
		ReceiveSampleRate: 24000,
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestConnectSendsSetup(t *testing.T) {
	setupCh := make(chan SetupFrame, 1)
	endpoint := fakeEndpoint(t, func(conn *websocket.Conn, setup SetupFrame) {
		setupCh <- setup
		conn.ReadMessage() // hold until client closes
	})
	c := dialFake(t, endpoint)
	defer c.Close()

	setup := <-setupCh
	if setup.Setup.Model != "models/test-model" {
		t.Errorf("model = %q", setup.Setup.Model)
	}
	voice := setup.Setup.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName
	if voice != "Kore" {
		t.Errorf("voice = %q", voice)
	}
	if got := setup.Setup.GenerationConfig.ResponseModalities; len(got) != 1 || got[0] != "AUDIO" {
		t.Errorf("modalities = %v", got)
	}
}

func TestConnectRejectsMissingKey(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestAudioMessageDecoded(t *testing.T) {
	pcm := audio.EncodeBase64([]float32{0.1, 0.2, 0.3, 0.4})
	endpoint := fakeEndpoint(t, func(conn *websocket.Conn, _ SetupFrame) {
		conn.WriteJSON(map[string]any{
			"serverContent": map[string]any{
				"modelTurn": map[string]any{
					"parts": []map[string]any{
						{"inlineData": map[string]any{"mimeType": "audio/pcm;rate=24000", "data": pcm}},
					},
				},
			},
		})
		conn.ReadMessage()
	})
	c := dialFake(t, endpoint)

	msg := waitMessage(t, c)
	am, ok := msg.(AudioMessage)
	if !ok {
		t.Fatalf("got %T, want AudioMessage", msg)
	}
	if am.Audio.SampleRate != 24000 || am.Audio.Frames() != 4 {
		t.Errorf("decoded %d frames at %d Hz", am.Audio.Frames(), am.Audio.SampleRate)
	}
}

func TestMalformedAudioDroppedStreamContinues(t *testing.T) {
	endpoint := fakeEndpoint(t, func(conn *websocket.Conn, _ SetupFrame) {
		conn.WriteJSON(map[string]any{
			"serverContent": map[string]any{
				"modelTurn": map[string]any{
					"parts": []map[string]any{
						{"inlineData": map[string]any{"mimeType": "audio/pcm;rate=24000", "data": "!!!notbase64!!!"}},
					},
				},
			},
		})
		conn.WriteJSON(map[string]any{"serverContent": map[string]any{"turnComplete": true}})
		conn.ReadMessage()
	})
	c := dialFake(t, endpoint)

	if _, ok := waitMessage(t, c).(DecodeErrorMessage); !ok {
		t.Fatal("expected DecodeErrorMessage first")
	}
	if _, ok := waitMessage(t, c).(TurnCompleteMessage); !ok {
		t.Fatal("expected stream to continue with TurnCompleteMessage")
	}
}

func TestToolCallAndInterrupted(t *testing.T) {
	endpoint := fakeEndpoint(t, func(conn *websocket.Conn, _ SetupFrame) {
		conn.WriteJSON(map[string]any{
			"toolCall": map[string]any{
				"functionCalls": []map[string]any{
					{"id": "call-1", "name": "navigate", "args": map[string]any{"view": "HOME"}},
				},
			},
		})
		conn.WriteJSON(map[string]any{"serverContent": map[string]any{"interrupted": true}})

		// Expect the tool ack back.
		var ack ToolResponseFrame
		if err := conn.ReadJSON(&ack); err != nil {
			return
		}
		if len(ack.ToolResponse.FunctionResponses) != 1 || ack.ToolResponse.FunctionResponses[0].ID != "call-1" {
			t.Errorf("unexpected ack: %+v", ack)
		}
		conn.ReadMessage()
	})
	c := dialFake(t, endpoint)

	tc, ok := waitMessage(t, c).(ToolCallMessage)
	if !ok {
		t.Fatal("expected ToolCallMessage")
	}
	if len(tc.Calls) != 1 || tc.Calls[0].Name != "navigate" {
		t.Fatalf("calls = %+v", tc.Calls)
	}
	if _, ok := waitMessage(t, c).(InterruptedMessage); !ok {
		t.Fatal("expected InterruptedMessage")
	}

	if err := c.SendToolAck("call-1", "navigate", map[string]any{"result": "ok"}); err != nil {
		t.Fatalf("SendToolAck: %v", err)
	}
}

func TestBackpressureShedsOnlyAudio(t *testing.T) {
	c := &Client{messages: make(chan ServerMessage, 1), log: zap.NewNop()}

	c.emit(AudioMessage{})
	c.emit(AudioMessage{})
	if len(c.messages) != 1 {
		t.Fatalf("buffered %d messages, want the overflow audio shed", len(c.messages))
	}

	delivered := make(chan struct{})
	go func() {
		c.emit(ToolCallMessage{Calls: []FunctionCall{{ID: "call-1", Name: "navigate"}}})
		close(delivered)
	}()

	// The tool call waits for room instead of being shed.
	select {
	case <-delivered:
		t.Fatal("tool call emitted into a full buffer")
	case <-time.After(20 * time.Millisecond):
	}

	if _, ok := (<-c.messages).(AudioMessage); !ok {
		t.Fatal("expected the buffered audio first")
	}
	select {
	case msg := <-c.messages:
		tc, ok := msg.(ToolCallMessage)
		if !ok || len(tc.Calls) != 1 || tc.Calls[0].ID != "call-1" {
			t.Fatalf("got %#v, want the tool call", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("tool call never delivered")
	}
	<-delivered
}

func TestSendAudioFrameShape(t *testing.T) {
	frames := make(chan []byte, 1)
	endpoint := fakeEndpoint(t, func(conn *websocket.Conn, _ SetupFrame) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frames <- data
		conn.ReadMessage()
	})
	c := dialFake(t, endpoint)

	if err := c.SendAudio("cGNtZGF0YQ=="); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}
	var frame RealtimeInputFrame
	if err := json.Unmarshal(<-frames, &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	chunks := frame.RealtimeInput.MediaChunks
	if len(chunks) != 1 || chunks[0].MIMEType != SendMIMEType || chunks[0].Data != "cGNtZGF0YQ==" {
		t.Errorf("chunks = %+v", chunks)
	}
}

func TestCloseIsIdempotentAndCleanErr(t *testing.T) {
	endpoint := fakeEndpoint(t, func(conn *websocket.Conn, _ SetupFrame) {
		conn.ReadMessage()
	})
	c := dialFake(t, endpoint)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := c.Err(); err != nil {
		t.Errorf("Err after clean close = %v, want nil", err)
	}
	if err := c.SendAudio("x"); err == nil {
		t.Error("SendAudio after Close should fail")
	}
}

func waitMessage(t *testing.T, c *Client) ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-c.Messages():
		if !ok {
			t.Fatal("message channel closed")
		}
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}
