package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSendMessageOwnsThreadState(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)

		var msg ChatMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		raw, _ := json.Marshal(msg)
		bodies = append(bodies, string(raw))

		json.NewEncoder(w).Encode(ChatReply{
			ThreadID: "thread_abc123",
			Response: "answer " + msg.Query,
		})
	}))
	defer srv.Close()

	client, err := NewChatClient(srv.URL)
	require.NoError(t, err)

	rsp, err := client.SendMessage(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "answer first", rsp)
	assert.Equal(t, "thread_abc123", client.ThreadID())

	_, err = client.SendMessage(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	// the first turn carries no identifier; the second carries the minted one
	assert.False(t, gjson.Get(bodies[0], "thread_id").Exists())
	assert.Equal(t, "thread_abc123", gjson.Get(bodies[1], "thread_id").String())
}

func TestSendMessageReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatReply{ThreadID: "thread_abc123", Response: "ok"})
	}))
	defer srv.Close()

	client, err := NewChatClient(srv.URL)
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "thread_abc123", client.ThreadID())

	client.Reset()
	assert.Empty(t, client.ThreadID())
}

func TestSendMessageNullThreadID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatReply{ThreadID: nil, Response: "rejected"})
	}))
	defer srv.Close()

	client, err := NewChatClient(srv.URL)
	require.NoError(t, err)

	rsp, err := client.SendMessage(context.Background(), "off topic")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rsp)
	assert.Empty(t, client.ThreadID())
}

func TestSendMessageServerErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "assistant run failed"}`))
	}))
	defer srv.Close()

	client, err := NewChatClient(srv.URL, WithRetryDelay(time.Millisecond))
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant run failed")
	assert.Equal(t, 1, calls, "application errors must not be retried")
}

func TestSendMessageTransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := NewChatClient(srv.URL, WithMaxRetries(2), WithRetryDelay(time.Millisecond))
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "hello")
	require.Error(t, err)
}

func TestNewChatClientRequiresBaseURL(t *testing.T) {
	_, err := NewChatClient("")
	require.Error(t, err)
}
