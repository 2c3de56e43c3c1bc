package webhook

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/clock"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	reply string
	got   []router.Message
}

func (f *fakeHandler) Handle(_ context.Context, msg router.Message) string {
	f.got = append(f.got, msg)
	return f.reply
}

var testNow = time.Unix(1709604000, 0)

func newTestServer(reply string) (*Server, *fakeHandler) {
	gin.SetMode(gin.TestMode)
	h := &fakeHandler{reply: reply}
	return NewServer(":0", h, clock.Fake(testNow), logging.NewNopLogger()), h
}

func post(s *Server, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/xml")
	s.Engine().ServeHTTP(w, req)
	return w
}

const textEnvelope = `<xml>
  <ToUserName><![CDATA[gh_account]]></ToUserName>
  <FromUserName><![CDATA[openid-1]]></FromUserName>
  <CreateTime>1709600000</CreateTime>
  <MsgType><![CDATA[text]]></MsgType>
  <Content><![CDATA[  query id  ]]></Content>
  <MsgId>1234567890</MsgId>
</xml>`

func TestVerifyEchoesChallenge(t *testing.T) {
	s, _ := newTestServer("")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?signature=x&echostr=abc123", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestReceive_RepliesWithXML(t *testing.T) {
	s, h := newTestServer("Your ID: openid-1")
	w := post(s, textEnvelope)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, h.got, 1)
	assert.Equal(t, router.Message{SenderID: "openid-1", RecipientID: "gh_account", Text: "  query id  "}, h.got[0])

	body := w.Body.String()
	assert.Contains(t, body, "<ToUserName><![CDATA[openid-1]]></ToUserName>")
	assert.Contains(t, body, "<FromUserName><![CDATA[gh_account]]></FromUserName>")
	assert.Contains(t, body, "<MsgType><![CDATA[text]]></MsgType>")
	assert.Contains(t, body, "<Content><![CDATA[Your ID: openid-1]]></Content>")

	var out struct {
		CreateTime int64  `xml:"CreateTime"`
		Content    string `xml:"Content"`
	}
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, testNow.Unix(), out.CreateTime)
	assert.Equal(t, "Your ID: openid-1", out.Content)
}

func TestReceive_EmptyReplyIsSuccess(t *testing.T) {
	s, h := newTestServer("")
	w := post(s, textEnvelope)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, noReply, w.Body.String())
	assert.Len(t, h.got, 1)
}

func TestReceive_NonTextIsIgnored(t *testing.T) {
	s, h := newTestServer("unused")
	w := post(s, `<xml><ToUserName>gh</ToUserName><FromUserName>u1</FromUserName><MsgType>event</MsgType><Event>subscribe</Event></xml>`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, noReply, w.Body.String())
	assert.Empty(t, h.got)
}

func TestReceive_RejectsBadEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", "hello"},
		{"missing sender", `<xml><ToUserName>gh</ToUserName><Content>hi</Content></xml>`},
		{"blank sender", `<xml><FromUserName>   </FromUserName><Content>hi</Content></xml>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, h := newTestServer("x")
			w := post(s, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, h.got)
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	s, _ := newTestServer("")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	s.Engine().ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer("127.0.0.1:0", &fakeHandler{}, clock.Real(), logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}
