// Package webhook is the HTTP transport of the gateway. It accepts the
// messaging platform's XML push envelopes, hands the text to the router and
// answers with a passive XML text reply.
package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/clock"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// noReply tells the platform that no message should be sent back.
const noReply = "success"

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	shutdownTimeout = 5 * time.Second
)

// MessageHandler produces the reply for one inbound message.
type MessageHandler interface {
	Handle(ctx context.Context, msg router.Message) string
}

// Server accepts platform webhook deliveries over HTTP.
//
// GET / answers the platform's URL verification handshake and POST / decodes
// a message envelope, hands it to the MessageHandler and writes the reply
// envelope back. A handler that has nothing to say produces the platform's
// "success" acknowledgement.
type Server struct {
	address string
	handler MessageHandler
	clock   clock.Clock
	logger  logging.Logger
	engine  *gin.Engine
}

// NewServer builds a Server listening on a. clk stamps reply envelopes.
func NewServer(a string, h MessageHandler, clk clock.Clock, l logging.Logger) *Server {
	s := &Server{
		address: a,
		handler: h,
		clock:   clk,
		logger:  l.With("module", "webhook"),
	}
	s.engine = s.routes()
	return s
}

// Engine returns the configured gin engine.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.GET("/", s.verify)
	r.POST("/", s.receive)
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping webhook server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "webhook shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting webhook server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// verify answers the platform's subscription handshake.
func (s *Server) verify(c *gin.Context) {
	c.String(http.StatusOK, c.Query("echostr"))
}

func (s *Server) receive(c *gin.Context) {
	ctx := c.Request.Context()
	log := s.logger.With(requestIDKey, c.GetString(requestIDKey))

	body, err := c.GetRawData()
	if err != nil {
		log.Warn(ctx, "read body failed", "error", err)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	in, err := parseEnvelope(body)
	if err != nil {
		log.Warn(ctx, "rejected envelope", "error", err)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	if in.MsgType != "" && in.MsgType != msgTypeText {
		log.Debug(ctx, "ignoring non-text message", "sender", in.FromUserName, "msg_type", in.MsgType)
		c.String(http.StatusOK, noReply)
		return
	}

	reply := s.handler.Handle(ctx, router.Message{
		SenderID:    in.FromUserName,
		RecipientID: in.ToUserName,
		Text:        in.Content,
	})
	if reply == "" {
		c.String(http.StatusOK, noReply)
		return
	}

	c.XML(http.StatusOK, textReply(in, reply, s.clock.Now().Unix()))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := s.clock.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			requestIDKey, id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", s.clock.Now().Sub(start).String(),
		)
	}
}
