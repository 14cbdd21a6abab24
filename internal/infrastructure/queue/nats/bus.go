package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/infrastructure/resilience"
)

// RouteHandler answers one routing request received from the bus.
type RouteHandler func(ctx context.Context, req domain.RouteRequest) (*domain.RouteDecision, error)

type Bus struct {
	conn            *nats.Conn
	decisionSubject string
	executor        *resilience.Executor
}

type Options struct {
	DecisionSubject      string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url string, options Options) (*Bus, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("query-router"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Bus{
		conn:            conn,
		decisionSubject: options.DecisionSubject,
		executor:        options.ResilienceExecutor,
	}, nil
}

func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// PublishRouteDecision announces a decision. It is a no-op when no decision
// subject is configured.
func (b *Bus) PublishRouteDecision(ctx context.Context, decision domain.RouteDecision) error {
	if b.decisionSubject == "" {
		return nil
	}
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal route decision: %w", err)
	}

	call := func(_ context.Context) error {
		msg := nats.NewMsg(b.decisionSubject)
		msg.Header.Set(nats.MsgIdHdr, decision.ID)
		msg.Data = payload
		if err := b.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if b.executor != nil {
		err = b.executor.Execute(ctx, "nats.publish_decision", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// ServeRouteRequests answers request/reply routing calls on subject until ctx
// is cancelled. Members of the same queue group share the load.
func (b *Bus) ServeRouteRequests(ctx context.Context, subject, queueGroup string, handler RouteHandler) error {
	sub, err := b.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		reply := handleRouteMessage(handlerCtx, msg.Data, handler)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			slog.Error("nats_respond_failed", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

type errorReply struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func handleRouteMessage(ctx context.Context, data []byte, handler RouteHandler) []byte {
	var req domain.RouteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalErrorReply(domain.WrapError(domain.ErrInvalidInput, "decode route request", err))
	}
	decision, err := handler(ctx, req)
	if err != nil {
		slog.Warn("route_request_failed", "user_id", req.UserID, "kind", domain.KindLabel(err), "error", err)
		return marshalErrorReply(err)
	}
	payload, err := json.Marshal(decision)
	if err != nil {
		return marshalErrorReply(fmt.Errorf("marshal route decision: %w", err))
	}
	return payload
}

func marshalErrorReply(err error) []byte {
	payload, _ := json.Marshal(errorReply{Error: err.Error(), Kind: domain.KindLabel(err)})
	return payload
}
