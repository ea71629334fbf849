// Package dispatch implements the per-request packet dispatcher (spec
// §4.5, §4.6): resolve the caller's session, decode the incoming frame
// stream, apply per-id actions against a private response buffer, then
// flush using the front-trim protocol that tolerates concurrent peer
// appends without losing or duplicating bytes.
package dispatch

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"bancho/server/internal/banchoerr"
	"bancho/server/internal/codec"
	"bancho/server/internal/presence"
	"bancho/server/internal/protocol"
	"bancho/server/internal/session"
)

// BotName is the username that routes private messages to the command
// stub instead of another player's buffer.
const BotName = "Aegis"

// CommandHandler replies to a bot-directed private message. It returns the
// text to announce back to the caller, or "" to say nothing.
type CommandHandler func(ctx context.Context, from string, message string) string

// Dispatcher owns the session store and presence engine needed to resolve
// tokens, mutate session state, and fan out broadcasts.
type Dispatcher struct {
	store      session.Store
	presence   *presence.Engine
	log        *slog.Logger
	onBot      CommandHandler
	dispatched *prometheus.CounterVec
}

// New returns a Dispatcher. onBot may be nil, in which case bot-directed
// private messages are silently dropped. dispatched may be nil to skip
// per-packet-id metrics.
func New(store session.Store, presence *presence.Engine, log *slog.Logger, onBot CommandHandler, dispatched ...*prometheus.CounterVec) *Dispatcher {
	d := &Dispatcher{store: store, presence: presence, log: log, onBot: onBot}
	if len(dispatched) > 0 {
		d.dispatched = dispatched[0]
	}
	return d
}

// Handle resolves token, applies every frame in body, and returns the
// flushed response bytes per the front-trim protocol (spec §4.5).
func (d *Dispatcher) Handle(ctx context.Context, token string, body []byte) ([]byte, error) {
	sess, err := d.store.GetSession(ctx, token)
	if err != nil {
		if err == session.ErrNotFound {
			return nil, banchoerr.InvalidToken()
		}
		return nil, banchoerr.Internal("get session", err)
	}
	originalBuf, err := d.store.GetBuffer(ctx, token)
	if err != nil {
		return nil, banchoerr.Internal("get buffer", err)
	}

	frames, err := codec.ReadFrames(body)
	if err != nil {
		return nil, banchoerr.MalformedPacket(err.Error())
	}

	priv := codec.NewWriter()
	for _, frame := range frames {
		d.apply(ctx, token, &sess, priv, frame)
	}

	if err := d.store.PutSession(ctx, token, sess); err != nil {
		return nil, banchoerr.Internal("put session", err)
	}

	return d.flush(ctx, token, originalBuf, priv.Bytes())
}

// flush implements the front-trim protocol: read the buffer as it stands
// right now, drop the prefix that was already there when we started (it
// has been delivered), append our private output, persist, and return the
// concatenation of whatever concurrent appends survived plus our own
// bytes.
func (d *Dispatcher) flush(ctx context.Context, token string, originalBuf, priv []byte) ([]byte, error) {
	current, err := d.store.GetBuffer(ctx, token)
	if err != nil {
		return nil, banchoerr.Internal("get buffer for flush", err)
	}

	trimmed := current
	if len(originalBuf) <= len(current) {
		trimmed = current[len(originalBuf):]
	}

	out := make([]byte, 0, len(trimmed)+len(priv))
	out = append(out, trimmed...)
	out = append(out, priv...)

	if err := d.store.PutBuffer(ctx, token, out); err != nil {
		return nil, banchoerr.Internal("put buffer for flush", err)
	}
	return out, nil
}

// apply takes the per-id action for one decoded frame, per spec §4.6.
func (d *Dispatcher) apply(ctx context.Context, token string, sess *session.Session, priv *codec.Writer, frame codec.Frame) {
	if d.dispatched != nil {
		d.dispatched.WithLabelValues(strconv.Itoa(int(frame.ID))).Inc()
	}
	r := codec.NewReader(frame.Payload)
	switch frame.ID {
	case protocol.CTOS_Ping:
		// last-pinged tracking is out of scope for the core; no-op.

	case protocol.CTOS_SendPublicMessage:
		msg, err := protocol.ReadChatMessage(r)
		if err != nil {
			d.log.Warn("dispatch: malformed public message", "error", err)
			return
		}
		d.log.Info("public message received", "target", msg.Target, "from", sess.Presence.Username)

	case protocol.CTOS_SendPrivateMessage:
		d.handlePrivateMessage(ctx, sess, priv, r)

	case protocol.CTOS_ChannelJoin:
		name, err := protocol.ReadChannelJoin(r)
		if err != nil {
			d.log.Warn("dispatch: malformed channel join", "error", err)
			return
		}
		protocol.WriteChannelJoinSuccess(priv, name)

	case protocol.CTOS_ChangeStatus:
		d.handleChangeStatus(ctx, token, sess, priv, r)

	default:
		d.log.Warn("dispatch: unknown packet id", "id", frame.ID, "payload_len", len(frame.Payload))
	}
}

func (d *Dispatcher) handlePrivateMessage(ctx context.Context, sess *session.Session, priv *codec.Writer, r *codec.Reader) {
	msg, err := protocol.ReadChatMessage(r)
	if err != nil {
		d.log.Warn("dispatch: malformed private message", "error", err)
		return
	}

	if msg.Target == BotName {
		var reply string
		if d.onBot != nil {
			reply = d.onBot(ctx, sess.Presence.Username, msg.Message)
		}
		if reply != "" {
			protocol.WriteAnnounce(priv, reply)
		}
		return
	}

	tokens, err := d.store.ListTokens(ctx)
	if err != nil {
		d.log.Error("dispatch: list tokens for private message", "error", err)
		return
	}
	for _, peerToken := range tokens {
		peer, err := d.store.GetSession(ctx, peerToken)
		if err != nil {
			continue
		}
		if peer.Presence.Username != msg.Target {
			continue
		}
		w := codec.NewWriter()
		protocol.WriteSendMessage(w, protocol.BanchoMessage{
			SendingClient: sess.Presence.Username,
			Message:       msg.Message,
			Target:        msg.Target,
			SenderID:      sess.ID,
		})
		d.presence.SendTo(ctx, peerToken, w.Bytes())
		return
	}
}

func (d *Dispatcher) handleChangeStatus(ctx context.Context, token string, sess *session.Session, priv *codec.Writer, r *codec.Reader) {
	status, err := protocol.ReadChangeStatus(r)
	if err != nil {
		d.log.Warn("dispatch: malformed change status", "error", err)
		return
	}
	sess.Stats.Status = status
	protocol.WriteHandleOsuUpdate(priv, sess.Stats)

	relaxSet := status.CurrentMods&protocol.ModRelax != 0
	if relaxSet && !sess.Relax {
		sess.Relax = true
		protocol.WriteAnnounce(priv, "Relax leaderboards have now been enabled, "+sess.Presence.Username)
	} else if !relaxSet && sess.Relax {
		sess.Relax = false
		protocol.WriteAnnounce(priv, "Relax leaderboards have now been disabled, "+sess.Presence.Username)
	}

	autopilotSet := status.CurrentMods&protocol.ModAutopilot != 0
	if autopilotSet && !sess.Autopilot {
		sess.Autopilot = true
		protocol.WriteAnnounce(priv, "Autopilot leaderboards have now been enabled, "+sess.Presence.Username)
	} else if !autopilotSet && sess.Autopilot {
		sess.Autopilot = false
		protocol.WriteAnnounce(priv, "Autopilot leaderboards have now been disabled, "+sess.Presence.Username)
	}

	peerUpdate := codec.NewWriter()
	protocol.WriteHandleOsuUpdate(peerUpdate, sess.Stats)
	d.presence.Broadcast(ctx, token, peerUpdate.Bytes())
}
