package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"nhooyr.io/websocket"

	"github.com/aristath/phasespace/internal/modules/compute"
	"github.com/aristath/phasespace/internal/modules/distribution"
	"github.com/aristath/phasespace/internal/modules/states"
)

const (
	liveWriteWait = 10 * time.Second
	// maxMessageBytes caps a request body and a single live message.
	maxMessageBytes = 1 << 20
)

// LiveReply is sent for every state received on a live connection.
type LiveReply struct {
	Seq   int           `json:"seq"`
	Data  *GridResponse `json:"data,omitempty"`
	Error string        `json:"error,omitempty"`
}

func liveParams(r *http.Request) (compute.Params, error) {
	var p compute.Params
	q := r.URL.Query()
	if v := q.Get("steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, err
		}
		p.Steps = n
	}
	for key, dst := range map[string]*float64{"theta1": &p.Theta1, "theta2": &p.Theta2} {
		if v := q.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return p, err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return p, fmt.Errorf("%s must be finite, got %s", key, v)
			}
			*dst = f
		}
	}
	return p, nil
}

// HandleLive handles GET /api/distributions/live?kind=wigner|qfunc|quadrature
//
// The connection owns one builder. Each text message is a state spec and is
// answered with the updated grid, or with an error that leaves the previous
// grid in place.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = compute.KindWigner
	}
	params, err := liveParams(r)
	if err != nil {
		http.Error(w, "Invalid grid parameters", http.StatusBadRequest)
		return
	}
	sess, err := h.service.NewSession(kind, params)
	if err != nil {
		h.writeError(w, err, "Failed to start live session")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")
	conn.SetReadLimit(maxMessageBytes)

	log := h.log.With().Str("kind", kind).Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("Live session started")

	ctx := r.Context()
	for seq := 1; ; seq++ {
		msgType, message, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				log.Debug().Msg("Live session closed")
				conn.Close(websocket.StatusNormalClosure, "")
			} else if ctx.Err() == nil {
				log.Warn().Err(err).Msg("Live session read failed")
			}
			return
		}

		reply := LiveReply{Seq: seq}
		if msgType != websocket.MessageText {
			reply.Error = "expected a JSON text message"
		} else if g, err := h.liveUpdate(sess, message); err != nil {
			reply.Error = err.Error()
		} else {
			resp := gridResponse(g)
			reply.Data = &resp
		}

		if err := writeLive(ctx, conn, reply); err != nil {
			log.Warn().Err(err).Msg("Live session write failed")
			return
		}
	}
}

func (h *Handler) liveUpdate(sess *compute.Session, message []byte) (*distribution.Grid, error) {
	var spec states.Spec
	if err := json.Unmarshal(message, &spec); err != nil {
		return nil, err
	}
	if err := h.validate.Struct(spec); err != nil {
		return nil, err
	}
	return sess.Update(spec)
}

func writeLive(ctx context.Context, conn *websocket.Conn, reply LiveReply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		// Non-finite samples cannot be encoded; report that instead of the grid.
		data, err = json.Marshal(LiveReply{Seq: reply.Seq, Error: "failed to encode distribution: " + err.Error()})
		if err != nil {
			return err
		}
	}
	writeCtx, cancel := context.WithTimeout(ctx, liveWriteWait)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
