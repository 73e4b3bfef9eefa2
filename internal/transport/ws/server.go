// Package ws hosts the structure service for the world-streaming client:
// one websocket per client, ENTER_CHUNK/LEAVE_CHUNK requests against the
// manager, CHUNK_STRUCTURES responses carrying the committed records.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"structureforge/internal/gen/structures"
	"structureforge/internal/protocol"
)

type Server struct {
	mgr *structures.Manager
	cfg structures.Config
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(mgr *structures.Manager, cfg structures.Config, logger *log.Logger) *Server {
	return &Server{
		mgr: mgr,
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out, ok := s.handshake(conn)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, open := <-out:
					if !open {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			s.dispatch(msg, out)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (chan []byte, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != protocol.TypeHello {
		return nil, false
	}
	if hello.ProtocolVersion != protocol.Version {
		b, _ := json.Marshal(protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrProtoVersion,
		})
		_ = conn.WriteMessage(websocket.TextMessage, b)
		return nil, false
	}

	out := make(chan []byte, 64)
	welcome, _ := json.Marshal(protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		WorldParams: protocol.WorldParams{
			ChunkSize: s.cfg.ChunkSize,
			Seed:      s.cfg.Seed,
		},
	})
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		return nil, false
	}
	if s.log != nil {
		s.log.Printf("client %q connected", hello.ClientName)
	}
	return out, true
}

func (s *Server) dispatch(msg []byte, out chan []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		s.sendError(out, protocol.ErrProtoBadRequest, "not a protocol message")
		return
	}

	switch base.Type {
	case protocol.TypeEnterChunk:
		var req protocol.EnterChunkMsg
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(out, protocol.ErrBadRequest, "malformed ENTER_CHUNK")
			return
		}
		s.mgr.GenerateStructuresForChunk(req.CX, req.CZ, req.DataOnly)
		key := structures.Key(req.CX, req.CZ)
		recs := s.mgr.RecordsInChunk(key)
		if recs == nil {
			recs = []structures.Record{}
		}
		s.send(out, protocol.ChunkStructuresMsg{
			Type:            protocol.TypeChunkStructures,
			ProtocolVersion: protocol.Version,
			ChunkKey:        key,
			Records:         recs,
		})

	case protocol.TypeLeaveChunk:
		var req protocol.LeaveChunkMsg
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError(out, protocol.ErrBadRequest, "malformed LEAVE_CHUNK")
			return
		}
		if _, _, err := structures.ParseKey(req.ChunkKey); err != nil {
			s.sendError(out, protocol.ErrBadChunk, err.Error())
			return
		}
		s.mgr.RemoveStructuresInChunk(req.ChunkKey, req.Dispose)

	case protocol.TypeSaveState:
		s.send(out, protocol.WorldStateMsg{
			Type:            protocol.TypeWorldState,
			ProtocolVersion: protocol.Version,
			State:           s.mgr.Save(),
		})

	default:
		s.sendError(out, protocol.ErrProtoBadRequest, "unknown type "+base.Type)
	}
}

func (s *Server) send(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
		// Slow client: drop rather than block the reader.
		if s.log != nil {
			s.log.Printf("outbound queue full, dropping message")
		}
	}
}

func (s *Server) sendError(out chan []byte, code, message string) {
	s.send(out, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
}
