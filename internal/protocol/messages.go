package protocol

import "structureforge/internal/gen/structures"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	ChunkSize float64 `json:"chunk_size"`
	Seed      int64   `json:"seed"`
}

// ENTER_CHUNK (client -> server): the streaming system is about to show a
// chunk; generate (or restore) its structures and return the records.
type EnterChunkMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CX              int    `json:"cx"`
	CZ              int    `json:"cz"`
	DataOnly        bool   `json:"data_only,omitempty"`
}

// CHUNK_STRUCTURES (server -> client)
type ChunkStructuresMsg struct {
	Type            string              `json:"type"`
	ProtocolVersion string              `json:"protocol_version"`
	ChunkKey        string              `json:"chunk_key"`
	Records         []structures.Record `json:"records"`
}

// LEAVE_CHUNK (client -> server): evict a chunk's structures.
type LeaveChunkMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ChunkKey        string `json:"chunk_key"`
	Dispose         bool   `json:"dispose,omitempty"`
}

// SAVE_STATE (client -> server): request the full persisted fragment.
type SaveStateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// WORLD_STATE (server -> client): the save-game fragment.
type WorldStateMsg struct {
	Type            string               `json:"type"`
	ProtocolVersion string               `json:"protocol_version"`
	State           structures.SaveState `json:"state"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
