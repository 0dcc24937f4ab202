package ws

import "encoding/json"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: ping (o jogo em si é comandado pela API REST)
type ClientMsg struct {
	Type string `json:"type"`
}

// ServerMsg é o envelope enviado aos clientes
// Type: snapshot | pong
type ServerMsg struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
