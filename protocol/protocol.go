// Package protocol defines the line-delimited JSON messages
// exchanged between the SideStacker server and its clients.
package protocol

import (
	"fmt"

	"github.com/sidestacker/sidestacker/game"
)

type Type string

const (
	// client -> server
	TypeJoin Type = "join"
	TypeTurn Type = "turn" // also server -> client, relaying the opponent's turn

	// server -> client
	TypeWelcome            Type = "welcome"
	TypeGameStart          Type = "game_start"
	TypeGameFull           Type = "game_full"
	TypeNotYourTurn        Type = "not_your_turn"
	TypeAcknowledged       Type = "acknowledged"
	TypePlayerDisconnected Type = "player_disconnected"
	TypeServerError        Type = "server_error"
)

// Turn is one player's move.
type Turn struct {
	Player game.Player `json:"player"`
	Move   game.Move   `json:"move"`
}

// Message is the envelope for every frame on the wire. Fields beyond
// Type are populated depending on the message type.
type Message struct {
	Type   Type        `json:"type"`
	Player game.Player `json:"player,omitempty"`
	Height int         `json:"height,omitempty"`
	Width  int         `json:"width,omitempty"`
	Turn   *Turn       `json:"turn,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func Join() Message {
	return Message{Type: TypeJoin}
}

// Welcome tells a connecting client which player it is and the board
// dimensions.
func Welcome(player game.Player, height, width int) Message {
	return Message{Type: TypeWelcome, Player: player, Height: height, Width: width}
}

func GameStart() Message {
	return Message{Type: TypeGameStart}
}

func GameFull() Message {
	return Message{Type: TypeGameFull}
}

func NotYourTurn() Message {
	return Message{Type: TypeNotYourTurn}
}

func Acknowledged() Message {
	return Message{Type: TypeAcknowledged}
}

func TurnMessage(t Turn) Message {
	return Message{Type: TypeTurn, Turn: &t}
}

func PlayerDisconnected(player game.Player) Message {
	return Message{Type: TypePlayerDisconnected, Player: player}
}

func ServerError(err error) Message {
	return Message{Type: TypeServerError, Error: err.Error()}
}

var validTypes = map[Type]bool{
	TypeJoin:               true,
	TypeTurn:               true,
	TypeWelcome:            true,
	TypeGameStart:          true,
	TypeGameFull:           true,
	TypeNotYourTurn:        true,
	TypeAcknowledged:       true,
	TypePlayerDisconnected: true,
	TypeServerError:        true,
}

func (m Message) validate() error {
	if !validTypes[m.Type] {
		return fmt.Errorf("unknown message type '%s'", m.Type)
	}
	if m.Type == TypeTurn && m.Turn == nil {
		return fmt.Errorf("turn message without a turn")
	}
	return nil
}
