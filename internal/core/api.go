package core

// Request types

type CreateGameRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
	FEN   string       `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // "cccc" for computer move, 4-5 chars for UCI moves
}

type UndoRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=300"`
}

type SelectRequest struct {
	Square string `json:"square" validate:"required,len=2"`
}

type SelectedMoveRequest struct {
	To        string `json:"to" validate:"required,len=2"`
	Promotion string `json:"promotion,omitempty" validate:"omitempty,oneof=q r b n Q R B N"`
}

type ResetRequest struct {
	FEN string `json:"fen,omitempty" validate:"omitempty,max=100"` // empty resets to the standard position
}

// ComputerMove is the MoveRequest sentinel asking the engine to move.
const ComputerMove = "cccc"

// Response types

type GameResponse struct {
	GameID     string          `json:"gameId"`
	FEN        string          `json:"fen"`
	InitialFEN string          `json:"initialFen"`
	Turn       string          `json:"turn"`   // "w" or "b"
	Status     string          `json:"status"` // "playing", "check", "checkmate", "stalemate"
	Moves      []string        `json:"moves"`
	CanUndo    bool            `json:"canUndo"`
	CanRedo    bool            `json:"canRedo"`
	Players    PlayersResponse `json:"players"`
	LastMove   *MoveInfo       `json:"lastMove,omitempty"`
	MoveCount  int             `json:"moveCount"`
	Selected   string          `json:"selected,omitempty"` // square picked up by Select
}

type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Kind        string `json:"kind"`
}

type LegalMovesResponse struct {
	FEN   string   `json:"fen"`
	From  string   `json:"from,omitempty"`
	Moves []string `json:"moves"`
}

type SelectionResponse struct {
	FEN     string   `json:"fen"`
	Square  string   `json:"square"`
	Targets []string `json:"targets"` // destination squares, sorted
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type HintResponse struct {
	FEN  string `json:"fen"`
	Move string `json:"move"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
