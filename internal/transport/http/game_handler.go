package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"chessrules/internal/core"
)

// gameID returns the path game id and whether it is a well-formed UUID.
func gameID(c *fiber.Ctx) (string, bool) {
	id := c.Params("gameId")
	if !isValidUUID(id) {
		return "", false
	}
	return id, true
}

func badGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrCodeInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

// CreateGame creates a new game with specified player types
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return err
	}
	resp, err := h.svc.CreateGame(c.Context(), *req)
	if err != nil {
		return sendError(c, "failed to create game", err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetGame returns the game state. With ?wait=true&moveCount=N it long-polls
// until the move count differs from N or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}

	if c.Query("wait") == "true" {
		moveCount, err := strconv.Atoi(c.Query("moveCount", "-1"))
		if err != nil {
			moveCount = -1
		}
		if err := h.svc.WaitForUpdate(c.Context(), id, moveCount); err != nil {
			return sendError(c, "game not found", err)
		}
	}

	resp, err := h.svc.GetGame(c.Context(), id)
	if err != nil {
		return sendError(c, "game not found", err)
	}
	return c.JSON(resp)
}

// MakeMove plays a move; the "cccc" sentinel asks the engine to move.
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return err
	}

	var resp *core.GameResponse
	if req.Move == core.ComputerMove {
		resp, err = h.svc.MakeComputerMove(c.Context(), id)
	} else {
		resp, err = h.svc.MakeMove(c.Context(), id, req.Move)
	}
	if err != nil {
		return sendError(c, "move rejected", err)
	}
	return c.JSON(resp)
}

// LegalMoves lists legal moves, optionally only from ?from=<square>.
func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	resp, err := h.svc.LegalMoves(c.Context(), id, c.Query("from"))
	if err != nil {
		return sendError(c, "cannot list moves", err)
	}
	return c.JSON(resp)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	req, err := validatedBody[core.UndoRequest](c)
	if err != nil {
		return err
	}
	resp, err := h.svc.Undo(c.Context(), id, req.Count)
	if err != nil {
		return sendError(c, "cannot undo moves", err)
	}
	return c.JSON(resp)
}

// RedoMove replays the most recently undone move
func (h *HTTPHandler) RedoMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	resp, err := h.svc.Redo(c.Context(), id)
	if err != nil {
		return sendError(c, "cannot redo move", err)
	}
	return c.JSON(resp)
}

// DeleteGame ends and cleans up a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	if err := h.svc.DeleteGame(c.Context(), id); err != nil {
		return sendError(c, "game not found", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	resp, err := h.svc.Board(c.Context(), id)
	if err != nil {
		return sendError(c, "game not found", err)
	}
	return c.JSON(resp)
}

// Hint returns the engine's suggestion without playing it
func (h *HTTPHandler) Hint(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	resp, err := h.svc.Hint(c.Context(), id)
	if err != nil {
		return sendError(c, "no hint available", err)
	}
	return c.JSON(resp)
}

// SelectPiece picks up a piece and returns the squares it can reach
func (h *HTTPHandler) SelectPiece(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	req, err := validatedBody[core.SelectRequest](c)
	if err != nil {
		return err
	}
	resp, err := h.svc.Select(c.Context(), id, req.Square)
	if err != nil {
		return sendError(c, "cannot select square", err)
	}
	return c.JSON(resp)
}

func (h *HTTPHandler) ClearSelection(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	if err := h.svc.ClearSelection(c.Context(), id); err != nil {
		return sendError(c, "game not found", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MoveSelected moves the selected piece
func (h *HTTPHandler) MoveSelected(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	req, err := validatedBody[core.SelectedMoveRequest](c)
	if err != nil {
		return err
	}
	resp, err := h.svc.MoveSelected(c.Context(), id, req.To, req.Promotion)
	if err != nil {
		return sendError(c, "move rejected", err)
	}
	return c.JSON(resp)
}

// ResetGame sets a new position on an existing game, keeping its players
func (h *HTTPHandler) ResetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return badGameID(c)
	}
	req, err := validatedBody[core.ResetRequest](c)
	if err != nil {
		return err
	}
	resp, err := h.svc.ResetGame(c.Context(), id, req.FEN)
	if err != nil {
		return sendError(c, "cannot reset game", err)
	}
	return c.JSON(resp)
}
