package game

import "errors"

// Domain errors surfaced to clients as {ok:false, error}. The strings are
// part of the wire contract, so they read like messages, not identifiers.
var (
	ErrNotAuthorized = errors.New("Not authorized")
	ErrRoomNotFound  = errors.New("Room not found")
	ErrRoomFull      = errors.New("Room is full")
	ErrRoomEnded     = errors.New("Game is over")
	ErrNoRoomCode    = errors.New("Could not allocate room code")

	ErrGameInProgress = errors.New("Game already in progress")
	ErrNameLength     = errors.New("Name must be 2-18 characters")
	ErrNameTaken      = errors.New("Name already taken")
	ErrPlayerNotFound = errors.New("Player not found")

	ErrWrongPhase      = errors.New("Not allowed in this phase")
	ErrNoActiveAct     = errors.New("No act in progress")
	ErrActOrder        = errors.New("Acts can only move forward")
	ErrNoQuestions     = errors.New("No questions for act")
	ErrNoPacks         = errors.New("No packs loaded")
	ErrNoQuestion      = errors.New("No question in progress")
	ErrQuestionLocked  = errors.New("Question already revealed")
	ErrRevealTooEarly  = errors.New("Players are still answering")
	ErrTimeUp          = errors.New("Time is up")
	ErrAnswerLocked    = errors.New("Answer locked in")
	ErrNoAnswer        = errors.New("No answer submitted")
	ErrInvalidAnswer   = errors.New("Invalid answer index")
	ErrEliminated      = errors.New("You are eliminated")
	ErrNotEliminated   = errors.New("You are not eliminated")

	ErrNotInWagerPhase = errors.New("Not in wager phase")
	ErrWagersClosed    = errors.New("Wagers are closed")
	ErrWagersNotLocked = errors.New("Wagers are not locked yet")

	ErrShopClosed     = errors.New("Shop is closed")
	ErrUnknownItem    = errors.New("Unknown item")
	ErrItemNotAllowed = errors.New("Item not available in this act")
	ErrNotEnoughCoins = errors.New("Not enough coins")
	ErrItemNotOwned   = errors.New("You do not own that item")
	ErrItemNotActive  = errors.New("Item cannot be used directly")

	ErrRevivePending = errors.New("A revive is already pending")
	ErrNoRevive      = errors.New("No revive pending")
)
