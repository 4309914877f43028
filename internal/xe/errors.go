package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams    = orz.NewError(10400, "invalid parameters")
	ErrInvalidToken     = orz.NewError(10403, "invalid access token")
	ErrPermissionDenied = orz.NewError(10401, "you are not allowed to access this data")

	ErrInsufficientBalance = orz.NewError(20001, "insufficient balance")
	ErrDailyTradeLimit     = orz.NewError(20002, "daily trade limit reached")
	ErrPositionNotActive   = orz.NewError(20003, "position is not active")
	ErrPositionExists      = orz.NewError(20004, "an active position already exists for this symbol")
	ErrTradeNotActive      = orz.NewError(20005, "trade is not active")
	ErrBotDisabled         = orz.NewError(20006, "bot is disabled for this account")
	ErrConfidenceTooLow    = orz.NewError(20007, "signal confidence below configured minimum")
	ErrMaxPositionSize     = orz.NewError(20008, "order exceeds max position size")
	ErrBotAlreadyRunning   = orz.NewError(20009, "bot loop is already running")
	ErrBotNotRunning       = orz.NewError(20010, "bot loop is not running")
)
