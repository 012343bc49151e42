package market

import "errors"

var (
	ErrUnauthorized           = errors.New("market: unauthorized")
	ErrNotRegistered          = errors.New("market: participant not registered")
	ErrInvalidArgument        = errors.New("market: invalid argument")
	ErrQuotaExceeded          = errors.New("market: quota exceeded")
	ErrUserDailyLimitExceeded = errors.New("market: user daily limit exceeded")
	ErrWindowLimitExceeded    = errors.New("market: window limit exceeded")
	ErrSupplyExceeded         = errors.New("market: supply exceeded")
	ErrInsufficientFunds      = errors.New("market: insufficient funds")
	ErrOutOfSeasonWindow      = errors.New("market: outside season window")
	ErrNotOwner               = errors.New("market: caller does not own record")
	ErrAlreadyOpened          = errors.New("market: crate already opened")
	ErrAlreadyRequested       = errors.New("market: crate randomness already requested")
	ErrNotYetOpened           = errors.New("market: crate not yet opened")
	ErrAlreadyClaimed         = errors.New("market: prize already claimed")
	ErrNotYetUnlocked         = errors.New("market: crate slot not yet unlocked")
	ErrAlreadyInitialized     = errors.New("market: season already initialized")
	ErrAlreadyPurchased       = errors.New("market: merch type already purchased this season")
	ErrSequenceExhausted      = errors.New("market: id sequence exhausted")
)
