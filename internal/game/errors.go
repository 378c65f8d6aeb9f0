package game

import "errors"

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrNoRoom      = errors.New("player is not in a room")
	ErrShutdown    = errors.New("world is shutting down")
	ErrUnknownDB   = errors.New("unknown database")
)

// UserError is a rejected action. Message is markup shown to the player who
// attempted it; nothing in the world was changed.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// UserMessage returns the markup of a UserError anywhere in err's chain.
func UserMessage(err error) (string, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message, true
	}
	return "", false
}

// rejection wraps msg in the standard red and bold failure style.
func rejection(msg string) *UserError {
	return NewUserError("<red><bold>" + msg + "</bold></red>")
}
