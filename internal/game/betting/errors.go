package betting

import "errors"

// ValidationError é um erro de entrada do jogador: recuperável, exibido na tela de aposta
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrNoOption            = &ValidationError{Msg: "Please select an option."}
	ErrInvalidAmount       = &ValidationError{Msg: "Please enter a valid bet amount."}
	ErrInsufficientBalance = &ValidationError{Msg: "You don't have enough coins."}
)

// ErrInvalidState indica uma ação que não vale no estado atual do coletor
var ErrInvalidState = errors.New("action not allowed in current collector state")

// IsValidation informa se err é um erro de validação de entrada
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
