package account

import "errors"

var (
	// ErrInvalidName is returned when the holder name is empty or contains the field separator.
	ErrInvalidName = errors.New("invalid name: must be non-empty and must not contain '|'")

	// ErrInvalidCPF is returned when the CPF is not an all-digit string of the configured length.
	ErrInvalidCPF = errors.New("invalid CPF: must be all digits of the configured length")

	// ErrInvalidPassword is returned when the password is empty or contains the field separator.
	ErrInvalidPassword = errors.New("invalid password: must be non-empty and must not contain '|'")

	// ErrCPFAlreadyRegistered is returned when an account already exists for the CPF.
	ErrCPFAlreadyRegistered = errors.New("CPF already registered")

	// ErrBadCredentials is returned on login failure. It deliberately does not
	// distinguish an unknown CPF from a wrong password.
	ErrBadCredentials = errors.New("incorrect CPF or password")

	// ErrAccountNotFound is returned when an account id has no record.
	ErrAccountNotFound = errors.New("account not found")

	// ErrWrongPassword is returned when a funds operation carries the wrong password.
	ErrWrongPassword = errors.New("incorrect password")

	// ErrNonPositiveAmount is returned when an operation amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when the balance cannot cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDestinationNotFound is returned when a transfer destination does not exist.
	ErrDestinationNotFound = errors.New("destination account not found")

	// ErrSelfTransfer is returned when a transfer targets the sender's own account.
	ErrSelfTransfer = errors.New("cannot transfer to your own account")
)
