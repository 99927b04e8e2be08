// Package account owns the ledger state: account records, the CPF index, and
// every balance mutation. All shared state lives behind the Store's mutation
// lock; callers never touch the underlying maps directly.
package account

import (
	"strings"

	"github.com/go-playground/validator"

	"github.com/ifbank/ifbank/pkg/money"
)

// FieldSeparator is the wire-protocol field separator. Holder names and
// passwords must not contain it.
const FieldSeparator = "|"

// Account is a single ledger account. Balance never goes negative after a
// committed operation.
type Account struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	CPF      string      `json:"cpf"`
	Password string      `json:"password"`
	Balance  money.Money `json:"balance"`
}

// Snapshot is the durable representation of the ledger handed to the
// persistence collaborator after every committed mutation.
type Snapshot struct {
	Accounts map[string]Account `json:"accounts"`
	CPFIndex map[string]string  `json:"cpf_index"`
}

// createInput carries the fields for account creation.
type createInput struct {
	Name     string `validate:"required"`
	CPF      string `validate:"required,numeric"`
	Password string `validate:"required"`
}

var validate = validator.New()

// validateCreate checks the account-creation fields. The CPF length is
// configured per store, so it is checked outside the struct tags. The field
// separator is rejected in free-text fields because it would corrupt the wire
// framing and the snapshot.
func validateCreate(in createInput, cpfLength int) error {
	if err := validate.Struct(in); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			switch fe.Field() {
			case "Name":
				return ErrInvalidName
			case "CPF":
				return ErrInvalidCPF
			case "Password":
				return ErrInvalidPassword
			}
		}
		return err
	}
	if strings.Contains(in.Name, FieldSeparator) {
		return ErrInvalidName
	}
	if strings.Contains(in.Password, FieldSeparator) {
		return ErrInvalidPassword
	}
	if len(in.CPF) != cpfLength {
		return ErrInvalidCPF
	}
	return nil
}

// MaskCPF censors the middle digits of a CPF for log output.
func MaskCPF(cpf string) string {
	if len(cpf) <= 4 {
		return "***"
	}
	return cpf[:2] + "*****" + cpf[len(cpf)-2:]
}
