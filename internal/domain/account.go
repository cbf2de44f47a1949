package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to provisioned accounts.
const (
	RoleStudent = "STUDENT"
	RoleTrainer = "TRAINER"
)

// Role returns the account role for a member kind.
func (k MemberKind) Role() string {
	if k == MemberKindTrainer {
		return RoleTrainer
	}
	return RoleStudent
}

// Account is the authentication identity created for a roster member. The
// email is the login identity, unique within a tenant. Accounts are created
// disabled and must change the temporary password on first use; the identity
// service flips Disabled off once the member completes first login.
type Account struct {
	ID                 uuid.UUID `json:"id"`
	TenantID           uuid.UUID `json:"tenant_id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	MustChangePassword bool      `json:"must_change_password"`
	Disabled           bool      `json:"disabled"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewAccount creates an account pending first login.
func NewAccount(tenantID uuid.UUID, email, passwordHash string) Account {
	return Account{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		Email:              email,
		PasswordHash:       passwordHash,
		MustChangePassword: true,
		Disabled:           true,
		CreatedAt:          time.Now(),
	}
}

// Student is the domain profile linked to a STUDENT account.
type Student struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	AccountID   uuid.UUID `json:"account_id"`
	FullName    string    `json:"full_name"`
	RollNumber  string    `json:"roll_number"`
	Department  string    `json:"department"`
	YearOfStudy int       `json:"year_of_study"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Trainer is the domain profile linked to a TRAINER account.
type Trainer struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	AccountID      uuid.UUID `json:"account_id"`
	FullName       string    `json:"full_name"`
	EmployeeID     string    `json:"employee_id"`
	Specialization string    `json:"specialization"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
