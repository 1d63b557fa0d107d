package errorlog

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/MGTheTrain/admin-console/internal/pkg/validators"
)

// Levels
const (
	LevelError    = "error"
	LevelCritical = "critical"
	LevelWarning  = "warning"
)

// ErrorLog entity
type ErrorLog struct {
	ID        string `validate:"required,uuid4"`
	Reference string `validate:"required,len=12"`
	Level     string `validate:"required,oneof=error critical warning"`
	Kind      string `validate:"required"`
	Message   string `validate:"required"`
	ErrorType string
	Stack     string
	URL       string
	Method    string
	IP        string
	UserID    *string `validate:"omitempty,uuid4"`
	Context   map[string]interface{}
	// ResolvedAt marks the error as handled
	ResolvedAt *time.Time
	ResolvedBy *string
	CreatedAt  time.Time
}

// Validate for validating ErrorLog struct
func (e *ErrorLog) Validate() error {
	return validators.ValidateStruct(e)
}

// IsResolved reports whether the error was resolved
func (e *ErrorLog) IsResolved() bool {
	return e.ResolvedAt != nil
}

// NewReference returns a short upper-case reference shown to users and support
func NewReference() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", 12)
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

// Report is an error together with the request it happened in
type Report struct {
	Err       error
	Message   string
	Stack     string
	URL       string
	Method    string
	IP        string
	UserID    string
	SessionID string
	// Panic marks errors recovered from a panic; they are logged as critical
	Panic   bool
	Context map[string]interface{}
}
