package nutrition

import (
	"errors"
	"fmt"
)

// ErrMissingField matches any ValidationError caused by an empty required field.
var ErrMissingField = errors.New("required field missing")

// ErrInvalidField matches any other ValidationError.
var ErrInvalidField = errors.New("invalid field")

const (
	reasonMissing     = "missing"
	reasonNotNumber   = "not a number"
	reasonOutOfRange  = "out of range"
	reasonUnknown     = "unknown value"
	reasonImplausible = "implausible result"
)

// MissingFieldsNotice is shown to the user when age, height or weight is empty.
const MissingFieldsNotice = "나이, 키, 체중을 모두 입력해주세요."

// ValidationError is the one error class the calculator produces. Field may
// name several comma-separated fields when more than one is missing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets callers use errors.Is(err, ErrMissingField).
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrMissingField:
		return e.Reason == reasonMissing
	case ErrInvalidField:
		return e.Reason != reasonMissing
	}
	return false
}

// Notice renders the error as a user-facing message.
func (e *ValidationError) Notice() string {
	if e.Reason == reasonMissing {
		return MissingFieldsNotice
	}
	switch e.Field {
	case "age":
		return "나이를 올바르게 입력해주세요. (1~120세, 정수)"
	case "height":
		return "키를 올바르게 입력해주세요. (50~250cm)"
	case "weight":
		return "체중을 올바르게 입력해주세요. (10~400kg)"
	case "sex":
		return "성별을 선택해주세요."
	case "activity":
		return "활동량을 선택해주세요."
	}
	return "입력값으로 칼로리를 계산할 수 없습니다. 값을 확인해주세요."
}

// NoticeFor returns the user-facing message for any error from this package.
func NoticeFor(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Notice()
	}
	return "칼로리를 계산할 수 없습니다."
}
