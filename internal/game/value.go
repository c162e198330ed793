package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNonNumericValue is returned when arithmetic is attempted on a symbolic tile value
var ErrNonNumericValue = errors.New("non-numeric tile value")

// NonNumericError reports the symbolic value an arithmetic operation was attempted on
type NonNumericError struct {
	Value Value
	Op    string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("%s on symbolic tile %q: %v", e.Op, e.Value.token, ErrNonNumericValue)
}

// Unwrap lets errors.Is match ErrNonNumericValue
func (e *NonNumericError) Unwrap() error {
	return ErrNonNumericValue
}

// Value is a tile value: either an integer from the progression or a
// symbolic token. Values are comparable; two values are equal only when
// both kind and content match, so Num(0) != Token("0").
type Value struct {
	num   int
	token string
}

// Num returns a numeric tile value
func Num(n int) Value {
	return Value{num: n}
}

// Token returns a symbolic tile value
func Token(s string) Value {
	return Value{token: s}
}

// IsNumeric reports whether the value takes part in arithmetic
func (v Value) IsNumeric() bool {
	return v.token == ""
}

// Int returns the numeric value
func (v Value) Int() (int, error) {
	if !v.IsNumeric() {
		return 0, &NonNumericError{Value: v, Op: "read"}
	}
	return v.num, nil
}

// Triple returns the value produced by merging three tiles of this value
func (v Value) Triple() (Value, error) {
	if !v.IsNumeric() {
		return Value{}, &NonNumericError{Value: v, Op: "multiply"}
	}
	return Num(v.num * 3), nil
}

// String renders the value the way it is shown on a tile
func (v Value) String() string {
	if v.IsNumeric() {
		return strconv.Itoa(v.num)
	}
	return v.token
}

// MarshalJSON encodes numbers as JSON numbers and tokens as JSON strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNumeric() {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.token)
}

// UnmarshalJSON accepts either a JSON number or a JSON string
func (v *Value) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Num(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tile value must be a number or string: %w", err)
	}
	if s == "" {
		return fmt.Errorf("tile value token must not be empty")
	}
	*v = Token(s)
	return nil
}
