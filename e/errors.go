package e

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ExtendedError is our custom error
type ExtendedError struct {
	InnerError     error
	Message        string
	TruncateXLines int
	original       error
}

// Error returns the string of the inner error
func (e *ExtendedError) Error() string {
	s := fmt.Sprintf("%+v", e.InnerError)
	if e.TruncateXLines == 0 {
		return s
	}

	// Truncate the last x lines
	r := []rune(s)
	idx, numNewLines := 0, 0

	for i := len(s) - 1; i > 0 && numNewLines < e.TruncateXLines; i-- {
		if r[i] == '\n' {
			idx = i
			numNewLines++
		}
	}

	if numNewLines > 0 {
		r = r[0:idx]
	}

	return string(r)
}

// IsError checks if the originating error is the specified target
func (e *ExtendedError) IsError(tgt error) bool {
	return errors.Is(e.original, tgt)
}

// AsError calls errors.As on the original error with the specified target error.
// If it is the target error, it will set the target as the original error value
// and return true, otherwise it returns false
func (e *ExtendedError) AsError(tgt interface{}) bool {
	return errors.As(e.original, tgt)
}

// N creates a new error based on the code and messages, it also sets the
// Message property of the extended error
func N(code string, msgList ...string) (err error) {
	return W(nil, code, msgList...)
}

// NewStr creates a new error string based on the code and messages
func NewStr(code string, msgList ...string) (s string) {
	if len(msgList) == 0 {
		return code
	}
	return fmt.Sprintf("%s: %s", code, strings.Join(msgList, "|"))
}

// AsExtendedError helper function that returns the error as an ExtendedError
// if it is one. Otherwise it returns nil
func AsExtendedError(err error) (ee *ExtendedError) {
	if errors.As(err, &ee) {
		return ee
	}
	return nil
}

// editErrorMessageForPQIOError returns an edited message for the error if it is a pg io error
// this is so the logs do not consider it like a new error if it is triggered within a short period of time
func editErrorMessageForPQIOError(errorMsg string) string {
	re := regexp.MustCompile(`block [\d]+`)

	return re.ReplaceAllString(errorMsg, "block X")
}

// ContainsError checks if the error contains the specified error message
func ContainsError(err error, msg string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), msg)
}

// Contains checks if the error contains the code
func Contains(err error, code string) bool {
	return ContainsError(err, code)
}

// W checks if the passed error has been wrapped before by this func
// and either wraps the original error as an ExtendedError or adds the
// coded message to the already existing ExtendedError's InnerError.
// This function always returns an extended error, but the signature is
// error
func W(err error, code string, msgList ...string) error {
	msg := NewStr(code, msgList...)

	// If the error is already an extended error, then just update the
	// inner error
	if ee := AsExtendedError(err); ee != nil {
		ee.InnerError = fmt.Errorf("[%s]%+v", msg, ee)
		return ee
	}

	ee := &ExtendedError{
		original: err,
	}

	if err == nil {
		ee.InnerError = pkgerrors.New(msg)
		ee.Message = msg
	} else {
		var pkgerr error
		if IsPQError(err, PQErr58030IOError) {
			pkgerr = pkgerrors.Wrap(err, editErrorMessageForPQIOError(err.Error()))
		} else {
			pkgerr = pkgerrors.Wrap(err, "")
		}

		ee.InnerError = fmt.Errorf("[%s]%+v", msg, pkgerr)
		ee.Message = NewStr(code, MsgUnknownInternalServerError)
	}

	return ee
}
