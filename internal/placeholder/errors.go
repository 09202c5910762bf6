package placeholder

import (
	"github.com/jmgilman/go/errors"
)

// Request fields named in validation errors.
const (
	FieldDimensions = "dimensions"
	FieldBackground = "bgColor"
	FieldForeground = "fgColor"
	FieldFontSize   = "fontSize"
	FieldWrapWidth  = "textWrapWidth"
)

const renderFailedMessage = "Error generating image"

func newValidationError(field, message string) error {
	return errors.WithContext(errors.New(errors.CodeInvalidInput, message), "field", field)
}

func newRenderError(stage string, cause error) error {
	return errors.WithContext(errors.Wrap(cause, errors.CodeInternal, renderFailedMessage), "stage", stage)
}

// IsValidationError reports whether err rejects the request input.
func IsValidationError(err error) bool {
	return errors.GetCode(err) == errors.CodeInvalidInput
}

// IsRenderError reports whether err is a server-side rendering failure.
func IsRenderError(err error) bool {
	return errors.GetCode(err) == errors.CodeInternal
}

// PublicMessage is the text shown to clients for err. Render failures only
// expose their cause when verbose is set.
func PublicMessage(err error, verbose bool) string {
	var perr errors.PlatformError
	if !errors.As(err, &perr) {
		if verbose {
			return renderFailedMessage + ": " + err.Error()
		}
		return renderFailedMessage
	}
	if perr.Code() != errors.CodeInternal {
		return perr.Message()
	}
	if verbose {
		if cause := perr.Unwrap(); cause != nil {
			return renderFailedMessage + ": " + cause.Error()
		}
	}
	return renderFailedMessage
}

// Field returns the offending field of a validation error, or "".
func Field(err error) string {
	var perr errors.PlatformError
	if !errors.As(err, &perr) {
		return ""
	}
	field, _ := perr.Context()["field"].(string)
	return field
}
