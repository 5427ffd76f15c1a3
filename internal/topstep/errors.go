package topstep

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorConfig    = "TOPSTEP_CONFIG"
	ErrorTransport = "TOPSTEP_TRANSPORT"
	ErrorDecode    = "TOPSTEP_DECODE"
	ErrorAuth      = "TOPSTEP_AUTH"
	ErrorBadInput  = "TOPSTEP_BAD_INPUT"
)

func configError(message string) error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(ErrorConfig)
}

// NewConfigError reports missing or invalid settings found before any
// network call.
func NewConfigError(message string) error {
	return configError(message)
}

func badInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput)
}

func authError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorAuth)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportError(message string, code int, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryExternal).
		WithCode(code).
		WithTextCode(ErrorTransport)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(source error, message string, metadata map[string]any) error {
	if source == nil {
		return transportError(message, http.StatusBadGateway, metadata)
	}
	err := goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorTransport)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func decodeError(source error, message string, metadata map[string]any) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryExternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(ErrorDecode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// providerError classifies an explicit success:false reply to a query.
// Failures that name authorization are auth errors; anything else is a
// transport-class failure carrying the provider's message.
func providerError(action string, status replyStatus) error {
	msg := status.message("unknown provider error")
	meta := map[string]any{"error_code": status.ErrorCode, "error_message": msg}
	if status.ErrorCode == http.StatusUnauthorized || mentionsAuth(msg) {
		return authError("topstep: "+action+" rejected: "+msg, meta)
	}
	return transportError("topstep: "+action+" failed: "+msg, http.StatusBadGateway, meta)
}

func mentionsAuth(msg string) bool {
	msg = strings.ToLower(msg)
	for _, word := range []string{"unauthorized", "unauthenticated", "forbidden", "token"} {
		if strings.Contains(msg, word) {
			return true
		}
	}
	return false
}

func hasCategory(err error, categories ...goerrors.Category) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	for _, category := range categories {
		if rich.Category == category {
			return true
		}
	}
	return false
}

// IsConfigError reports whether err is a missing or invalid configuration error.
func IsConfigError(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation)
}

// IsTransportError reports whether err came from the network, a non-2xx
// response, or a response that could not be decoded.
func IsTransportError(err error) bool {
	return hasCategory(err, goerrors.CategoryExternal)
}

// IsAuthError reports whether the provider rejected our credentials.
func IsAuthError(err error) bool {
	return hasCategory(err, goerrors.CategoryAuth)
}

// IsBadInput reports whether the caller supplied an unusable argument.
func IsBadInput(err error) bool {
	return hasCategory(err, goerrors.CategoryBadInput)
}

// TextCode returns the text code attached to err, or "" for foreign errors.
func TextCode(err error) string {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) {
		return ""
	}
	return rich.TextCode
}
