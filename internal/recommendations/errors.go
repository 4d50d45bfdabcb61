package recommendations

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/models"
)

const (
	msgNotConfigured = "It looks like the AI service needs to be configured. Please check your settings and try again."
	msgNoInput       = "No emotion was detected in the image. Please try analyzing a clearer image."
	msgNetwork       = "We're having trouble connecting to our AI service. Please check your internet connection and try again."
	msgRateLimited   = "Our AI service is currently busy. Please wait a moment and try again."
	msgTimeout       = "The AI service is taking longer than expected. Please try again in a moment."
	msgUnknown       = "We encountered an issue generating recommendations. Please try again or use the manual prompt below with Microsoft Copilot."
)

// Categorize maps a completion failure onto the user-facing error categories.
func Categorize(err error) models.ErrorCategory {
	if err == nil {
		return ""
	}
	if errors.Is(err, clients.ErrNotConfigured) {
		return models.ErrorNotConfigured
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.ErrorTransient
	}

	if status := statusCode(err); status != 0 {
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return models.ErrorNotConfigured
		case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
			return models.ErrorTransient
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return models.ErrorTransient
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return models.ErrorNotConfigured
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "network"):
		return models.ErrorTransient
	}
	return models.ErrorUnknown
}

// FriendlyMessage is the text shown for a failure category.
func FriendlyMessage(category models.ErrorCategory) string {
	switch category {
	case models.ErrorNotConfigured:
		return msgNotConfigured
	case models.ErrorNoInput:
		return msgNoInput
	case models.ErrorTransient:
		return msgNetwork
	default:
		return msgUnknown
	}
}

// friendlyMessageFor picks the most specific message for a failure. Transient failures
// distinguish throttling and slow responses from connectivity problems.
func friendlyMessageFor(category models.ErrorCategory, err error) string {
	if category != models.ErrorTransient || err == nil {
		return FriendlyMessage(category)
	}

	msg := strings.ToLower(err.Error())
	if statusCode(err) == http.StatusTooManyRequests ||
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") {
		return msgRateLimited
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) ||
		statusCode(err) == http.StatusRequestTimeout ||
		strings.Contains(msg, "timeout") {
		return msgTimeout
	}
	return msgNetwork
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var upstream *clients.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode
	}
	return 0
}
