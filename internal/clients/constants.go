package clients

import "time"

const (
	USER_AGENT = "emotisense-client/1.0 (+https://github.com/spacesedan/emotisense)"

	DEFAULT_INFERENCE_TIMEOUT = 60 * time.Second
	DEFAULT_OPENAI_TIMEOUT    = 60 * time.Second
	HEALTHCHECK_TIMEOUT       = 5 * time.Second
	MEDIA_DIAL_TIMEOUT        = 10 * time.Second

	// MAX_MEDIA_BYTES caps both uploads and remote media downloads.
	MAX_MEDIA_BYTES = 32 << 20
	// MAX_INFERENCE_RESPONSE_BYTES caps how much of an inference reply is read.
	MAX_INFERENCE_RESPONSE_BYTES = 1 << 20
)
