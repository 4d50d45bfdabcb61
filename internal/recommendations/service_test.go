package recommendations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/models"
	"github.com/spacesedan/emotisense/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	enabled bool
	text    string
	err     error

	calls  int
	system string
	user   string
}

func (f *fakeCompleter) Enabled() bool { return f.enabled }

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	return f.text, f.err
}

func TestGenerate_NotConfigured(t *testing.T) {
	t.Run("nil completer", func(t *testing.T) {
		s := NewService(nil)
		assert.False(t, s.IsConfigured())

		rec := s.Generate(context.Background(), models.RecommendationRequest{PredominantEmotionLabel: "Happy"})

		assert.False(t, rec.Success)
		assert.Equal(t, models.ErrorNotConfigured, rec.ErrorCategory)
		assert.Equal(t, msgNotConfigured, rec.Message)
		assert.Equal(t, prompts.SingleEmotion("Happy").RenderedText, rec.FallbackPrompt)
		assert.NotEmpty(t, rec.StaticGuidance)
	})

	t.Run("nil openai client", func(t *testing.T) {
		s := NewService(clients.NewOpenAIClient(clients.OpenAIConfig{}))
		assert.False(t, s.IsConfigured())

		rec := s.Generate(context.Background(), models.RecommendationRequest{PredominantEmotionLabel: "Sad"})
		assert.Equal(t, models.ErrorNotConfigured, rec.ErrorCategory)
	})

	t.Run("checked before input", func(t *testing.T) {
		fake := &fakeCompleter{enabled: false}
		rec := NewService(fake).Generate(context.Background(), models.RecommendationRequest{})

		assert.Equal(t, models.ErrorNotConfigured, rec.ErrorCategory)
		assert.Empty(t, rec.FallbackPrompt)
		assert.Zero(t, fake.calls)
	})
}

func TestGenerate_NoInput(t *testing.T) {
	fake := &fakeCompleter{enabled: true, text: "unused"}

	rec := NewService(fake).Generate(context.Background(), models.RecommendationRequest{PredominantEmotionLabel: "   "})

	assert.False(t, rec.Success)
	assert.Equal(t, models.ErrorNoInput, rec.ErrorCategory)
	assert.Equal(t, msgNoInput, rec.Message)
	assert.Empty(t, rec.Text)
	assert.Zero(t, fake.calls)
}

func TestGenerate_Success(t *testing.T) {
	fake := &fakeCompleter{enabled: true, text: "## Strategies\n\n1. Celebrate"}

	rec := NewService(fake).Generate(context.Background(), models.RecommendationRequest{PredominantEmotionLabel: "Happy"})

	require.True(t, rec.Success)
	assert.Equal(t, "Happy", rec.Emotion)
	assert.Equal(t, "## Strategies\n\n1. Celebrate", rec.Text)
	assert.Contains(t, rec.HTML, "<h2>Strategies</h2>")
	assert.Empty(t, rec.ErrorCategory)
	assert.Empty(t, rec.FallbackPrompt)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, prompts.SystemInstruction, fake.system)
	assert.Contains(t, fake.user, "experiencing Happy")
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		err      error
		category models.ErrorCategory
		message  string
	}{
		{"deadline", "", context.DeadlineExceeded, models.ErrorTransient, msgTimeout},
		{"rate limited", "", errors.New("Rate limit reached for requests"), models.ErrorTransient, msgRateLimited},
		{"network", "", errors.New("network unreachable"), models.ErrorTransient, msgNetwork},
		{"bad key", "", errors.New("Incorrect API key provided"), models.ErrorNotConfigured, msgNotConfigured},
		{"other", "", errors.New("model overloaded with feelings"), models.ErrorUnknown, msgUnknown},
		{"empty completion", "  ", nil, models.ErrorUnknown, msgUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{enabled: true, text: tt.text, err: tt.err}

			rec := NewService(fake).Generate(context.Background(), models.RecommendationRequest{PredominantEmotionLabel: "Anxious"})

			assert.False(t, rec.Success)
			assert.Equal(t, tt.category, rec.ErrorCategory)
			assert.Equal(t, tt.message, rec.Message)
			assert.Equal(t, prompts.SingleEmotion("Anxious").RenderedText, rec.FallbackPrompt)
			assert.Equal(t, 1, fake.calls)
		})
	}
}

func TestGenerate_OpenAIStatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		category models.ErrorCategory
	}{
		{http.StatusTooManyRequests, models.ErrorTransient},
		{http.StatusServiceUnavailable, models.ErrorTransient},
		{http.StatusUnauthorized, models.ErrorNotConfigured},
		{http.StatusBadRequest, models.ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "upstream said no", "type": "invalid_request_error"}}`))
			}))
			defer srv.Close()

			llm := clients.NewOpenAIClient(clients.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
			rec := NewService(llm).Generate(context.Background(), models.RecommendationRequest{PredominantEmotionLabel: "Happy"})

			assert.False(t, rec.Success)
			assert.Equal(t, tt.category, rec.ErrorCategory)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestCategorize(t *testing.T) {
	assert.Empty(t, Categorize(nil))
	assert.Equal(t, models.ErrorNotConfigured, Categorize(clients.ErrNotConfigured))
	assert.Equal(t, models.ErrorTransient, Categorize(context.Canceled))
	assert.Equal(t, models.ErrorTransient, Categorize(errors.New("insufficient_quota")))
	assert.Equal(t, models.ErrorTransient, Categorize(&clients.UpstreamError{StatusCode: http.StatusBadGateway}))
	assert.Equal(t, models.ErrorUnknown, Categorize(errors.New("boom")))
}

func TestStaticGuidanceFor(t *testing.T) {
	happy := StaticGuidanceFor("Happy")
	require.Len(t, happy, 2)
	assert.Equal(t, "rec-1", happy[0].ID)
	assert.Equal(t, "rec-4", happy[1].ID)

	assert.Equal(t, "rec-2", StaticGuidanceFor("confused")[0].ID)
	assert.Equal(t, "rec-3", StaticGuidanceFor("Anxious")[0].ID)
	assert.Len(t, StaticGuidanceFor("Neutral"), 4)
	assert.Len(t, StaticGuidanceFor(""), 4)
}
