package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mikey/llm-email-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseAnalysis_StripsSentimentLine(t *testing.T) {
	raw := "Main request: refund\nSentiment: NEGATIVE (frustrated)\nOther: ..."

	sentiment, text := ParseAnalysis(raw)

	require.NotNil(t, sentiment)
	assert.Equal(t, "NEGATIVE", sentiment.Label)
	assert.Equal(t, "Main request: refund\nOther: ...", text)
	assert.NotContains(t, text, "Sentiment:")
	assert.NotContains(t, text, "\n\n")
}

func TestParseAnalysis_NoSentimentLine(t *testing.T) {
	raw := "Main request: refund\nTopic: billing\n"

	sentiment, text := ParseAnalysis(raw)

	assert.Nil(t, sentiment)
	assert.Equal(t, raw, text)
}

func TestParseAnalysis_Cases(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLabel string
		wantText  string
	}{
		{
			name:      "first_line_wins",
			raw:       "Sentiment: POSITIVE\nSentiment: NEGATIVE\nTopic: praise",
			wantLabel: "POSITIVE",
			wantText:  "Sentiment: NEGATIVE\nTopic: praise",
		},
		{
			name:      "no_annotation",
			raw:       "Topic: order\nSentiment:   NEUTRAL  ",
			wantLabel: "NEUTRAL",
			wantText:  "Topic: order",
		},
		{
			name:     "empty_value_still_removed",
			raw:      "Topic: order\nSentiment:\nUrgency: low",
			wantText: "Topic: order\nUrgency: low",
		},
		{
			name:     "only_annotation",
			raw:      "Sentiment: (unclear)\nTopic: order",
			wantText: "Topic: order",
		},
		{
			name:      "indented_line_is_not_a_sentiment_line",
			raw:       "  Sentiment: NEGATIVE\nTopic: order",
			wantLabel: "",
			wantText:  "  Sentiment: NEGATIVE\nTopic: order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentiment, text := ParseAnalysis(tt.raw)
			if tt.wantLabel == "" {
				assert.Nil(t, sentiment)
			} else {
				require.NotNil(t, sentiment)
				assert.Equal(t, tt.wantLabel, sentiment.Label)
			}
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func newTestAnalysisService(client LLMClient, opts AssistantOptions) *AnalysisService {
	return NewAnalysisService(client, utils.NewTextProcessor(zap.NewNop()), zap.NewNop(), opts)
}

func TestAnalysisService_Analyze(t *testing.T) {
	client := &MockLLMClient{}
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req *CompletionRequest) bool {
		return req.SystemPrompt == analysisSystemPrompt &&
			strings.Contains(req.UserPrompt, "Can I get a refund for order #123?") &&
			strings.Contains(req.UserPrompt, "Sentiment: POSITIVE/NEGATIVE/NEUTRAL")
	})).Return(&Completion{
		Text:  "Main request: refund for order #123\nSentiment: NEGATIVE (upset)\nUrgency: high",
		Model: "gpt-4o",
	}, nil)

	service := newTestAnalysisService(client, AssistantOptions{AnalysisTimeout: time.Second})
	result, err := service.Analyze(context.Background(), "Can I get a refund for order #123?")

	require.NoError(t, err)
	require.NotNil(t, result.Sentiment)
	assert.Equal(t, "NEGATIVE", result.Sentiment.Label)
	assert.Contains(t, result.AnalysisText, "refund")
	assert.Equal(t, "gpt-4o", result.Model)
	client.AssertExpectations(t)
}

func TestAnalysisService_EmptyEmail(t *testing.T) {
	client := &MockLLMClient{}
	service := newTestAnalysisService(client, AssistantOptions{})

	for _, text := range []string{"", "   \n\t "} {
		result, err := service.Analyze(context.Background(), text)
		assert.Nil(t, result)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnalysisService_FailureReturnsFallback(t *testing.T) {
	client := &MockLLMClient{}
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	service := newTestAnalysisService(client, AssistantOptions{})
	result, err := service.Analyze(context.Background(), "hello")

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.True(t, IsRetryable(err))
	require.NotNil(t, result)
	assert.Equal(t, AnalysisFallbackText, result.AnalysisText)
	assert.Nil(t, result.Sentiment)
}

func TestAnalysisService_TimeoutBecomesAnalysisError(t *testing.T) {
	client := &MockLLMClient{}
	client.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		}).
		Return(nil, context.DeadlineExceeded)

	service := newTestAnalysisService(client, AssistantOptions{AnalysisTimeout: 10 * time.Millisecond})
	_, err := service.Analyze(context.Background(), "hello")

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnalysisService_TruncatesLongEmails(t *testing.T) {
	client := &MockLLMClient{}
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req *CompletionRequest) bool {
		return !strings.Contains(req.UserPrompt, strings.Repeat("x", 50)) &&
			strings.Contains(req.UserPrompt, "truncated")
	})).Return(&Completion{Text: "Topic: long"}, nil)

	service := newTestAnalysisService(client, AssistantOptions{MaxBodySize: 20})
	_, err := service.Analyze(context.Background(), strings.Repeat("x", 100))

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestResponseService_Generate(t *testing.T) {
	client := &MockLLMClient{}
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req *CompletionRequest) bool {
		return req.SystemPrompt == responseSystemPrompt &&
			strings.Contains(req.UserPrompt, "Tone: Spartan") &&
			strings.Contains(req.UserPrompt, "refund request")
	})).Return(&Completion{Text: "Refund approved.", Model: "gpt-4o"}, nil)

	service := NewResponseService(client, zap.NewNop(), AssistantOptions{GenerationTimeout: time.Second})
	draft, err := service.Generate(context.Background(), "refund request", Tone("spartan"))

	require.NoError(t, err)
	assert.Equal(t, "Refund approved.", draft.Text)
	assert.Equal(t, ToneSpartan, draft.Tone)
	client.AssertExpectations(t)
}

func TestResponseService_InvalidTone(t *testing.T) {
	client := &MockLLMClient{}
	service := NewResponseService(client, zap.NewNop(), AssistantOptions{})

	_, err := service.Generate(context.Background(), "context", Tone("Pirate"))

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestResponseService_FailureReturnsFallback(t *testing.T) {
	client := &MockLLMClient{}
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	service := NewResponseService(client, zap.NewNop(), AssistantOptions{})
	draft, err := service.Generate(context.Background(), "context", ToneFormal)

	var generationErr *GenerationError
	require.ErrorAs(t, err, &generationErr)
	require.NotNil(t, draft)
	assert.Equal(t, GenerationFallbackText, draft.Text)
}

func TestParseTone(t *testing.T) {
	for _, name := range []string{"Formal", "casual", " PROFESSIONAL ", "spartan"} {
		_, err := ParseTone(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseTone("")
	assert.Error(t, err)
}
