package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billrecon/internal/config"
	"billrecon/internal/domain"
	"billrecon/internal/parser"
	"billrecon/internal/parser/gemini"
	"billrecon/internal/port"
)

const billJSON = `{"pagewise_line_items":[{"page_no":"1","page_type":"Final Bill","bill_items":[{"item_name":"Consultation","item_amount":300,"item_rate":300,"item_quantity":1}]}],"printed_total":300}`

func newTestParser(serverURL string) *gemini.Parser {
	cfg := &config.ParserProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
	}
	return gemini.NewParserWithEndpoint(cfg, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]interface{}{
			"promptTokenCount":     1200,
			"candidatesTokenCount": 300,
			"totalTokenCount":      1500,
		},
	}
}

func TestGeminiParser_Extract_PDF_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		contents := reqBody["contents"].([]interface{})
		assert.Len(t, contents, 1)
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		assert.Len(t, parts, 2)

		inlineData := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "application/pdf", inlineData["mime_type"])
		assert.NotEmpty(t, inlineData["data"])
		assert.Contains(t, parts[1].(map[string]interface{})["text"], "each of the 3 pages")

		_ = json.NewEncoder(w).Encode(successResponse(billJSON))
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		PageCount:   3,
	})
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
	assert.Equal(t, domain.TokenUsage{TotalTokens: 1500, InputTokens: 1200, OutputTokens: 300}, out.TokenUsage)
	require.Len(t, out.Pages, 1)
	assert.Equal(t, domain.PageTypeFinalBill, out.Pages[0].PageType)
	assert.Equal(t, "Consultation", out.Pages[0].Items[0].Name)
	require.NotNil(t, out.PrintedTotal)
	assert.InDelta(t, 300.0, *out.PrintedTotal, 1e-9)
}

func TestGeminiParser_Extract_UnsupportedContentType(t *testing.T) {
	_, err := newTestParser("http://unused").Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("GIF89a"),
		ContentType: "image/gif",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestGeminiParser_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429}}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("x"), ContentType: "image/png",
	})

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
	assert.Equal(t, "gemini", rlErr.Provider)
}

func TestGeminiParser_Extract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("x"), ContentType: "image/jpeg",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGeminiParser_Extract_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := successResponse(`{"pagewise_line_items":[`)
		resp["candidates"].([]map[string]interface{})[0]["finishReason"] = "MAX_TOKENS"
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("x"), ContentType: "application/pdf",
	})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestGeminiParser_Extract_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("x"), ContentType: "application/pdf",
	})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestGeminiParser_RegisteredWithFactory(t *testing.T) {
	assert.Contains(t, parser.RegisteredProviders(), "gemini")
}
