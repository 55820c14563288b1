package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billrecon/internal/config"
	"billrecon/internal/parser"
	"billrecon/internal/port"
)

type stubExtractor struct{ name string }

func (s *stubExtractor) Extract(context.Context, port.ExtractInput) (*port.ExtractOutput, error) {
	return &port.ExtractOutput{ModelUsed: s.name}, nil
}

func registerStub(name string) {
	parser.RegisterProvider(name, func(cfg *config.ParserProviderConfig) (port.PageExtractor, error) {
		return &stubExtractor{name: cfg.Provider}, nil
	})
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := parser.NewExtractor(&config.ParserProviderConfig{Provider: "nope", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parser provider")
}

func TestNewExtractor_RequiresAPIKey(t *testing.T) {
	registerStub("stub-a")
	_, err := parser.NewExtractor(&config.ParserProviderConfig{Provider: "stub-a"})
	require.Error(t, err)
}

func TestBuildExtractor_SingleProvider(t *testing.T) {
	registerStub("stub-a")
	ex, err := parser.BuildExtractor(&config.ParserConfig{Provider: "stub-a", APIKey: "k"})
	require.NoError(t, err)

	_, isFallback := ex.(*parser.FallbackExtractor)
	assert.False(t, isFallback)
	assert.Contains(t, parser.RegisteredProviders(), "stub-a")
}

func TestBuildExtractor_MultipleTiersUseFallback(t *testing.T) {
	registerStub("stub-a")
	registerStub("stub-b")
	ex, err := parser.BuildExtractor(&config.ParserConfig{
		Primary:   config.ParserProviderConfig{Provider: "stub-a", APIKey: "k1"},
		Secondary: config.ParserProviderConfig{Provider: "stub-b", APIKey: "k2"},
	})
	require.NoError(t, err)
	require.IsType(t, &parser.FallbackExtractor{}, ex)

	out, err := ex.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, "stub-a", out.ModelUsed)
}

func TestBuildExtractor_PropagatesTierError(t *testing.T) {
	registerStub("stub-a")
	_, err := parser.BuildExtractor(&config.ParserConfig{
		Primary:   config.ParserProviderConfig{Provider: "stub-a", APIKey: "k1"},
		Secondary: config.ParserProviderConfig{Provider: "missing", APIKey: "k2"},
	})
	assert.Error(t, err)
}
