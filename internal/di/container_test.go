package di

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const testConfig = `
llm:
  provider: openai
openai:
  api_key: sk-test
signatures:
  type: memory
export:
  type: stdout
logging:
  level: error
`

func TestBuildContainer_ResolvesFrontend(t *testing.T) {
	container, err := BuildContainer(writeConfig(t, testConfig))
	require.NoError(t, err)

	err = container.Invoke(func(frontend ports.Frontend, assistant *core.Assistant) {
		assert.NotNil(t, frontend)
		assert.Equal(t, "stdout", assistant.ExportTarget())
		assert.NoError(t, assistant.Signatures().Degraded())
	})
	require.NoError(t, err)
}

func TestBuildContainer_UnsupportedProvider(t *testing.T) {
	container, err := BuildContainer(writeConfig(t, "llm:\n  provider: llama\n"))
	require.NoError(t, err)

	err = container.Invoke(func(assistant *core.Assistant) {})
	assert.Error(t, err)
}

func TestBuildContainer_DegradedSignatures(t *testing.T) {
	sigPath := filepath.Join(t.TempDir(), "signatures.json")
	require.NoError(t, os.WriteFile(sigPath, []byte("{not json"), 0600))

	cfgPath := writeConfig(t, `
llm:
  provider: openai
openai:
  api_key: sk-test
signatures:
  type: file
  path: `+sigPath+`
export:
  type: stdout
`)
	container, err := BuildContainer(cfgPath)
	require.NoError(t, err)

	err = container.Invoke(func(store *core.SignatureStore) {
		assert.True(t, core.IsDegrading(store.Degraded()))
	})
	require.NoError(t, err)
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	flags, err := ParseFlags([]string{"-provider", "azure", "-tone", "formal", "-model", "gpt-4o-mini", "-export"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "azure", flags.Provider)
	assert.Equal(t, "formal", flags.Tone)
	assert.True(t, flags.Export)

	_, err = ParseFlags([]string{"-unknown"}, &out)
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	applyFlags(cfg, &CLIFlags{Provider: "azure", Model: "gpt-4o-mini", MaxTokens: 200, ExportTo: "file"})

	openaiCfg := cfg.GetOpenAI()
	assert.Equal(t, "azure", openaiCfg.APIType)
	assert.Equal(t, "gpt-4o-mini", openaiCfg.ModelName)
	assert.Equal(t, 200, openaiCfg.MaxTokens)
	assert.Equal(t, "file", cfg.GetString("export.type"))

	cfg = config.NewFromViper(config.NewEmptyViper())
	applyFlags(cfg, &CLIFlags{Provider: "bedrock", Model: "amazon.titan-text-express-v1"})
	assert.Equal(t, "amazon.titan-text-express-v1", cfg.GetBedrock().ModelID)
}

func TestBuildContainer_UnreachableSignatureBackend(t *testing.T) {
	cfgPath := writeConfig(t, `
llm:
  provider: openai
openai:
  api_key: sk-test
signatures:
  type: redis
  redis_url: redis://127.0.0.1:1/0
export:
  type: stdout
logging:
  level: error
`)
	container, err := BuildContainer(cfgPath)
	require.NoError(t, err)

	err = container.Invoke(func(frontend ports.Frontend, assistant *core.Assistant) {
		assert.NotNil(t, frontend)

		store := assistant.Signatures()
		assert.True(t, core.IsDegrading(store.Degraded()))
		assert.Empty(t, store.Names())

		_, upsertErr := store.Upsert(context.Background(), "work", "Regards")
		assert.True(t, core.IsDegrading(upsertErr))
	})
	require.NoError(t, err)
}
