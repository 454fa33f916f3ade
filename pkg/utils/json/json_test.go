package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	Response      string `json:"response"`
	KnowledgeBase string `json:"knowledge_base,omitempty"`
}

func TestCodecKeepsUnicode(t *testing.T) {
	in := reply{Response: "Here’s your summary, darling: ok 😘"}

	data, err := Marshal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "knowledge_base")

	var out reply
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(reply{Response: "a", KnowledgeBase: "b"}))

	var out reply
	require.NoError(t, NewDecoder(&buf).Decode(&out))
	assert.Equal(t, "b", out.KnowledgeBase)
}
