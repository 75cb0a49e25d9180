package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderActivation(t *testing.T) {
	subject, text, html, err := Render(Activation, map[string]any{
		"Name": "Ana",
		"Link": "http://localhost:8080/api/activation/tok123",
	})
	require.NoError(t, err)

	assert.Equal(t, "Activate your account", subject)
	assert.Contains(t, text, "Hello Ana")
	assert.Contains(t, text, "http://localhost:8080/api/activation/tok123")
	assert.Contains(t, html, `href="http://localhost:8080/api/activation/tok123"`)
}

func TestRenderEscapesHTML(t *testing.T) {
	_, text, html, err := Render(Welcome, map[string]any{
		"Name": "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.Contains(t, text, "<script>", "plain text body is not escaped")
	assert.NotContains(t, html, "<script>", "html body must escape user input")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("password_reset", nil)
	assert.Error(t, err)
}
