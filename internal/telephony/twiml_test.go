package telephony

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTwiMLListening(t *testing.T) {
	markup, err := RenderTwiML(TurnResponse{
		Utterance:      "Selamat pagi Bapak Budi",
		ListenForReply: true,
	}, "/api/voice/process", "/api/voice/handle")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(markup, xml.Header))
	assert.Contains(t, markup, `<Gather input="speech" language="id-ID" timeout="5" speechTimeout="auto" action="/api/voice/process" method="POST">`)
	assert.Contains(t, markup, `<Say language="id-ID" voice="Polly.Joanna">Selamat pagi Bapak Budi</Say>`)
	// Silence falls through the Gather into a Redirect, never a hangup.
	assert.Contains(t, markup, `<Redirect method="POST">/api/voice/handle</Redirect>`)
	assert.NotContains(t, markup, "<Hangup>")

	// The gather must come before the redirect.
	assert.Less(t, strings.Index(markup, "<Gather"), strings.Index(markup, "<Redirect"))
}

func TestRenderTwiMLFinalTurn(t *testing.T) {
	markup, err := RenderTwiML(TurnResponse{
		Utterance:      "Terima kasih, sampai jumpa.",
		ListenForReply: false,
	}, "/api/voice/process", "/api/voice/handle")
	require.NoError(t, err)

	assert.Contains(t, markup, `<Say language="id-ID" voice="Polly.Joanna">Terima kasih, sampai jumpa.</Say>`)
	assert.Contains(t, markup, "<Hangup>")
	assert.NotContains(t, markup, "<Gather")
	assert.NotContains(t, markup, "<Redirect")
}

func TestRenderTwiMLEscapesUtterance(t *testing.T) {
	markup, err := RenderTwiML(TurnResponse{
		Utterance:      `Harga < 500 ribu & "gratis" oli`,
		ListenForReply: false,
	}, "/api/voice/process", "/api/voice/handle")
	require.NoError(t, err)

	assert.Contains(t, markup, "Harga &lt; 500 ribu &amp;")
	assert.NotContains(t, markup, `< 500`)
}
