package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMailVerification(t *testing.T) {
	subject, text, err := renderMail(MailRequestedEvent{
		Kind: MailKindVerification,
		To:   "ada@nana.academy",
		Name: "Ada",
		Link: "https://portal.nana.academy/verify-email?token=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "[NANA ACADEMY] Verify your email address", subject)
	assert.Contains(t, text, "Hello Ada")
	assert.Contains(t, text, "https://portal.nana.academy/verify-email?token=abc")
}

func TestRenderMailReset(t *testing.T) {
	subject, text, err := renderMail(MailRequestedEvent{
		Kind: MailKindPasswordReset,
		To:   "ada@nana.academy",
		Link: "https://portal.nana.academy/reset-password?token=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "[NANA ACADEMY] Reset your password", subject)
	assert.Contains(t, text, "Hello,")
	assert.Contains(t, text, "reset-password?token=abc")
}

func TestRenderMailUnknownKind(t *testing.T) {
	_, _, err := renderMail(MailRequestedEvent{Kind: "newsletter"})
	assert.Error(t, err)
}
