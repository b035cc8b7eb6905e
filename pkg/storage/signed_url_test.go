package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("NGP-C1-0007", "admissions/NGP-C1-0007/form.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "NGP-C1-0007", parsed.Subject)
	require.Equal(t, "admissions/NGP-C1-0007/form.pdf", parsed.Path)
	require.WithinDuration(t, expiresAt, parsed.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("S1", "admissions/S1/form.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("S1", "admissions/S1/form.pdf")
	require.NoError(t, err)

	other := NewSignedURLSigner("another", time.Hour)
	_, err = other.Parse(token)
	require.Error(t, err)

	_, err = signer.Parse(token + "00")
	require.Error(t, err)
}
