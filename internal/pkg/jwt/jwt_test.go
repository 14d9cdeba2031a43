package jwt

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Issuer: "galaxy-identity", Audience: "galaxy-app", TTL: time.Hour, KID: "test"}
}

func TestGenerateAndVerify(t *testing.T) {
	m, err := LoadAndBuild(testConfig())
	require.NoError(t, err)

	tok, jti, err := m.Generator.GenerateAccessToken("01J0ACC", "admin@galaxy.com", []string{"admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := m.Verifier.VerifyAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "01J0ACC", claims.AccountID)
	assert.Equal(t, "admin@galaxy.com", claims.Email)
	assert.Equal(t, jti, claims.ID)
	assert.True(t, claims.IsAdmin())
}

func TestVerifyRejectsForeignKeyAndAudience(t *testing.T) {
	a, err := LoadAndBuild(testConfig())
	require.NoError(t, err)
	b, err := LoadAndBuild(testConfig())
	require.NoError(t, err)

	tok, _, err := a.Generator.GenerateAccessToken("acc", "", nil)
	require.NoError(t, err)
	_, err = b.Verifier.Verify(tok)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Audience = "someone-else"
	key, err := GenerateEphemeralKey()
	require.NoError(t, err)
	other := Build(key, &key.PublicKey, cfg)
	tok, _, err = other.Generator.GenerateAccessToken("acc", "", nil)
	require.NoError(t, err)
	strict := Build(key, &key.PublicKey, testConfig())
	_, err = strict.Verifier.Verify(tok)
	assert.EqualError(t, err, "invalid audience")
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute
	m, err := LoadAndBuild(cfg)
	require.NoError(t, err)

	tok, _, err := m.Generator.GenerateAccessToken("acc", "", nil)
	require.NoError(t, err)
	_, err = m.Verifier.VerifyAccessToken(tok)
	assert.Error(t, err)
}

func TestLoadFromPEMFiles(t *testing.T) {
	key, err := GenerateEphemeralKey()
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "priv.pem")
	pubPath := filepath.Join(dir, "pub.pem")

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644))

	cfg := testConfig()
	cfg.PrivPath, cfg.PubPath = privPath, pubPath
	m, err := LoadAndBuild(cfg)
	require.NoError(t, err)

	tok, _, err := m.Generator.GenerateAccessToken("acc", "", []string{"user"})
	require.NoError(t, err)
	claims, err := m.Verifier.VerifyAccessToken(tok)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())

	require.NoError(t, os.WriteFile(privPath, []byte("not pem"), 0o600))
	_, err = LoadAndBuild(cfg)
	assert.Error(t, err)
}
