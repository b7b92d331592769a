package roundconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nhbchain/crypto"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "round.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.ValidatorKey)
	require.FileExists(t, path)
}

func TestLoadParsesValidatorsAndEpoch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "round.toml")
	contents := fmt.Sprintf(`ListenAddress = "0.0.0.0:7001"
MetricsAddress = "0.0.0.0:9105"
DataDir = "%s"
ValidatorKey = "aabbccdd"
EpochNumber = 7
StartRound = 3
Validators = ["aa", "bb", "cc", "dd"]
`, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 7, cfg.EpochNumber)
	require.EqualValues(t, 3, cfg.StartRound)

	addrs, err := cfg.ValidatorAddresses()
	require.NoError(t, err)
	require.Len(t, addrs, 4)
}

func TestSigningKeyPrefersKeystoreOverValidatorKey(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{ValidatorKey: "not-hex-and-should-be-ignored"}

	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	require.NoError(t, cfg.ImportKeystore(filepath.Join(dir, "validator.ks"), "s3cret", key))
	require.Empty(t, cfg.ValidatorKey)

	// Configure both sources: the keystore must win over the bad hex key.
	cfg.ValidatorKey = "not-hex-and-should-be-ignored"
	loaded, err := cfg.SigningKey()
	require.NoError(t, err)
	require.Equal(t, key.Bytes(), loaded.Bytes())
}

func TestLoadGeneratesKeyWhenBlank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "round.toml")
	require.NoError(t, os.WriteFile(path, []byte(`DataDir = "./data"`+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.ValidatorKey)

	_, err = cfg.SigningKey()
	require.NoError(t, err)
}
