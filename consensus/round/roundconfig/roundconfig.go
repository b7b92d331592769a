// Package roundconfig loads the TOML bootstrap configuration for a round
// engine node: its signing key, data directory, and the validator set and
// epoch it starts at.
//
// Grounded on config/config.go's Load/createDefault pattern (toml.DecodeFile,
// write-back a generated key the first time the file is created).
package roundconfig

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"nhbchain/crypto"
)

// Config is a round engine node's bootstrap configuration.
type Config struct {
	ListenAddress  string   `toml:"ListenAddress"`
	MetricsAddress string   `toml:"MetricsAddress"`
	DataDir        string   `toml:"DataDir"`
	ValidatorKey   string   `toml:"ValidatorKey"`
	EpochNumber    uint64   `toml:"EpochNumber"`
	StartRound     uint64   `toml:"StartRound"`
	Validators     []string `toml:"Validators"`

	// KeystorePath, if set, takes precedence over ValidatorKey: the signing
	// key is decrypted from an Ethereum v3 keystore file instead of read as
	// a plaintext hex field.
	KeystorePath       string `toml:"KeystorePath"`
	KeystorePassphrase string `toml:"KeystorePassphrase"`
}

// Load reads cfg from path, generating a default file (with a fresh
// signing key) if none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.ValidatorKey == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		cfg.ValidatorKey = hex.EncodeToString(key.Bytes())

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, os.ModePerm)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		ListenAddress:  ":7001",
		MetricsAddress: ":9105",
		DataDir:        "./round-data",
		ValidatorKey:   hex.EncodeToString(key.Bytes()),
		EpochNumber:    0,
		StartRound:     0,
		Validators:     []string{},
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SigningKey resolves the node's signing key, preferring an encrypted
// keystore file over the plaintext ValidatorKey field when both are set.
func (c *Config) SigningKey() (*crypto.PrivateKey, error) {
	if c.KeystorePath != "" {
		key, err := crypto.LoadFromKeystore(c.KeystorePath, c.KeystorePassphrase)
		if err != nil {
			return nil, fmt.Errorf("roundconfig: load keystore: %w", err)
		}
		return key, nil
	}
	raw, err := hex.DecodeString(c.ValidatorKey)
	if err != nil {
		return nil, fmt.Errorf("roundconfig: decode validator key: %w", err)
	}
	return crypto.PrivateKeyFromBytes(raw)
}

// ImportKeystore encrypts key into an Ethereum v3 keystore file at path and
// points this config at it, clearing the plaintext ValidatorKey field.
func (c *Config) ImportKeystore(path, passphrase string, key *crypto.PrivateKey) error {
	if err := crypto.SaveToKeystore(path, key, passphrase); err != nil {
		return fmt.Errorf("roundconfig: save keystore: %w", err)
	}
	c.KeystorePath = path
	c.KeystorePassphrase = passphrase
	c.ValidatorKey = ""
	return nil
}

// ValidatorAddresses decodes the configured hex validator addresses in
// file order, which is also their round-robin proposer order.
func (c *Config) ValidatorAddresses() ([][]byte, error) {
	out := make([][]byte, 0, len(c.Validators))
	for i, v := range c.Validators {
		addr, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("roundconfig: validator %d: %w", i, err)
		}
		out = append(out, addr)
	}
	return out, nil
}
