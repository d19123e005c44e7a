package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.DefaultNetwork)
	assert.Equal(t, dir, cfg.Dir())
	assert.NotNil(t, cfg.RPCOverrides)
	assert.Equal(t, DefaultRetry(), cfg.Retry)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "mainnet"
	cfg.DefaultWallet = "alice"
	cfg.RPCOverrides["testnet"] = "http://localhost:8545"
	cfg.Retry.MaxAttempts = 5
	require.NoError(t, cfg.Save())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", reloaded.DefaultNetwork)
	assert.Equal(t, "alice", reloaded.DefaultWallet)
	assert.Equal(t, "http://localhost:8545", reloaded.RPCOverrides["testnet"])
	assert.Equal(t, 5, reloaded.Retry.MaxAttempts)
}

func TestEnvOverridesNetwork(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvNetwork, "mainnet")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.DefaultNetwork)
}

func TestEnvInvalidNetworkIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvNetwork, "devnet")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "testnet", cfg.DefaultNetwork)
}

func TestLoadRejectsCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{broken"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestWalletsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	wf, err := cfg.LoadWallets()
	require.NoError(t, err)
	assert.Empty(t, wf.Wallets)

	wf.Wallets = append(wf.Wallets, Wallet{
		Name:      "alice",
		Address:   "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		IsDefault: true,
	})
	require.NoError(t, cfg.SaveWallets(wf))

	reloaded, err := cfg.LoadWallets()
	require.NoError(t, err)
	require.Len(t, reloaded.Wallets, 1)
	assert.Equal(t, "alice", reloaded.Wallets[0].Name)
	assert.True(t, reloaded.Wallets[0].IsDefault)
}

func TestConfigFilePermissions(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
