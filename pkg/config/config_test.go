package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/sambigeara/permcalc/pkg/perm"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, DefaultListen, cfg.HTTP.Listen)
	require.Equal(t, DefaultSampleInterval, cfg.Sampling.Interval)
}

func TestLoadEmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("\n  \n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	in := Default()
	in.HTTP.Listen = "127.0.0.1:8081"
	in.Health.SocketMode = "600"
	in.Environment = "staging"
	in.Sampling.Interval = 30 * time.Second
	require.NoError(t, Save(dir, in))

	info, err := os.Stat(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	require.Equal(t, fs.FileMode(configFilePerm), info.Mode().Perm())

	out, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := "http:\n  listen: \":9000\"\nsampling:\n  interval: 2s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(raw), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Listen)
	require.Equal(t, 2*time.Second, cfg.Sampling.Interval)
	require.Equal(t, DefaultSocketMode, cfg.Health.SocketMode)
	require.Equal(t, DefaultDiskPercent, cfg.Thresholds.DiskPercent)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.HTTP.Listen = "nope"
	cfg.Health.SocketMode = "xrw------"
	cfg.Log.Level = "loud"
	cfg.Thresholds.DiskPercent = 120
	cfg.Sampling.Interval = time.Millisecond

	err := cfg.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 5)
	require.ErrorIs(t, err, perm.ErrInvalidPositionalCharacter)
}

func TestLoadLeavesValidationToCaller(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("health:\n  socketMode: \"789\"\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.ErrorIs(t, cfg.Validate(), perm.ErrInvalidDigit)
}

func TestEnvOverridesInvalidFileValue(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("log:\n  level: verbose\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Error(t, cfg.Validate())

	t.Setenv(envLogLevel, "debug")
	cfg.ApplyEnv()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadKeepsExplicitZeroThresholds(t *testing.T) {
	dir := t.TempDir()
	raw := "thresholds:\n  memoryPercent: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(raw), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Zero(t, cfg.Thresholds.MemoryPercent)
	require.Equal(t, DefaultDiskPercent, cfg.Thresholds.DiskPercent)
	require.NoError(t, cfg.Validate())

	cfg.Thresholds.DiskPercent = 0
	require.NoError(t, Save(dir, cfg))
	out, err := Load(dir)
	require.NoError(t, err)
	require.Zero(t, out.Thresholds.DiskPercent)
	require.Zero(t, out.Thresholds.MemoryPercent)
}

func TestSocketFileModeAcceptsBothForms(t *testing.T) {
	cfg := Default()

	mode, err := cfg.SocketFileMode()
	require.NoError(t, err)
	require.Equal(t, fs.FileMode(0o660), mode)

	cfg.Health.SocketMode = "640"
	mode, err = cfg.SocketFileMode()
	require.NoError(t, err)
	require.Equal(t, fs.FileMode(0o640), mode)
}

func TestSocketFileModeAcceptsChmodLiteral(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("health:\n  socketMode: 0660\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "0660", cfg.Health.SocketMode)

	mode, err := cfg.SocketFileMode()
	require.NoError(t, err)
	require.Equal(t, fs.FileMode(0o660), mode)

	cfg.Health.SocketMode = "1660"
	_, err = cfg.SocketFileMode()
	require.ErrorIs(t, err, perm.ErrInvalidLength)

	cfg.Health.SocketMode = "0668"
	_, err = cfg.SocketFileMode()
	require.ErrorIs(t, err, perm.ErrInvalidDigit)
}

func TestSocketPath(t *testing.T) {
	cfg := Default()
	require.Equal(t, filepath.Join("/state", DefaultSocket), cfg.SocketPath("/state"))

	cfg.Health.Socket = "/run/permcalc.sock"
	require.Equal(t, "/run/permcalc.sock", cfg.SocketPath("/state"))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(envListen, ":7000")
	t.Setenv(envEnvironment, "dev")
	t.Setenv(envLogLevel, "debug")

	cfg := Default()
	cfg.ApplyEnv()
	require.Equal(t, ":7000", cfg.HTTP.Listen)
	require.Equal(t, "dev", cfg.Environment)
	require.Equal(t, "debug", cfg.Log.Level)
}
