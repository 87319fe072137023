package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesAndQuotes(t *testing.T) {
	path := writeEnv(t, `
# broker config
MITCH_TEST_BROKERS="kafka-1:9092,kafka-2:9092"
export MITCH_TEST_SYMBOL='BTCUSDT'
MITCH_TEST_BARE=plain
not-a-pair
`)
	for _, k := range []string{"MITCH_TEST_BROKERS", "MITCH_TEST_SYMBOL", "MITCH_TEST_BARE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	if err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("MITCH_TEST_BROKERS"); got != "kafka-1:9092,kafka-2:9092" {
		t.Errorf("brokers: %q", got)
	}
	if got := os.Getenv("MITCH_TEST_SYMBOL"); got != "BTCUSDT" {
		t.Errorf("symbol: %q", got)
	}
	if got := os.Getenv("MITCH_TEST_BARE"); got != "plain" {
		t.Errorf("bare: %q", got)
	}
}

func TestLoadKeepsExistingEnv(t *testing.T) {
	path := writeEnv(t, "MITCH_TEST_KEEP=from-file\n")
	t.Setenv("MITCH_TEST_KEEP", "from-env")
	if err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("MITCH_TEST_KEEP"); got != "from-env" {
		t.Fatalf("overwrote environment: %q", got)
	}
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	path := writeEnv(t, "MITCH_TEST_SECOND=yes\n")
	t.Setenv("MITCH_TEST_SECOND", "")
	os.Unsetenv("MITCH_TEST_SECOND")
	if err := Load(filepath.Join(t.TempDir(), "absent"), path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if os.Getenv("MITCH_TEST_SECOND") != "yes" {
		t.Fatal("second path not loaded")
	}
}
