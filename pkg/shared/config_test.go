package shared

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DOCSIG_REGISTRY", "")
	os.Unsetenv("DOCSIG_REGISTRY")
	t.Setenv("DOCSIG_MNEMONIC", "test test test test test test test test test test test junk")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry != RegistryMemory {
		t.Fatalf("expected memory registry, got %q", cfg.Registry)
	}
	if cfg.AccountCount != 20 {
		t.Fatalf("expected 20 accounts, got %d", cfg.AccountCount)
	}
	if cfg.DerivationPath != "m/44'/60'/0'/0" {
		t.Fatalf("unexpected derivation path: %s", cfg.DerivationPath)
	}
	if cfg.Mnemonic.IsEmpty() {
		t.Fatal("expected mnemonic to be parsed")
	}
	if !cfg.WaitForReceipt {
		t.Fatal("expected receipts to be awaited by default")
	}
}

func TestLoadConfigUnsupportedRegistry(t *testing.T) {
	t.Setenv("DOCSIG_REGISTRY", "postgres")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported registry")
	}
}

func TestConfigValidateEVMRequiresContract(t *testing.T) {
	cfg := Config{Registry: "EVM", AccountCount: 20}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when contract address is missing")
	}
	cfg.ContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Registry != RegistryEVM {
		t.Fatalf("expected normalized registry name, got %q", cfg.Registry)
	}
}

func TestConfigValidateAccountCount(t *testing.T) {
	for _, count := range []int{0, -1, 1001} {
		cfg := Config{Registry: RegistryMemory, AccountCount: count}
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for account count %d", count)
		}
	}
}

func TestSecretNeverPrinted(t *testing.T) {
	secret := Secret("abandon abandon about")
	for _, rendered := range []string{
		fmt.Sprintf("%s", secret),
		fmt.Sprintf("%v", secret),
		fmt.Sprintf("%#v", secret),
		secret.String(),
	} {
		if rendered != redacted {
			t.Fatalf("secret leaked: %q", rendered)
		}
	}

	encoded, err := json.Marshal(struct {
		Seed Secret `json:"seed"`
	}{Seed: secret})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(encoded) != `{"seed":"[REDACTED]"}` {
		t.Fatalf("secret leaked in JSON: %s", encoded)
	}
	if secret.Reveal() != "abandon abandon about" {
		t.Fatal("Reveal must return the raw value")
	}
	if Secret("").String() != "" {
		t.Fatal("empty secret should render empty")
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	contents := "# comment\nexport DOCSIG_TEST_A=\"quoted\"\nDOCSIG_TEST_B='single'\n1BAD=value\nDOCSIG_TEST_C=kept\nnoequals\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("DOCSIG_TEST_A", "")
	os.Unsetenv("DOCSIG_TEST_A")
	t.Setenv("DOCSIG_TEST_B", "")
	os.Unsetenv("DOCSIG_TEST_B")
	t.Setenv("DOCSIG_TEST_C", "from-process")

	if !loadDotEnvFile(path) {
		t.Fatal("expected variables to be loaded")
	}
	if os.Getenv("DOCSIG_TEST_A") != "quoted" {
		t.Fatalf("unexpected A: %q", os.Getenv("DOCSIG_TEST_A"))
	}
	if os.Getenv("DOCSIG_TEST_B") != "single" {
		t.Fatalf("unexpected B: %q", os.Getenv("DOCSIG_TEST_B"))
	}
	if os.Getenv("DOCSIG_TEST_C") != "from-process" {
		t.Fatal("process environment must win over .env")
	}
}

func TestFindDotEnvWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("X=1\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	found, ok := findDotEnv(nested)
	if !ok || found != filepath.Join(root, ".env") {
		t.Fatalf("expected to find root .env, got %q (%v)", found, ok)
	}
}
