package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "docqa_service"
server:
  address: ":9090"
rag:
  topK: 5
billing:
  chargeAmount: 250
  chargeEvery: 10
  currency: "eur"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.App.Name != "docqa_service" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.RAG.TopK != 5 {
		t.Errorf("RAG.TopK = %d", cfg.RAG.TopK)
	}
	if cfg.Billing.ChargeAmount != 250 || cfg.Billing.ChargeEvery != 10 || cfg.Billing.Currency != "eur" {
		t.Errorf("Billing = %+v", cfg.Billing)
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "docqa_service"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("default Server.Address = %q, want :8080", cfg.Server.Address)
	}
	if cfg.Server.UploadDir != "uploads" {
		t.Errorf("default Server.UploadDir = %q", cfg.Server.UploadDir)
	}
	if cfg.Server.MaxFileSize != 10<<20 {
		t.Errorf("default Server.MaxFileSize = %d", cfg.Server.MaxFileSize)
	}
	if cfg.RAG.TopK != 3 || cfg.RAG.ChunkSize != 1024 || cfg.RAG.ChunkOverlap != 256 {
		t.Errorf("RAG defaults = %+v", cfg.RAG)
	}
	if cfg.RAG.MemoryTokenBudget != 3000 {
		t.Errorf("default MemoryTokenBudget = %d", cfg.RAG.MemoryTokenBudget)
	}
	if cfg.Billing.ChargeAmount != 100 || cfg.Billing.ChargeEvery != 5 || cfg.Billing.Currency != "usd" {
		t.Errorf("Billing defaults = %+v", cfg.Billing)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("LoadConfig on missing file succeeded, want error")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "app: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig on invalid YAML succeeded, want error")
	}
}
