package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"docaudit/internal/models"
)

type Config struct {
	Server    ServerConfig  `yaml:"server"`
	LLM       LLMConfig     `yaml:"llm"`
	Embedding LLMConfig     `yaml:"embedding"`
	RAG       RAGConfig     `yaml:"rag"`
	Storage   StorageConfig `yaml:"storage"`
}

// LLMConfig describes one provider endpoint, used for both the chat model
// and the embedding model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type RAGConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	TopK         int      `yaml:"top_k"`
	Terms        []string `yaml:"terms"`
}

type StorageConfig struct {
	IndexRoot   string `yaml:"index_root"`
	TempRoot    string `yaml:"temp_root"`
	CatalogPath string `yaml:"catalog_path"`
	Debug       bool   `yaml:"debug"`
}

const (
	defaultPort         = 8000
	defaultChunkSize    = 500
	defaultChunkOverlap = 100
	defaultTopK         = 5
	defaultIndexRoot    = "./indexes"
	defaultTempRoot     = "./temp"
	defaultCatalogPath  = "./docaudit.db"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with all defaults applied, for use without a
// config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if len(cfg.RAG.Terms) == 0 {
		cfg.RAG.Terms = models.DefaultTerms
	}
	if cfg.Storage.IndexRoot == "" {
		cfg.Storage.IndexRoot = defaultIndexRoot
	}
	if cfg.Storage.TempRoot == "" {
		cfg.Storage.TempRoot = defaultTempRoot
	}
	if cfg.Storage.CatalogPath == "" {
		cfg.Storage.CatalogPath = defaultCatalogPath
	}
	if cfg.LLM.Key == "" {
		cfg.LLM.Key = os.Getenv("LLM_API_KEY")
	}
	if cfg.Embedding.Key == "" {
		cfg.Embedding.Key = cfg.LLM.Key
	}
}
