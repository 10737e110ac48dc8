package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"grimoire/internal/bot"
	"grimoire/internal/catalog"
	"grimoire/internal/chunker"
	"grimoire/internal/config"
	"grimoire/internal/domain"
	"grimoire/internal/embedding/openai"
	"grimoire/internal/embedding/tfidf"
	"grimoire/internal/logger"
	"grimoire/internal/vectorstore"
	"grimoire/internal/vectorstore/qdrant"
	"grimoire/internal/vectorstore/sqlite"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/grimoire/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, _ := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()

	spells, err := catalog.LoadCatalog(cfg.Catalog.SpellsPath)
	if err != nil {
		log.Fatalf("failed to load spell catalog: %v", err)
	}
	entities, err := catalog.LoadEntityData(cfg.Catalog.EntitiesPath)
	if err != nil {
		log.Fatalf("failed to load entity data: %v", err)
	}

	// Derived damage types are written back so the chat binary's record
	// lookups see them when filling {damage_types} templates.
	catalog.DeriveDamageTypes(spells, entities)
	if err := spells.Save(cfg.Catalog.SpellsPath); err != nil {
		log.Fatalf("failed to save processed catalog: %v", err)
	}

	ch, err := chunker.NewSentenceChunker(cfg.Chunker.ChunkSize)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}

	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var st vectorstore.Store
	switch cfg.VectorStore.Type {
	case "sqlite", "":
		st, err = sqlite.Open(cfg.VectorStore.Path)
		if err != nil {
			log.Fatalf("sqlite store init failed: %v", err)
		}
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s (a memory store cannot be ingested offline)", cfg.VectorStore.Type)
	}
	defer st.Close()

	if err := bot.Ingest(spells.RawEntries(), ch, emb, st, zlog); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	zlog.Info("ingestion complete", zap.Int("entries", len(spells.Spells)))
}
