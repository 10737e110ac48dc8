package main

import (
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"grimoire/internal/bot"
	"grimoire/internal/catalog"
	"grimoire/internal/chunker"
	"grimoire/internal/config"
	"grimoire/internal/domain"
	"grimoire/internal/embedding/openai"
	"grimoire/internal/embedding/tfidf"
	"grimoire/internal/entity"
	"grimoire/internal/intent"
	"grimoire/internal/logger"
	"grimoire/internal/search"
	"grimoire/internal/tui"
	"grimoire/internal/vectorstore"
	"grimoire/internal/vectorstore/memory"
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

	zlog, level := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()

	spells, err := catalog.LoadCatalog(cfg.Catalog.SpellsPath)
	if err != nil {
		log.Fatalf("failed to load spell catalog: %v", err)
	}
	entities, err := catalog.LoadEntityData(cfg.Catalog.EntitiesPath)
	if err != nil {
		log.Fatalf("failed to load entity data: %v", err)
	}
	catalog.DeriveDamageTypes(spells, entities)
	catalog.ExtendEntityPatterns(entities, spells)

	intents, err := intent.Load(cfg.Catalog.IntentsPath)
	if err != nil {
		log.Fatalf("failed to load intents: %v", err)
	}
	extractor := entity.NewFuzzyExtractor(entities.Entities)

	ch, err := chunker.NewSentenceChunker(cfg.Chunker.ChunkSize)
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}

	// Assemble components
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
	case "memory":
		st = memory.NewStorage()
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
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}
	defer st.Close()

	// The TF-IDF vocabulary is rebuilt from the catalog at startup so query
	// vectors line up with what ingestion stored. A memory store has no
	// persisted index, so it is ingested in-process instead.
	entries := spells.RawEntries()
	if cfg.VectorStore.Type == "memory" {
		if err := bot.Ingest(entries, ch, emb, st, zlog); err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
	} else {
		var corpus []string
		for _, entry := range ch.ChunkEntries(entries) {
			for _, ctx := range entry.ChunkContexts {
				for _, chunk := range ctx.Chunks {
					corpus = append(corpus, chunk.Text)
				}
			}
		}
		if err := emb.Prepare(corpus); err != nil {
			log.Fatalf("embedder prepare failed: %v", err)
		}
	}

	reranker := search.NewReranker(emb, st, zlog)
	b := bot.New(intents, extractor, reranker, bot.Config{
		SpellsPath:     cfg.Catalog.SpellsPath,
		ExceptionsPath: cfg.Catalog.ExceptionsPath,
		Search: bot.SearchParams{
			RecommendedScore: cfg.Search.RecommendedScore,
			MinScore:         cfg.Search.MinScore,
			MaxResults:       cfg.Search.MaxResults,
		},
	}, zlog)

	m := tui.New(b, level)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
