package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/docuchat/cli/config"
	"github.com/docuchat/cli/internal/chatbot"
	"github.com/docuchat/cli/internal/chunker"
	"github.com/docuchat/cli/internal/documents"
	"github.com/docuchat/cli/internal/embeddings"
	"github.com/docuchat/cli/internal/llm"
	"github.com/docuchat/cli/internal/logger"
	"github.com/docuchat/cli/internal/tui"
	"github.com/docuchat/cli/internal/vectordb"
)

func main() {
	var (
		verboseFlag = flag.Bool("verbose", false, "Enable debug logging")
		loadFlag    = flag.String("load", "", "Index all documents under a directory and exit")
		addFlag     = flag.String("add", "", "Index a single document and exit")
		askFlag     = flag.String("ask", "", "Ask one question and exit")
		searchFlag  = flag.String("search", "", "Show retrieval hits for a query and exit")
		deleteFlag  = flag.String("delete", "", "Remove a source file's chunks from the index and exit")
		kFlag       = flag.Int("k", 0, "Number of results for -search (default from config)")
		infoFlag    = flag.Bool("info", false, "Print system state and exit")
	)
	flag.Parse()

	// .env is optional; environment variables win over the config file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetVerbose(*verboseFlag)

	ctx := context.Background()
	store, err := vectordb.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vector store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	splitter := chunker.NewSplitter(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	loader := documents.NewLoader(splitter)
	embedder := embeddings.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	completer := llm.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, llm.Options{
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
		Timeout:     2 * time.Minute,
	})

	bot := chatbot.New(cfg, loader, embedder, store, completer)

	switch {
	case *loadFlag != "" || flagPassed("load"):
		result := bot.LoadDocuments(ctx, *loadFlag)
		printStatus(result.Status, result.Message)
		if result.Status == chatbot.StatusSuccess {
			s := result.Stats
			fmt.Printf("  chunks: %d  characters: %d  files: %d\n",
				s.TotalChunks, s.TotalCharacters, s.UniqueFiles)
			for ext, n := range s.FileTypes {
				fmt.Printf("  %s: %d chunks\n", ext, n)
			}
		}
		exitOn(result.Status)

	case *addFlag != "":
		result := bot.AddDocument(ctx, *addFlag)
		printStatus(result.Status, result.Message)
		exitOn(result.Status)

	case *askFlag != "":
		result := bot.Ask(ctx, *askFlag)
		if result.Status != chatbot.StatusSuccess {
			printStatus(result.Status, result.Message)
			if result.Answer != "" {
				fmt.Println(result.Answer)
			}
			os.Exit(1)
		}
		fmt.Println(result.Answer)
		if len(result.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range result.Sources {
				fmt.Printf("  - %s\n", src.Metadata[documents.MetaSourceFile])
			}
		}

	case *searchFlag != "":
		results, err := bot.Search(ctx, *searchFlag, *kFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(results) == 0 {
			fmt.Println("No results.")
			return
		}
		for i, r := range results {
			fmt.Printf("%d. [%.3f] %s\n   %s\n", i+1, r.Score,
				r.Metadata[documents.MetaSourceFile], r.Content)
		}

	case *deleteFlag != "":
		if err := bot.DeleteDocument(ctx, *deleteFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed chunks for %s\n", *deleteFlag)

	case *infoFlag:
		info := bot.GetSystemInfo(ctx)
		fmt.Printf("vector store:  %s\n", info.VectorDBType)
		fmt.Printf("model:         %s\n", info.Model)
		fmt.Printf("chunking:      size %d, overlap %d\n", info.ChunkSize, info.ChunkOverlap)
		fmt.Printf("retrieval k:   %d\n", info.RetrievalK)
		fmt.Printf("records:       %d\n", info.RecordCount)
		fmt.Printf("docs dir:      %s\n", info.DocsDirectory)
		if info.Ready {
			fmt.Println("status:        ready")
		} else {
			fmt.Println("status:        not ready (no documents indexed)")
		}

	default:
		if err := tui.Run(bot, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
			os.Exit(1)
		}
	}
}

// flagPassed reports whether a flag was given explicitly, so
// `docuchat -load ""` indexes the configured docs directory.
func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

func printStatus(status, message string) {
	if status == chatbot.StatusSuccess {
		fmt.Println(message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", status, message)
}

func exitOn(status string) {
	if status == chatbot.StatusError {
		os.Exit(1)
	}
}
