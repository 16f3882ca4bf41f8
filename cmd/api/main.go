package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apievaluation "pv_eval/pkg/api/evaluation"
	apigoalseek "pv_eval/pkg/api/goalseek"
	apisensitivity "pv_eval/pkg/api/sensitivity"
	"pv_eval/pkg/core/store"
	"pv_eval/pkg/core/tariff"
)

// ServerConfig is the runtime configuration of the API server.
type ServerConfig struct {
	Port       int    `yaml:"port"`
	TariffFile string `yaml:"tariff_file"`
}

func main() {
	// Load environment variables
	godotenv.Load()

	cfg := ServerConfig{Port: 8090}
	if data, err := os.ReadFile("config/server.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Invalid config/server.yaml: %v", err)
		}
	}

	trf := tariff.Default()
	if cfg.TariffFile != "" {
		loaded, err := tariff.LoadFile(cfg.TariffFile)
		if err != nil {
			log.Fatalf("Failed to load tariff %s: %v", cfg.TariffFile, err)
		}
		trf = loaded
		fmt.Printf("[TARIFF] Loaded regulatory constants from %s\n", cfg.TariffFile)
	}

	// Persistence is optional: without DATABASE_URL the API still serves
	// computations, it just never saves them.
	var repo *store.EvaluationRepo
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		repo = store.NewEvaluationRepo()
		fmt.Println("[STORE] Database connected, evaluations persisted on request")
	}

	evalHandler := apievaluation.NewHandler(trf, repo)
	http.HandleFunc("/api/evaluate", evalHandler.HandleEvaluate)

	seekHandler := apigoalseek.NewHandler(trf)
	http.HandleFunc("/api/goalseek", seekHandler.HandleSolve)

	sensHandler := apisensitivity.NewHandler(trf)
	http.HandleFunc("/api/sensitivity", sensHandler.HandleAnalyze)

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("🚀 PV evaluation API listening on %s\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal(err)
	}
}
