package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gridmarket/energy-trading/pkg/common"
	"github.com/gridmarket/energy-trading/pkg/common/db"
	"github.com/gridmarket/energy-trading/pkg/common/migrations"
	"github.com/gridmarket/energy-trading/pkg/fabricclient"
)

// chainClient is the slice of the Fabric SDK the handlers need. Tests swap in
// a fake.
type chainClient interface {
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

type Service struct {
	fabric chainClient
	db     *sql.DB
	hub    *Hub
	secret []byte
}

func (s *Service) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/register", s.RegisterHandler).Methods("POST")
	r.HandleFunc("/auth/login", s.LoginHandler).Methods("POST")

	r.HandleFunc("/participants/{participantId}", s.GetParticipantHandler).Methods("GET")
	r.HandleFunc("/rest/asset/{assetId}", s.ReadAssetHandler).Methods("GET")
	r.HandleFunc("/rest/asset/{assetId}/history", s.GetHistoryHandler).Methods("GET")
	r.HandleFunc("/rest/trades", s.RecentTradesHandler).Methods("GET")
	r.HandleFunc("/notary/{id}", s.GetNotaryLogHandler).Methods("GET")
	r.HandleFunc("/notary", s.ListNotaryLogsHandler).Methods("GET")
	r.HandleFunc("/policies/{id}", s.GetPolicyHandler).Methods("GET")
	r.HandleFunc("/policies", s.ListPoliciesHandler).Methods("GET")
	r.HandleFunc("/ws", s.hub.ServeWS)

	// Mutating routes require a bearer token.
	protected := r.NewRoute().Subrouter()
	protected.Use(common.NewAuthMiddleware(s.secret))
	protected.HandleFunc("/participants", s.CreateParticipantHandler).Methods("POST")
	protected.HandleFunc("/participants/{id}/role", common.RequireRole("Admin", s.UpdateParticipantRoleHandler)).Methods("PUT")
	protected.HandleFunc("/rest/assets", s.CreateAssetHandler).Methods("POST")
	protected.HandleFunc("/rest/asset/{assetId}", s.UpdateAssetHandler).Methods("PUT")
	protected.HandleFunc("/rest/asset/{assetId}", s.DeleteAssetHandler).Methods("DELETE")
	protected.HandleFunc("/rest/trade", s.TradeHandler).Methods("POST")
	protected.HandleFunc("/notary/{participantId}", s.AddNotaryLogHandler).Methods("POST")
	protected.HandleFunc("/policies", s.AddPolicyHandler).Methods("POST")

	return r
}

func main() {
	cfg := common.LoadConfig()

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	if err := migrations.RunMigrations(database, "migrations/market"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fabric, err := fabricclient.NewClient(
		cfg.FabricConfig,
		cfg.Channel,
		cfg.Contract,
		cfg.MSP,
		cfg.CertPath,
		cfg.KeyPath,
	)
	if err != nil {
		log.Fatalf("Fabric connection failed: %v", err)
	}
	defer fabric.Close()

	svc := &Service{
		fabric: fabric,
		db:     database,
		hub:    NewHub(),
		secret: []byte(cfg.JWTSecret),
	}

	// Relay TradeCompleted events to the index and WebSocket subscribers.
	notifier, err := fabric.RegisterChaincodeEventListener("TradeCompleted")
	if err != nil {
		log.Printf("Warning: trade event subscription failed: %v", err)
	} else {
		go func() {
			for event := range notifier {
				svc.handleTradeEvent(event.Payload)
			}
		}()
	}

	log.Printf("Market gateway running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, svc.routes()))
}
