package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/gridmarket/energy-trading/pkg/common"
	"github.com/gridmarket/energy-trading/pkg/common/api"
	"github.com/gridmarket/energy-trading/services/market-gateway/models"
)

func (s *Service) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to hash password", "")
		return
	}

	userID := "user-" + req.Username
	participantID := req.ParticipantID
	if participantID == "" {
		participantID = req.Username
	}

	_, err = s.db.Exec(`
		INSERT INTO market.users (id, username, password_hash, full_name, participant_id, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, req.Username, string(hashedPassword), req.FullName, participantID, "Unassigned", "ACTIVE")
	if err != nil {
		log.Printf("Failed to register user: %v", err)
		api.WriteError(w, http.StatusConflict, "user_exists", "Username already exists", "")
		return
	}

	api.WriteSuccess(w, http.StatusCreated, map[string]string{"user_id": userID, "status": "created"})
}

func (s *Service) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}

	var user models.User
	err := s.db.QueryRow(`
		SELECT id, password_hash, participant_id, role, status
		FROM market.users WHERE username = $1`, req.Username).
		Scan(&user.ID, &user.PasswordHash, &user.ParticipantID, &user.Role, &user.Status)
	if err == sql.ErrNoRows {
		api.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password", "")
		return
	} else if err != nil {
		log.Printf("DB Error: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Database error", "")
		return
	}

	if user.Status != "ACTIVE" {
		api.WriteError(w, http.StatusForbidden, "account_inactive", "Account is not active", "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		api.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password", "")
		return
	}

	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &common.Claims{
		ParticipantID: user.ParticipantID,
		Username:      req.Username,
		Role:          user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			Issuer:    "market-gateway",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to generate token", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, models.TokenResponse{Token: tokenString, ExpiresAt: expirationTime.Unix()})
}

func (s *Service) CreateParticipantHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.Role == "" {
		req.Role = "Unassigned"
	}

	result, err := s.fabric.SubmitTransaction("IdentityContract:CreateParticipant", req.ID, req.Name, req.Role)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusCreated, result)
}

func (s *Service) GetParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["participantId"]

	result, err := s.fabric.EvaluateTransaction("IdentityContract:GetParticipant", id)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) UpdateParticipantRoleHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}

	result, err := s.fabric.SubmitTransaction("IdentityContract:UpdateParticipantRole", id, req.Role)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}

	result, err := s.fabric.SubmitTransaction("EnergyTradingContract:CreateAsset",
		req.ParticipantID, req.ID, req.Producer, req.EnergyType, strconv.Itoa(req.Units))
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusCreated, result)
}

func (s *Service) ReadAssetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["assetId"]

	result, err := s.fabric.EvaluateTransaction("EnergyTradingContract:ReadAsset", id)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) UpdateAssetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["assetId"]

	var req models.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	fields, err := json.Marshal(req.NewValue)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid field map", "")
		return
	}

	result, err := s.fabric.SubmitTransaction("EnergyTradingContract:UpdateAsset", id, string(fields))
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["assetId"]

	if _, err := s.fabric.SubmitTransaction("EnergyTradingContract:DeleteAsset", id); err != nil {
		api.WriteChainError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Service) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["assetId"]

	result, err := s.fabric.EvaluateTransaction("EnergyTradingContract:GetTransactionHistory", id)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) TradeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}

	result, err := s.fabric.SubmitTransaction("EnergyTradingContract:TradeEnergy",
		req.BuyerID, req.BuyingAssetNumber, req.SellerID, req.SellingAssetNumber, strconv.Itoa(req.Units))
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusCreated, result)
}

func (s *Service) AddNotaryLogHandler(w http.ResponseWriter, r *http.Request) {
	participantID := mux.Vars(r)["participantId"]

	var req models.NotaryLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}

	logID := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	result, err := s.fabric.SubmitTransaction("NotaryContract:AddNotaryLog",
		logID, participantID, timestamp, req.Type, req.LogText)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusCreated, result)
}

func (s *Service) GetNotaryLogHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.fabric.EvaluateTransaction("NotaryContract:GetNotaryLog", id)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) ListNotaryLogsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.fabric.EvaluateTransaction("NotaryContract:GetAllNotaryLogs")
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) AddPolicyHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AddPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	body, err := json.Marshal(req.Policy)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid policy body", "")
		return
	}

	result, err := s.fabric.SubmitTransaction("PolicyContract:AddPolicy", req.ID, string(body))
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusCreated, result)
}

func (s *Service) GetPolicyHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.fabric.EvaluateTransaction("PolicyContract:GetPolicy", id)
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) ListPoliciesHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.fabric.EvaluateTransaction("PolicyContract:GetAllPolicies")
	if err != nil {
		api.WriteChainError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) RecentTradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := s.recentTrades()
	if err != nil {
		log.Printf("Failed to list trade events: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list trades", "")
		return
	}
	api.WriteSuccess(w, http.StatusOK, trades)
}

// writeRaw passes a chaincode response straight through; contract returns are
// already JSON.
func writeRaw(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if len(body) > 0 {
		w.Write(body)
	}
}
