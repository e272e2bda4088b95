package models

type RegisterRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	ParticipantID string `json:"participant_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type User struct {
	ID            string
	Username      string
	PasswordHash  string
	FullName      string
	ParticipantID string
	Role          string
	Status        string
}

type CreateParticipantRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type CreateAssetRequest struct {
	ParticipantID string `json:"participantId"`
	ID            string `json:"id"`
	Producer      string `json:"producer"`
	EnergyType    string `json:"energyType"`
	Units         int    `json:"units"`
}

// UpdateAssetRequest carries the allow-listed field changes; the chaincode
// rejects anything outside the allow-list.
type UpdateAssetRequest struct {
	NewValue map[string]interface{} `json:"newValue"`
}

type TradeRequest struct {
	BuyerID            string `json:"buyerId"`
	BuyingAssetNumber  string `json:"buyingAssetNumber"`
	SellerID           string `json:"sellerId"`
	SellingAssetNumber string `json:"sellingAssetNumber"`
	Units              int    `json:"units"`
}

type NotaryLogRequest struct {
	Type    string `json:"type"`
	LogText string `json:"logText"`
}

type AddPolicyRequest struct {
	ID     string                 `json:"id"`
	Policy map[string]interface{} `json:"policy"`
}
