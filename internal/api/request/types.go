package request

// LoginRequest is the body for POST /api/v1/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Pin      string `json:"pin"`
}

// ChangePinRequest is the body for POST /api/v1/accounts/me/pin
type ChangePinRequest struct {
	OldPin string `json:"old_pin"`
	NewPin string `json:"new_pin"`
}

// TransferRequest is the body for POST /api/v1/transfers
type TransferRequest struct {
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// UpdateAccountRequest is the body for PATCH /api/v1/accounts/{username}.
// Nil fields are left unchanged.
type UpdateAccountRequest struct {
	Pin         *string  `json:"pin"`
	Kvrcoin     *float64 `json:"kvrcoin"`
	ChessPoints *int64   `json:"chess_points"`
}

// CreateAccountRequest is the body for POST /api/v1/accounts
type CreateAccountRequest struct {
	Username    string  `json:"username"`
	Pin         string  `json:"pin"`
	Kvrcoin     float64 `json:"kvrcoin"`
	ChessPoints int64   `json:"chess_points"`
}
