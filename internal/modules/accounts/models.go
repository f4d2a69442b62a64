package accounts

// AccountRequest is the create/update payload for an account
type AccountRequest struct {
	Name           string  `json:"name"`
	AccountType    string  `json:"account_type"`
	Currency       string  `json:"currency"`
	InitialBalance float64 `json:"initial_balance"`
}

// Validate checks and normalizes the payload
func (req *AccountRequest) Validate() error {
	if req.Name == "" {
		return errEmptyName
	}
	if req.AccountType == "" {
		req.AccountType = "live"
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	return nil
}
