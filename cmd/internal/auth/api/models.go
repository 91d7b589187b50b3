package authapi

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

const (
	msgRegistered    = "User registered"
	msgAuthenticated = "Authentication successful"
	msgUpdated       = "User data updated"
)
