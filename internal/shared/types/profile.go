package types

// BusinessProfile is the profile behind GET/POST /business/profile.
type BusinessProfile struct {
	ID          int64   `json:"id,omitempty"`
	UserID      int64   `json:"user_id,omitempty"`
	Name        string  `json:"business_name"`
	Niche       string  `json:"niche"`
	Products    string  `json:"products"`
	ToneOfVoice string  `json:"tone_of_voice"`
	Location    *string `json:"location,omitempty"`
}

// Credentials identify a user at login and signup.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the response of POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
