package models

// SignInRequest is the credentials payload for /api/auth/signin.
type SignInRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// SignInResponse carries the bearer token and profile issued on login.
type SignInResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType,omitempty"`
	User        User   `json:"user"`
}

// SignUpRequest registers a citizen account.
type SignUpRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsVolunteer bool   `json:"isVolunteer,omitempty"`
}

// OrgSignUpRequest registers an organization together with its admin account.
type OrgSignUpRequest struct {
	SignUpRequest
	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType,omitempty"`
	ServiceAreas     string `json:"serviceAreas,omitempty"`
	Categories       string `json:"categories,omitempty"`
}

// VerifyEmailRequest confirms an account with the mailed OTP code.
type VerifyEmailRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

// APIMessage is the generic {success,message} acknowledgment envelope.
type APIMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
