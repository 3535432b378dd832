package requests

type NoqoodyGenerateLinks struct {
	ProjectCode    string `json:"ProjectCode"`
	Description    string `json:"Description"`
	Amount         string `json:"Amount"`
	CustomerEmail  string `json:"CustomerEmail"`
	CustomerMobile string `json:"CustomerMobile"`
	CustomerName   string `json:"CustomerName"`
	SecureHash     string `json:"SecureHash"`
	Reference      string `json:"Reference"`
	CallbackURL    string `json:"CallbackUrl,omitempty"`
}
