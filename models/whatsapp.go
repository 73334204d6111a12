// models/whatsapp.go
package models

// WhatsappStatus is the backend's cheap credential check: whether the logged
// user has a messaging-instance credential at all, and the credential itself.
type WhatsappStatus struct {
	Result
	HasToken bool   `json:"hasToken"`
	Token    string `json:"token,omitempty"`
}

// WhatsappConnection is the outcome of initiating or re-connecting an
// instance: the instance credential plus a QR payload to scan.
type WhatsappConnection struct {
	Result
	HasToken bool   `json:"hasToken"`
	Token    string `json:"token,omitempty"`
	QRCode   string `json:"qrCode,omitempty"`
}

// WhatsappDetailedStatus is the live, provider-sourced status, distinct from
// the local credential check. Status is the provider's word: "connected",
// "connecting", or anything else (treated as disconnected).
type WhatsappDetailedStatus struct {
	Result
	Status   string `json:"status,omitempty"`
	LoggedIn bool   `json:"loggedIn"`
	QRCode   string `json:"qrCode,omitempty"`
}
