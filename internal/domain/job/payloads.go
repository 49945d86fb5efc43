package job

import "encoding/json"

const TypeRegistrationConfirmation = "registration_confirmation"

// RegistrationConfirmationPayload is the wire shape stored in jobs.payload
// for confirmation emails.
type RegistrationConfirmationPayload struct {
	RegistrationID string `json:"registrationId"`
	EventID        string `json:"eventId"`
	EventName      string `json:"eventName"`
	Name           string `json:"name"`
	Email          string `json:"email"`
}

func EncodeRegistrationConfirmation(p RegistrationConfirmationPayload) ([]byte, error) {
	return json.Marshal(p)
}

func DecodeRegistrationConfirmation(raw []byte) (RegistrationConfirmationPayload, error) {
	var p RegistrationConfirmationPayload
	err := json.Unmarshal(raw, &p)
	return p, err
}
