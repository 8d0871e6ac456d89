package types

type SuccessEnvelope struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type ErrorEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
