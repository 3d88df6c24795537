package dtos

import "github.com/justsurfingit/temu/internal/wizard"

// SaveStepRequest is the body of a step save. Version is the record version
// the client last saw; leaving it out means last write wins.
type SaveStepRequest struct {
	Step    int            `json:"step" binding:"required,min=1"`
	Data    map[string]any `json:"data"`
	Version *int           `json:"version" binding:"omitempty,min=0"`
}

func (r SaveStepRequest) ToWizard() wizard.SaveRequest {
	data := wizard.FormState(r.Data)
	if data == nil {
		data = wizard.FormState{}
	}
	return wizard.SaveRequest{Step: r.Step, Data: data, Version: r.Version}
}

type UploadResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the error body every endpoint answers with.
type ErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}
