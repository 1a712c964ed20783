// AngelaMos | 2026
// dto.go

package setting

import (
	"time"
)

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"max=4096"`
}

type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToSettingResponse(s *Setting) SettingResponse {
	return SettingResponse{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	}
}

func ToSettingResponseList(settings []Setting) []SettingResponse {
	out := make([]SettingResponse, len(settings))
	for i := range settings {
		out[i] = ToSettingResponse(&settings[i])
	}
	return out
}
