package api

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status         string  `json:"status"`
	Effect         string  `json:"effect"`
	State          string  `json:"state"`
	Brightness     string  `json:"brightness"`
	Frames         uint64  `json:"frames"`
	PreviewClients int     `json:"preview_clients"`
	PreviewFrames  uint64  `json:"preview_frames"`
	Uptime         float64 `json:"uptime_s"`
}

type EffectsResponse struct {
	Effects []EffectInfo `json:"effects"`
}

type EffectInfo struct {
	Name          string `json:"name"`
	SupportsColor bool   `json:"supports_color"`
	Active        bool   `json:"active"`
}

type ColorRequest struct {
	Color string `json:"color" binding:"required"`
}

type BrightnessResponse struct {
	Brightness string `json:"brightness"`
}

type EffectResponse struct {
	Effect string `json:"effect"`
}
