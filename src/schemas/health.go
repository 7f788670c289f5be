package schemas

type HealthResponse struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}
