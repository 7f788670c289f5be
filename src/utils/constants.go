package utils

const ShortDashDateLayout = "2006-01-02"

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

const (
	UnknownSector    = "Unknown"
	DefaultMockClose = 100.0
)
