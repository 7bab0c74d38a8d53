package dto

type SourceInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Enabled      bool     `json:"enabled"`
	Binary       string   `json:"binary"`
	Capabilities []string `json:"capabilities"`
}

type DoctorResult struct {
	Name            string `json:"name"`
	BinaryReachable bool   `json:"binary_reachable"`
	ChecksumValid   bool   `json:"checksum_valid"`
	LifecycleOK     bool   `json:"lifecycle_ok"`
	Error           string `json:"error,omitempty"`
}
