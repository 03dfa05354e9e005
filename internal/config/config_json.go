package config

import (
	"encoding/json"
	"os"
)

type serverJSON struct {
	Address       *string  `json:"address"`
	RPCEndpoint   *string  `json:"rpc_endpoint"`
	APIKeyEnv     *string  `json:"api_key_env"`
	StaticDir     *string  `json:"static_dir"`
	TrustedSubnet *string  `json:"trusted_subnet"`
	RateLimit     *float64 `json:"rate_limit"`
	RateBurst     *int     `json:"rate_burst"`
	LogFile       *string  `json:"log_file"`
}

func loadServerJSON(path string) (*serverJSON, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg serverJSON
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
