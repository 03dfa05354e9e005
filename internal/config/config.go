// Package config provides application configuration structures and helpers.
package config

import (
	"flag"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"
)

const (
	defaultAddr        = "localhost:3000"
	defaultRPCEndpoint = "https://eth-mainnet.g.alchemy.com/v2/"
	defaultAPIKeyEnv   = "ALCHEMY_API_KEY"
	defaultStaticDir   = "static"
	defaultRateBurst   = 5
)

// Upstream describes the RPC endpoint both monitors read from.
type Upstream struct {
	RPCEndpoint string // Endpoint prefix; the credential is appended at connect time
	APIKeyEnv   string // Name of the environment variable holding the credential
}

// ServerConfig holds the configuration settings for the HTTP server.
type ServerConfig struct {
	Upstream
	Addr          string // Server address
	Logger        *zap.SugaredLogger
	StaticDir     string // Directory served for unmatched paths
	TrustedSubnet string // CIDR, ex. "192.168.1.0/24"
	// RateLimit is lifecycle requests per second per client, 0 disables. Clients are
	// keyed by peer address, or by X-Real-IP when TrustedSubnet is set.
	RateLimit float64
	RateBurst int    // Token bucket size for RateLimit
	LogFile   string // Optional extra log output path
}

// ClientConfig holds the configuration settings for the command-line tool.
type ClientConfig struct {
	Upstream
	Verbose bool // Log lifecycle transitions to stderr
}

// DefaultUpstream returns the built-in upstream settings.
func DefaultUpstream() Upstream {
	return Upstream{
		RPCEndpoint: defaultRPCEndpoint,
		APIKeyEnv:   defaultAPIKeyEnv,
	}
}

// NewServerConfig creates and returns a new ServerConfig by parsing flags, the
// optional JSON file and environment variables.
func NewServerConfig() *ServerConfig {
	// 0) defaults
	cfg := &ServerConfig{
		Upstream:  DefaultUpstream(),
		Addr:      defaultAddr,
		StaticDir: defaultStaticDir,
		RateBurst: defaultRateBurst,
	}

	// 1) flags
	fAddr := strFlag{v: cfg.Addr}
	fRPC := strFlag{v: cfg.RPCEndpoint}
	fKeyEnv := strFlag{v: cfg.APIKeyEnv}
	fStatic := strFlag{v: cfg.StaticDir}
	fBurst := intFlag{v: cfg.RateBurst}
	var fRate floatFlag
	var fTrustedSubnet strFlag
	var fLogFile strFlag
	var fConf strFlag // -c / -config

	flag.Var(&fAddr, "a", "HTTP server address")
	flag.Var(&fRPC, "rpc", "RPC endpoint prefix")
	flag.Var(&fKeyEnv, "key-env", "environment variable holding the RPC credential")
	flag.Var(&fStatic, "static", "static files directory")
	flag.Var(&fTrustedSubnet, "t", "trusted subnet")
	flag.Var(&fRate, "rate", "lifecycle requests per second per client (0 disables)")
	flag.Var(&fBurst, "burst", "rate limiter burst")
	flag.Var(&fLogFile, "log-file", "additional log output file")
	flag.Var(&fConf, "c", "Path to JSON config file")
	flag.Var(&fConf, "config", "Path to JSON config file (alias)")
	flag.Parse()

	cfg.Addr = fAddr.v
	cfg.RPCEndpoint = fRPC.v
	cfg.APIKeyEnv = fKeyEnv.v
	cfg.StaticDir = fStatic.v
	cfg.TrustedSubnet = fTrustedSubnet.v
	cfg.RateLimit = fRate.v
	cfg.RateBurst = fBurst.v
	cfg.LogFile = fLogFile.v

	// 2) JSON (lowest priority, fills only what flags left unset)
	if fConf.v == "" {
		if v := os.Getenv("CONFIG"); v != "" {
			fConf.v = v
		}
	}

	if fConf.v != "" {
		if js, err := loadServerJSON(fConf.v); err == nil {
			if js.Address != nil && !fAddr.set {
				cfg.Addr = *js.Address
			}
			if js.RPCEndpoint != nil && !fRPC.set {
				cfg.RPCEndpoint = *js.RPCEndpoint
			}
			if js.APIKeyEnv != nil && !fKeyEnv.set {
				cfg.APIKeyEnv = *js.APIKeyEnv
			}
			if js.StaticDir != nil && !fStatic.set {
				cfg.StaticDir = *js.StaticDir
			}
			if js.TrustedSubnet != nil && !fTrustedSubnet.set {
				cfg.TrustedSubnet = *js.TrustedSubnet
			}
			if js.RateLimit != nil && !fRate.set {
				cfg.RateLimit = *js.RateLimit
			}
			if js.RateBurst != nil && !fBurst.set {
				cfg.RateBurst = *js.RateBurst
			}
			if js.LogFile != nil && !fLogFile.set {
				cfg.LogFile = *js.LogFile
			}
		} else {
			log.Printf("failed to load config file %q: %v", fConf.v, err)
		}
	}

	// 3) environment (highest priority)
	readServerEnvironment(cfg)

	cfg.Logger = zap.Must(NewLogger(cfg.LogFile)).Sugar()
	return cfg
}

func readServerEnvironment(cfg *ServerConfig) {
	ReadUpstreamEnvironment(&cfg.Upstream)

	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.Addr = addr
	}

	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		cfg.StaticDir = dir
	}

	if trustedSubnet := os.Getenv("TRUSTED_SUBNET"); trustedSubnet != "" {
		cfg.TrustedSubnet = trustedSubnet
	}

	rateEnv := os.Getenv("RATE_LIMIT")
	if rateEnv != "" {
		v, err := strconv.ParseFloat(rateEnv, 64)
		if err == nil {
			cfg.RateLimit = v
		} else {
			log.Printf("invalid RATE_LIMIT env var: %v", err)
		}
	}

	burstEnv := os.Getenv("RATE_BURST")
	if burstEnv != "" {
		v, err := strconv.Atoi(burstEnv)
		if err == nil {
			cfg.RateBurst = v
		} else {
			log.Printf("invalid RATE_BURST env var: %v", err)
		}
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}
}

// ReadUpstreamEnvironment overrides u from RPC_ENDPOINT and API_KEY_ENV.
func ReadUpstreamEnvironment(u *Upstream) {
	if endpoint := os.Getenv("RPC_ENDPOINT"); endpoint != "" {
		u.RPCEndpoint = endpoint
	}
	if keyEnv := os.Getenv("API_KEY_ENV"); keyEnv != "" {
		u.APIKeyEnv = keyEnv
	}
}
