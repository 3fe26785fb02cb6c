package config

import "time"

// Ledger backend selection. The mock backend is a labeled test double;
// it is chosen only when configuration says so, never substituted after
// a gateway failure.
const (
    LedgerBackendMock    = "mock"
    LedgerBackendGateway = "gateway"
)

// Blob backend selection.
const (
    BlobBackendMemory = "memory"
    BlobBackendBucket = "bucket"
)

// LedgerConfig selects and parameterizes the ledger client backend.
type LedgerConfig struct {
    Backend    string
    GatewayURL string
    Timeout    time.Duration
}

// BlobConfig selects and parameterizes the blob store backend.
type BlobConfig struct {
    Backend   string
    BucketURL string
    Timeout   time.Duration
}

// LoadLedgerConfig reads LEDGER_* environment variables. The default is
// the mock backend so local setups work without a gateway; production
// deployments set LEDGER_BACKEND=gateway and LEDGER_GATEWAY_URL.
func LoadLedgerConfig() LedgerConfig {
    return LedgerConfig{
        Backend:    getenv("LEDGER_BACKEND", LedgerBackendMock),
        GatewayURL: getenv("LEDGER_GATEWAY_URL", ""),
        Timeout:    parseDur(getenv("LEDGER_TIMEOUT", "10s")),
    }
}

// LoadBlobConfig reads BLOB_* environment variables.
func LoadBlobConfig() BlobConfig {
    return BlobConfig{
        Backend:   getenv("BLOB_BACKEND", BlobBackendMemory),
        BucketURL: getenv("BLOB_BUCKET_URL", ""),
        Timeout:   parseDur(getenv("BLOB_TIMEOUT", "30s")),
    }
}
