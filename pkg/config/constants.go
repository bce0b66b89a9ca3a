package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LOCALPOP_DB_DSN"
	EnvDBHost = "LOCALPOP_DB_HOST"
	EnvDBUser = "LOCALPOP_DB_USER"
	EnvDBName = "LOCALPOP_DB_NAME"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
