// pkg/shared/constants.go

package shared

const (
	GscID          = "gscadmin"
	GscLogDir      = "/var/log/gscadmin/"
	GscLogs        = GscLogDir + "gscadmin.log"
	GscLogsPWD     = "./gscadmin.log"
	GscConfigDir   = "/etc/gscadmin"
	GscEnvPrefix   = "GSCADMIN"
	GscEnvFile     = ".env"
	GscTelemetryOn = "telemetry_on"
)

// Version is overridden at build time with -ldflags "-X .../shared.Version=...".
var Version = "dev"

const (
	// Permission modes (in octal)
	DirPermStandard        = 0755
	FilePermOwnerRWX       = 0700
	FilePermStandard       = 0644
	FilePermOwnerReadWrite = 0600
)

const (
	// Directory defaults carried over from the provisioning scripts.
	DefaultLDAPHost      = "ldapmaster.gsc.wustl.edu"
	DefaultLDAPBaseDN    = "ou=People,dc=gsc,dc=wustl,dc=edu"
	DefaultADBaseDN      = "DC=gc,DC=local"
	DefaultADSuffix      = "@gc.local"
	DefaultADContainer   = "GC_Users"
	DefaultVaultMount    = "secret"
	DefaultRRDDir        = "rrd"
	DefaultListenAddress = "127.0.0.1:8088"
)
