package logging

type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module labels log records with the subsystem that emitted them.
type Module string

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}
