package endpoints

import (
	"github.com/kumarraju1982/Convertx/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},

		&ConvertEndpoint{},

		&ListJobsEndpoint{},
		&JobStatusEndpoint{},
		&JobResultEndpoint{},
		&JobDownloadEndpoint{},
	}
}

// JobCommands returns the endpoints that group under "jobs" in the CLI.
func JobCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListJobsEndpoint{},
		&JobStatusEndpoint{},
		&JobResultEndpoint{},
		&JobDownloadEndpoint{},
	}
}
